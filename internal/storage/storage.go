package storage

import (
	"context"
	"time"
)

// Interaction is one issue/advice exchange of a user.
// Records are immutable once created.
type Interaction struct {
	Issue     string    `json:"issue"`
	Advice    string    `json:"advice"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot maps a user identifier to that user's interactions in
// chronological order. It is the unit of persistence: backends always load
// and save it whole.
type Snapshot map[string][]Interaction

// Clone returns a deep copy so callers can mutate it freely.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for user, items := range s {
		out[user] = append([]Interaction(nil), items...)
	}
	return out
}

// Backend persists a Snapshot.
// Load returns an empty snapshot when nothing has been saved yet.
// Save must replace the stored snapshot atomically: a concurrent or later
// Load never observes a partially written state.
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}
