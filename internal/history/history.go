// Package history keeps every user's past issue/advice interactions on top
// of a storage.Backend.
//
// Reads fail open: an unreadable or corrupt backend yields empty history.
// Mutations never start from such a fallback; they fail without saving.
// Writes are best-effort: failures come back as apperr.Storage errors that
// callers log and otherwise ignore. All load-mutate-save sequences run under
// one store-wide lock since the backend persists the whole snapshot.
package history

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"health-advisor/internal/apperr"
	"health-advisor/internal/storage"
)

// DefaultUser is used when a request carries no user identifier.
const DefaultUser = "anonymous"

type Interaction = storage.Interaction

type Store struct {
	mu      sync.RWMutex
	backend storage.Backend
	log     *zap.Logger
}

func NewStore(backend storage.Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{backend: backend, log: log.With(zap.String("component", "history"))}
}

// Load returns the full snapshot, or an empty one when the backend fails.
func (s *Store) Load(ctx context.Context) storage.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadUnlocked(ctx)
}

// Save replaces the persisted snapshot.
func (s *Store) Save(ctx context.Context, snap storage.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveUnlocked(ctx, snap)
}

// Get returns a copy of the user's history; never nil.
func (s *Store) Get(ctx context.Context, userID string) []Interaction {
	snap := s.Load(ctx)
	items := snap[userID]
	out := make([]Interaction, len(items))
	copy(out, items)
	return out
}

func (s *Store) Append(ctx context.Context, userID string, rec Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.loadForUpdate(ctx)
	if err != nil {
		return err
	}
	snap[userID] = append(snap[userID], rec)
	return s.saveUnlocked(ctx, snap)
}

// DeleteAt removes the record at index. Out-of-range indices report
// apperr.NotFound and leave the store untouched.
func (s *Store) DeleteAt(ctx context.Context, userID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.loadForUpdate(ctx)
	if err != nil {
		// Get shows an empty history in this state.
		s.log.Warn("history unavailable, nothing deleted", zap.String("user", userID), zap.Error(err))
		return apperr.Wrap(apperr.NotFound, "History item not found", err)
	}
	items := snap[userID]
	if index < 0 || index >= len(items) {
		return apperr.New(apperr.NotFound, "History item not found")
	}
	rest := make([]Interaction, 0, len(items)-1)
	rest = append(rest, items[:index]...)
	rest = append(rest, items[index+1:]...)
	snap[userID] = rest
	return s.saveUnlocked(ctx, snap)
}

// Prune drops records older than cutoff and users left without records.
// Nothing is written when nothing matched.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.loadForUpdate(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for user, items := range snap {
		kept := make([]Interaction, 0, len(items))
		for _, it := range items {
			if it.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, it)
		}
		if len(kept) == 0 {
			delete(snap, user)
			continue
		}
		snap[user] = kept
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.saveUnlocked(ctx, snap); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Store) loadUnlocked(ctx context.Context) storage.Snapshot {
	snap, err := s.backend.Load(ctx)
	if err != nil {
		s.log.Warn("history unavailable, continuing with empty history", zap.Error(err))
		return storage.Snapshot{}
	}
	if snap == nil {
		return storage.Snapshot{}
	}
	return snap
}

// loadForUpdate is the strict read used before a save. Backends report a
// missing store as an empty snapshot, so any error here means the current
// contents are unknown and must not be overwritten.
func (s *Store) loadForUpdate(ctx context.Context) (storage.Snapshot, error) {
	snap, err := s.backend.Load(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, "failed to load history", err)
	}
	if snap == nil {
		snap = storage.Snapshot{}
	}
	return snap, nil
}

func (s *Store) saveUnlocked(ctx context.Context, snap storage.Snapshot) error {
	if err := s.backend.Save(ctx, snap); err != nil {
		return apperr.Wrap(apperr.Storage, "failed to save history", err)
	}
	return nil
}
