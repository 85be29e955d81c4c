// Package advice runs one advice request end to end: validate, read the
// user's history, build the prompt, call the model and record the result.
package advice

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"health-advisor/internal/apperr"
	"health-advisor/internal/history"
	"health-advisor/internal/llm"
	"health-advisor/internal/prompt"
)

const persistTimeout = 5 * time.Second

// HistoryStore is the part of *history.Store the service needs.
type HistoryStore interface {
	Get(ctx context.Context, userID string) []history.Interaction
	Append(ctx context.Context, userID string, rec history.Interaction) error
	DeleteAt(ctx context.Context, userID string, index int) error
}

type Result struct {
	Advice string
	Model  string
}

type Service struct {
	store  HistoryStore
	client llm.Client
	log    *zap.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store HistoryStore, client llm.Client, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:  store,
		client: client,
		log:    log.With(zap.String("component", "advice")),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// UserID normalizes a client supplied identifier.
func UserID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return history.DefaultUser
	}
	return id
}

// Advise returns advice for issue. History is only written after the model
// produced usable text; a failed write is logged and does not fail the call.
func (s *Service) Advise(ctx context.Context, userID, issue string) (Result, error) {
	issue = strings.TrimSpace(issue)
	if issue == "" {
		return Result{}, apperr.New(apperr.Validation, "Health issue is required")
	}
	if !s.client.Status().Configured {
		return Result{}, apperr.New(apperr.Config, "API key not configured")
	}

	past := s.store.Get(ctx, userID)
	p := prompt.Build(issue, past)

	s.log.Debug("requesting advice",
		zap.String("user", userID),
		zap.Int("history_len", len(past)),
		zap.Int("prompt_len", len(p)))

	resp, err := s.client.Generate(ctx, p)
	if err != nil {
		s.log.Warn("advice request failed",
			zap.String("user", userID),
			zap.Stringer("kind", apperr.KindOf(err)),
			zap.Error(err))
		return Result{}, err
	}

	s.log.Info("advice generated",
		zap.String("user", userID),
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
		zap.Int("total_tokens", resp.TotalTokens))

	rec := history.Interaction{Issue: issue, Advice: resp.Content, Timestamp: s.now().UTC()}
	// The advice is already paid for; record it even if the caller went away.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := s.store.Append(saveCtx, userID, rec); err != nil {
		s.log.Error("failed to save history", zap.String("user", userID), zap.Error(err))
	}
	return Result{Advice: resp.Content, Model: resp.Model}, nil
}

// History returns the user's interactions, oldest first.
func (s *Service) History(ctx context.Context, userID string) []history.Interaction {
	return s.store.Get(ctx, userID)
}

// DeleteHistory removes one record by position. Only NotFound is reported;
// a failed save is logged.
func (s *Service) DeleteHistory(ctx context.Context, userID string, index int) error {
	err := s.store.DeleteAt(ctx, userID, index)
	if err == nil {
		return nil
	}
	if apperr.Is(err, apperr.Storage) {
		s.log.Error("failed to save history after delete",
			zap.String("user", userID), zap.Int("index", index), zap.Error(err))
		return nil
	}
	return err
}

// Status reports the advice provider's credential state.
func (s *Service) Status() llm.KeyStatus {
	return s.client.Status()
}
