package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Morwran/yagpt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"health-advisor/internal/apperr"
)

type fakeYaGPT struct {
	resp  *yagpt.CompletionResponse
	err   error
	calls int
}

func (f *fakeYaGPT) CompletionWithCtx(ctx context.Context, iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeYaGPT) Completion(iamTok string, m []yagpt.Message) (*yagpt.CompletionResponse, error) {
	return f.CompletionWithCtx(context.Background(), iamTok, m)
}

func TestYandex_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind apperr.Kind
		wantMsg  string
	}{
		{
			name:     "unauthenticated",
			err:      fmt.Errorf("failed completion: %w", status.Error(codes.Unauthenticated, "the token is invalid")),
			wantKind: apperr.Auth,
			wantMsg:  "Invalid API key. Please check your Yandex API key.",
		},
		{
			name:     "permission denied",
			err:      status.Error(codes.PermissionDenied, "folder access denied"),
			wantKind: apperr.Auth,
			wantMsg:  "Invalid API key. Please check your Yandex API key.",
		},
		{
			name:     "resource exhausted",
			err:      status.Error(codes.ResourceExhausted, "quota exceeded"),
			wantKind: apperr.Upstream,
			wantMsg:  "quota exceeded",
		},
		{
			name:     "deadline",
			err:      status.Error(codes.DeadlineExceeded, ""),
			wantKind: apperr.Upstream,
			wantMsg:  "Advice request timed out",
		},
		{
			name:     "plain error",
			err:      errors.New("connection reset"),
			wantKind: apperr.Upstream,
			wantMsg:  "Advice request failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeYaGPT{err: tt.err}
			c := &YandexClient{ya: fake, iamToken: "iam", oauth: "oauth-token", opts: DefaultOptions()}

			_, err := c.Generate(context.Background(), "prompt")
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, tt.wantMsg, apperr.MessageOf(err))
			assert.Equal(t, 1, fake.calls)
		})
	}
}

func TestYandex_UnconfiguredMakesNoCall(t *testing.T) {
	c, err := NewYandex("", "folder", DefaultOptions(), nil)
	require.NoError(t, err)
	assert.False(t, c.Status().Configured)

	_, err = c.Generate(context.Background(), "prompt")
	assert.Equal(t, apperr.Config, apperr.KindOf(err))
}

func TestNewYandex_WarnsAboutIgnoredBudget(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, err := NewYandex("", "", DefaultOptions(), zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("yandexgpt ignores the configured generation budget").Len())

	core, logs = observer.New(zap.WarnLevel)
	_, err = NewYandex("", "", Options{Temperature: 0.6, MaxOutputTokens: 2000}, zap.New(core))
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}
