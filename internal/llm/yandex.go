package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Morwran/yagpt"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"health-advisor/internal/apperr"
)

// yagpt sends a fixed completion budget on every request.
const (
	yandexTemperature     = 0.6
	yandexMaxOutputTokens = 2000
)

type YandexClient struct {
	ya       yagpt.YaGPTFace
	iamToken string
	oauth    string
	opts     Options
}

// NewYandex exchanges the OAuth token for an IAM token up front. Without
// credentials it returns an unconfigured client instead of failing.
// Only opts.Timeout applies; temperature and token budget are fixed by yagpt.
func NewYandex(oauthToken, folderID string, opts Options, log *zap.Logger) (*YandexClient, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Temperature != yandexTemperature || opts.MaxOutputTokens != yandexMaxOutputTokens {
		log.Warn("yandexgpt ignores the configured generation budget",
			zap.Float32("temperature", opts.Temperature),
			zap.Int("max_output_tokens", opts.MaxOutputTokens),
			zap.Float64("effective_temperature", yandexTemperature),
			zap.Int("effective_max_output_tokens", yandexMaxOutputTokens))
	}
	c := &YandexClient{oauth: oauthToken, opts: opts}
	if !KeyConfigured(oauthToken) || strings.TrimSpace(folderID) == "" {
		return c, nil
	}

	// Create IAM token from OAuth token
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init yandex iam: %w", err)
	}
	resp, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create iam token: %w", err)
	}

	// Create YaGPT client for a folder
	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to init yagpt: %w", err)
	}
	c.ya = ya
	c.iamToken = resp.IamToken
	return c, nil
}

func (c *YandexClient) Status() KeyStatus {
	st := keyStatus(ProviderYandex, c.oauth)
	st.Configured = st.Configured && c.ya != nil
	return st
}

func (c *YandexClient) Generate(ctx context.Context, prompt string) (Response, error) {
	if c.ya == nil {
		return Response{}, errNotConfigured(ProviderYandex)
	}

	ctx, cancel := withTimeout(ctx, c.opts.Timeout)
	defer cancel()

	messages := []yagpt.Message{{Role: "user", Content: prompt}}
	resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, messages)
	if err != nil {
		return Response{}, classifyYandexError(err)
	}
	if resp == nil || len(resp.Alternatives) == 0 || resp.Alternatives[0].Message.Content == "" {
		return Response{}, errNoAdvice()
	}
	out := Response{Content: resp.Alternatives[0].Message.Content, Model: yagpt.YaModelLite}
	out.PromptTokens = int(resp.Usage.InputTextTokens)
	out.CompletionTokens = int(resp.Usage.CompletionTokens)
	out.TotalTokens = int(resp.Usage.TotalTokens)
	return out, nil
}

// classifyYandexError maps gRPC status codes onto the HTTP classification.
func classifyYandexError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return transportError(err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return transportError(err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return classifyStatus(ProviderYandex, http.StatusUnauthorized, st.Message(), err)
	case codes.PermissionDenied:
		return classifyStatus(ProviderYandex, http.StatusForbidden, st.Message(), err)
	case codes.DeadlineExceeded:
		return apperr.Wrap(apperr.Upstream, msgTimeout, err)
	case codes.Unavailable, codes.Unknown:
		return transportError(err)
	default:
		msg := strings.TrimSpace(st.Message())
		if msg == "" {
			msg = "API request failed: " + st.Code().String()
		}
		return apperr.Wrap(apperr.Upstream, msg, err)
	}
}
