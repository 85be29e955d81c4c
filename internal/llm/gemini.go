package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-1.5-flash"

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Options Options
}

// GeminiClient calls generateContent on the Gemini API.
type GeminiClient struct {
	client *genai.Client
	apiKey string
	model  string
	opts   Options
}

// NewGemini builds a client. With a missing or placeholder key no SDK client
// is created and every Generate call fails with a Config error.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}
	c := &GeminiClient{apiKey: cfg.APIKey, model: model, opts: cfg.Options}
	if !KeyConfigured(cfg.APIKey) {
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	c.client = client
	return c, nil
}

func (c *GeminiClient) Status() KeyStatus { return keyStatus(ProviderGemini, c.apiKey) }

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (Response, error) {
	if c.client == nil || !KeyConfigured(c.apiKey) {
		return Response{}, errNotConfigured(ProviderGemini)
	}

	ctx, cancel := withTimeout(ctx, c.opts.Timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:     ptr(c.opts.Temperature),
		MaxOutputTokens: int32(c.opts.MaxOutputTokens),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return Response{}, classifyGeminiError(err)
	}
	return c.extract(resp)
}

func (c *GeminiClient) extract(resp *genai.GenerateContentResponse) (Response, error) {
	if resp == nil {
		return Response{}, errNoAdvice()
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return Response{}, errBlocked(string(fb.BlockReason))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return Response{}, errNoAdvice()
	}
	cand := resp.Candidates[0]
	text := firstText(cand.Content)
	if text == "" {
		if isSafetyFinish(string(cand.FinishReason)) {
			return Response{}, errBlocked(string(cand.FinishReason))
		}
		return Response{}, errNoAdvice()
	}

	out := Response{Content: text, Model: c.model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		out.PromptTokens = int(u.PromptTokenCount)
		out.CompletionTokens = int(u.CandidatesTokenCount)
		out.TotalTokens = int(u.TotalTokenCount)
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func firstText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	for _, p := range content.Parts {
		if p != nil && p.Text != "" {
			return p.Text
		}
	}
	return ""
}

func isSafetyFinish(reason string) bool {
	switch reason {
	case "SAFETY", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII", "IMAGE_SAFETY":
		return true
	}
	return false
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(ProviderGemini, apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(ProviderGemini, apiErrPtr.Code, apiErrPtr.Message, err)
	}
	return transportError(err)
}
