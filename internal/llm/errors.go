package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"health-advisor/internal/apperr"
)

const (
	msgNotConfigured = "API key not configured"
	msgNoAdvice      = "No advice generated"
	msgTimeout       = "Advice request timed out"
)

var providerTitles = map[string]string{
	ProviderGemini: "Gemini",
	ProviderOpenAI: "OpenAI",
	ProviderYandex: "Yandex",
}

func errNotConfigured(provider string) error {
	return apperr.New(apperr.Config, fmt.Sprintf("%s %s", providerTitles[provider], msgNotConfigured))
}

// classifyStatus maps a non-2xx upstream answer to an error kind.
func classifyStatus(provider string, status int, message string, cause error) error {
	if isAuthFailure(status, message) {
		return apperr.Wrap(apperr.Auth,
			fmt.Sprintf("Invalid API key. Please check your %s API key.", providerTitles[provider]), cause)
	}
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = fmt.Sprintf("API request failed: %d", status)
	}
	return apperr.Wrap(apperr.Upstream, msg, cause)
}

func isAuthFailure(status int, message string) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		// Gemini answers 400 INVALID_ARGUMENT for a bad key.
		m := strings.ToLower(message)
		return strings.Contains(m, "api key not valid") || strings.Contains(m, "api_key_invalid")
	}
	return false
}

// transportError classifies failures where no usable HTTP status exists.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.Upstream, msgTimeout, err)
	}
	return apperr.Wrap(apperr.Upstream, "Advice request failed", err)
}

func errBlocked(reason string) error {
	return apperr.New(apperr.NoContent, fmt.Sprintf("Advice was blocked by the safety policy (%s)", reason))
}

func errNoAdvice() error {
	return apperr.New(apperr.NoContent, msgNoAdvice)
}
