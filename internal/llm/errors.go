package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured is returned when no provider is selected or the
// selected one has no credentials.
var ErrNotConfigured = errors.New("generative backend not configured")

// ErrEmptyResponse is returned when the backend answered with no text.
var ErrEmptyResponse = errors.New("generative backend returned no text")

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	Err error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable: %v", e.providerName(), e.Err)
	}
	return e.providerName() + " unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

func (e *ErrProviderUnavailable) providerName() string {
	if e.Provider == "" {
		return "LLM provider"
	}
	return e.Provider
}

// mapStatus classifies an HTTP status from a vendor error.
func mapStatus(provider string, status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Provider: provider, Err: err}
}
