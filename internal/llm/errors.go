package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrModelUnavailable is returned when the provider cannot produce a
	// completion: retries exhausted, request rejected, or the call was cancelled.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrModelAuth is returned when the provider rejects the credentials.
	ErrModelAuth = errors.New("model authentication failed")
)

// StatusError carries a provider HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// IsAuth reports whether the status is a credential rejection.
func (e *StatusError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

type emptyContentError struct {
	FinishReason string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("llm complete: empty content (finish_reason=%q)", e.FinishReason)
}
