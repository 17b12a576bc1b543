package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/metrics"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2

	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// Completer turns a prompt into model text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Backend performs a single completion attempt against a provider.
// Provider HTTP failures must be reported as *StatusError.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BackendFunc adapts a function to the Backend interface.
type BackendFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements Backend.
func (f BackendFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Gateway wraps a Backend with bounded retries and error classification.
type Gateway struct {
	backend Backend

	maxRetries     int
	attemptTimeout time.Duration
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	sleeper        func(time.Duration)
}

// Option customizes the gateway.
type Option func(*Gateway)

// WithMaxRetries overrides the retry count (defaults to 2).
func WithMaxRetries(retries int) Option {
	return func(g *Gateway) {
		if retries >= 0 {
			g.maxRetries = retries
		}
	}
}

// WithAttemptTimeout bounds each individual attempt.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		g.attemptTimeout = timeout
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(g *Gateway) {
		g.retryBaseDelay = baseDelay
		g.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(g *Gateway) {
		g.sleeper = sleeper
	}
}

// NewGateway constructs a gateway around backend.
func NewGateway(backend Backend, opts ...Option) *Gateway {
	g := &Gateway{
		backend:        backend,
		maxRetries:     DefaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		retryMaxDelay:  defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Complete sends prompt to the backend, retrying transient failures.
// Authentication failures are never retried.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", ErrModelUnavailable)
	}

	log := logger.FromContext(ctx)
	attempts := g.maxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := g.attempt(ctx, prompt)
		if err == nil {
			metrics.ModelCalls.WithLabelValues(metrics.OutcomeSuccess).Inc()
			return text, nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.IsAuth() {
			metrics.ModelCalls.WithLabelValues(metrics.OutcomeAuthError).Inc()
			return "", fmt.Errorf("%w: %w", ErrModelAuth, err)
		}

		delay, retry := g.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			metrics.ModelCalls.WithLabelValues(metrics.OutcomeUnavailable).Inc()
			if attempt > 1 {
				return "", fmt.Errorf("%w: failed after %d attempts: %w", ErrModelUnavailable, attempt, err)
			}
			return "", fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}

		metrics.ModelCalls.WithLabelValues(metrics.OutcomeRetry).Inc()
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("delay", delay).
			Msg("Model call failed, retrying")

		if err := g.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: failed after %d attempts: %w", ErrModelUnavailable, attempts, lastErr)
}

func (g *Gateway) attempt(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if g.attemptTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.attemptTimeout)
		defer cancel()
	}

	text, err := g.backend.Generate(callCtx, prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &emptyContentError{}
	}
	return text, nil
}

func (g *Gateway) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil {
		return 0, false
	}
	// The caller gave up; an attempt-level deadline is still retryable below.
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return 0, false
	}

	var emptyErr *emptyContentError
	if errors.As(err, &emptyErr) {
		return g.backoffDelay(attempt), true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if !statusErr.Retryable() {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return g.capDelay(statusErr.RetryAfter), true
		}
		return g.backoffDelay(attempt), true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return g.backoffDelay(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return g.backoffDelay(attempt), true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return g.backoffDelay(attempt), true
	}

	return 0, false
}

// backoffDelay doubles from the base delay: attempt 1 -> base, 2 -> base*2, ...
func (g *Gateway) backoffDelay(attempt int) time.Duration {
	base := g.retryBaseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := g.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return g.capDelay(delay)
}

func (g *Gateway) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := g.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (g *Gateway) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if g.sleeper != nil {
		g.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
