package llm

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/models"
)

// ResilientGenerator retries the primary generator on transient failures,
// then tries the fallback once. The primary attempts share one timeout and
// the fallback gets a timeout of its own.
type ResilientGenerator struct {
	primary    Generator
	fallback   Generator
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
	logger     zerolog.Logger
}

type ResilientOption func(*ResilientGenerator)

// WithFallback sets the generator tried once after the primary gives up.
func WithFallback(g Generator) ResilientOption {
	return func(r *ResilientGenerator) { r.fallback = g }
}

func WithRetries(n int, baseDelay time.Duration) ResilientOption {
	return func(r *ResilientGenerator) {
		if n >= 0 {
			r.maxRetries = n
		}
		if baseDelay > 0 {
			r.baseDelay = baseDelay
		}
	}
}

func WithTimeout(d time.Duration) ResilientOption {
	return func(r *ResilientGenerator) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewResilientGenerator(primary Generator, logger zerolog.Logger, opts ...ResilientOption) *ResilientGenerator {
	r := &ResilientGenerator{
		primary:    primary,
		maxRetries: 2,
		baseDelay:  500 * time.Millisecond,
		timeout:    25 * time.Second,
		logger:     logger.With().Str("component", "generator").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate returns models.ErrGeneratorUnavailable when every attempt failed.
func (r *ResilientGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.executeWithRetry(resCtx, r.primary, prompt)
	if err == nil {
		return out, nil
	}

	if r.fallback == nil || ctx.Err() != nil {
		return "", fmt.Errorf("%w: %w", models.ErrGeneratorUnavailable, err)
	}

	r.logger.Warn().Err(err).Msg("primary generator exhausted, switching to fallback")

	fbCtx, fbCancel := context.WithTimeout(ctx, r.timeout)
	defer fbCancel()

	out, ferr := r.fallback.Generate(fbCtx, prompt)
	if ferr != nil {
		return "", fmt.Errorf("%w: primary: %w; fallback: %w", models.ErrGeneratorUnavailable, err, ferr)
	}
	return out, nil
}

func (r *ResilientGenerator) executeWithRetry(ctx context.Context, g Generator, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		out, err := g.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == r.maxRetries {
			break
		}

		wait := r.backoff(attempt)
		r.logger.Debug().Err(err).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying generator")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// isRetryable matches rate limits, server errors and timeouts.
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "500", "503", "529", "overloaded", "rate limit", "deadline"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// backoff doubles the base delay per attempt and adds up to 20% jitter.
func (r *ResilientGenerator) backoff(attempt int) time.Duration {
	base := float64(r.baseDelay) * float64(int(1)<<attempt)
	jitter := rand.Float64() * 0.2 * base
	return time.Duration(base + jitter)
}
