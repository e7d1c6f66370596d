package advisor

import (
	"context"
	"math"
	"time"
)

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig is used for user-facing advisory calls (chat advice,
// forecast). Delays: 1s, 2s, 4s. No jitter: per-session call volume is low
// enough that deterministic delays are fine and they keep tests exact.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:    3,
	InitialDelay:  1 * time.Second,
	MaxDelay:      10 * time.Second,
	BackoffFactor: 2.0,
}

// InsightRetryConfig bounds the latency of the background pacing-insight
// check, which is not worth waiting long for.
var InsightRetryConfig = RetryConfig{
	MaxRetries:    1,
	InitialDelay:  1 * time.Second,
	MaxDelay:      10 * time.Second,
	BackoffFactor: 2.0,
}

// WithRetry executes fn with exponential backoff. It stops when fn succeeds,
// when the error is not retryable (anything but the rate-limit signal), when
// the context is cancelled, or when retries are exhausted. The last error is
// returned on exhaustion.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return zero, err
		}

		if attempt >= cfg.MaxRetries {
			break
		}

		delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))
		if delay > float64(cfg.MaxDelay) {
			delay = float64(cfg.MaxDelay)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(delay)):
			// continue to next attempt
		}
	}

	return zero, lastErr
}
