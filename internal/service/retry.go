package service

import (
	"context"
	"time"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/logger"

	"go.uber.org/zap"
)

// RetryPolicy bounds WithRetry. MaxAttempts counts the first call.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// IsTransient reports lock and serialization conflicts that are safe to re-run.
func IsTransient(err error) bool {
	return domain.IsTransientDBError(err)
}

// WithRetry re-runs fn on transient database errors, sleeping Backoff*attempt
// between tries. Any other error, or the last transient one, is returned unchanged.
func WithRetry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := policy.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsTransient(err) || attempt == attempts {
			break
		}

		wait := policy.Backoff * time.Duration(attempt)
		logger.Get().Warn("Transient database error, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("backoff", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}
