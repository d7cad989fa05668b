package delivery

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// RetryConfig holds configuration for retry with backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// InitialBackoff is the initial backoff duration.
	// Default: 200ms
	InitialBackoff time.Duration `yaml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration.
	// Default: 5s
	MaxBackoff time.Duration `yaml:"max_backoff"`

	// BackoffMultiplier is applied to the backoff after each attempt.
	// Default: 2.0
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`

	// JitterFraction is the fraction of backoff to randomize (0.0 to 1.0).
	// Default: 0.1
	JitterFraction float64 `yaml:"jitter_fraction"`
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		JitterFraction:    0.1,
	}
}

// retryWithBackoff executes the operation with exponential backoff on failure.
// NoRetryError stops immediately; RetryAfterError overrides the next delay.
func retryWithBackoff(ctx context.Context, config RetryConfig, operation func() error) error {
	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		lastErr = operation()
		if !IsRetryableError(lastErr) {
			return lastErr
		}

		if attempt >= config.MaxAttempts {
			break
		}

		jitter := time.Duration(float64(backoff) * config.JitterFraction * (rand.Float64()*2 - 1))
		sleepDuration := backoff + jitter
		if sleepDuration < 0 {
			sleepDuration = backoff
		}
		var after *core.RetryAfterError
		if errors.As(lastErr, &after) {
			sleepDuration = after.Delay
		}

		timer := time.NewTimer(sleepDuration)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return lastErr
}

// IsRetryableError reports whether a delivery error is worth retrying.
// Context errors and errors wrapped with core.NoRetry are permanent.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var noRetry *core.NoRetryError
	return !errors.As(err, &noRetry)
}
