// pkg/retry/retry.go - functions for retrying actions with optional backoff.

package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HaloSPV3/spv3/pkg/logging"
)

// ErrExhausted is returned when every allowed attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// NonRetryableError marks an error that ends the retry loop immediately.
type NonRetryableError struct {
	Err error
}

func (e NonRetryableError) Error() string { return e.Err.Error() }
func (e NonRetryableError) Unwrap() error { return e.Err }

// Permanent wraps err so Retry returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return NonRetryableError{Err: err}
}

// RetryConfig defines the configuration for retry attempts.
// MaxRetries of zero or less retries until ctx is cancelled.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
}

// Bounded reports whether the policy stops on its own.
func (c RetryConfig) Bounded() bool {
	return c.MaxRetries > 0
}

// Retry calls action until it returns nil, returns a NonRetryableError,
// the attempts run out, or ctx is done.
func Retry(ctx context.Context, config RetryConfig, action func(attempt int) error) error {
	interval := config.InitialInterval
	multiplier := config.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	var lastErr error
	for attempt := 1; !config.Bounded() || attempt <= config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := action(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		var nonRetryable NonRetryableError
		if errors.As(err, &nonRetryable) {
			logging.LogStructured(logging.LevelWarn,
				fmt.Sprintf("Non-retryable error encountered: %s", err.Error()),
				map[string]interface{}{
					"level":         "RETRY",
					"attempt":       attempt,
					"non_retryable": true,
				})
			return nonRetryable.Err
		}

		if config.Bounded() && attempt == config.MaxRetries {
			logging.LogStructured(logging.LevelWarn,
				fmt.Sprintf("Attempt %d/%d failed: %s. No more retries.", attempt, config.MaxRetries, err),
				map[string]interface{}{
					"level":         "RETRY",
					"attempt":       attempt,
					"max_attempts":  config.MaxRetries,
					"final_failure": true,
				})
			break
		}

		logging.LogStructured(logging.LevelWarn,
			fmt.Sprintf("Attempt %d failed: %s. Retrying in %s...", attempt, err, interval),
			map[string]interface{}{
				"level":        "RETRY",
				"attempt":      attempt,
				"max_attempts": config.MaxRetries,
				"retry_delay":  interval.String(),
			})

		if err := sleep(ctx, interval); err != nil {
			return err
		}
		interval = time.Duration(float64(interval) * multiplier)
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrExhausted, config.MaxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
