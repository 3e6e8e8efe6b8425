package resilience

import (
	"context"
	"time"
)

type RetryConfig struct {
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
}

func NormalizeRetryConfig(cfg RetryConfig) RetryConfig {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	if cfg.MaxBackoff <= 0 || cfg.MaxBackoff < cfg.Backoff {
		cfg.MaxBackoff = cfg.Backoff * 8
	}
	return cfg
}

// Retry runs fn until it succeeds, returns an error rejected by retryable, or
// MaxRetries extra attempts are spent. Backoff doubles per attempt up to MaxBackoff.
// onRetry, when set, is told about every attempt that will be repeated.
func Retry(
	ctx context.Context,
	cfg RetryConfig,
	retryable func(error) bool,
	onRetry func(attempt int, err error),
	fn func(ctx context.Context) error,
) error {
	cfg = NormalizeRetryConfig(cfg)
	delay := cfg.Backoff

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if retryable == nil || !retryable(lastErr) || attempt == cfg.MaxRetries {
			return lastErr
		}
		if onRetry != nil {
			onRetry(attempt+1, lastErr)
		}

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
			if delay > cfg.MaxBackoff {
				delay = cfg.MaxBackoff
			}
		}
	}

	return lastErr
}
