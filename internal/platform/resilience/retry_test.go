package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errConflict = errors.New("serialization failure")

func TestRetry_RetriesRetryableErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	retried := 0
	err := Retry(context.Background(), RetryConfig{MaxRetries: 3, Backoff: time.Millisecond},
		func(err error) bool { return errors.Is(err, errConflict) },
		func(int, error) { retried++ },
		func(context.Context) error {
			calls++
			if calls < 3 {
				return errConflict
			}
			return nil
		},
	)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 || retried != 2 {
		t.Fatalf("unexpected attempts calls=%d retried=%d", calls, retried)
	}
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	calls := 0
	err := Retry(context.Background(), RetryConfig{MaxRetries: 5},
		func(err error) bool { return errors.Is(err, errConflict) },
		nil,
		func(context.Context) error {
			calls++
			return boom
		},
	)
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("expected single attempt with boom, got calls=%d err=%v", calls, err)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Retry(context.Background(), RetryConfig{MaxRetries: 2},
		func(error) bool { return true },
		nil,
		func(context.Context) error {
			calls++
			return errConflict
		},
	)
	if !errors.Is(err, errConflict) || calls != 3 {
		t.Fatalf("expected 3 attempts ending in conflict, got calls=%d err=%v", calls, err)
	}
}

func TestRetry_HonoursContextDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	err := Retry(ctx, RetryConfig{MaxRetries: 3, Backoff: time.Hour},
		func(error) bool { return true },
		func(int, error) { cancel() },
		func(context.Context) error { return errConflict },
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
