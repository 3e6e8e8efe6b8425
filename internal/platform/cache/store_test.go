package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "leaderboard:league:1", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_InvalidateTags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)
	store.SetTagged(ctx, "leaderboard:league:1:top", "a", "leaderboard:league:1")
	store.SetTagged(ctx, "leaderboard:league:1:page2", "b", "leaderboard:league:1")
	store.SetTagged(ctx, "leaderboard:league:10:top", "c", "leaderboard:league:10")
	store.SetTagged(ctx, "bets:match:4", "d", "bets:match")

	removed := store.InvalidateTags(ctx, "leaderboard:league:1", "bets:match")
	if removed != 3 {
		t.Fatalf("removed %d entries, want 3", removed)
	}
	if _, ok := store.Get(ctx, "leaderboard:league:1:top"); ok {
		t.Fatalf("expected tagged entry to be dropped")
	}
	if _, ok := store.Get(ctx, "leaderboard:league:10:top"); !ok {
		t.Fatalf("expected entry of another league to survive")
	}
	if removed := store.InvalidateTags(ctx, "leaderboard:league:1"); removed != 0 {
		t.Fatalf("second invalidation removed %d entries, want 0", removed)
	}
}

func TestStore_ExpiredEntryIsMiss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Second)
	store.now = func() time.Time { return now }

	store.Set(ctx, "k", "v")
	now = now.Add(2 * time.Second)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestStore_LoaderErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	errLoad := errors.New("db down")
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errLoad
		}
		return "fresh", nil
	}

	if _, err := store.GetOrLoadTagged(context.Background(), "k", []string{"t"}, loader); !errors.Is(err, errLoad) {
		t.Fatalf("expected loader error, got %v", err)
	}
	v, err := store.GetOrLoadTagged(context.Background(), "k", []string{"t"}, loader)
	if err != nil || v != "fresh" {
		t.Fatalf("expected retry to load fresh value, got %v %v", v, err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", nil); err == nil {
		t.Fatalf("expected error for nil loader")
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
