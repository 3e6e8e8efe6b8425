package invalidation

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

func seededStore(t *testing.T) *basecache.Store {
	t.Helper()

	store := basecache.NewStore(time.Minute)
	store.SetTagged(context.Background(), "bets:match:1", "cached", "bets:match")
	store.SetTagged(context.Background(), "leaderboard:1", "cached", "leaderboard:league:1")
	return store
}

func TestLocal_InvalidatesTaggedEntries(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	if err := NewLocal(store).InvalidateTags(context.Background(), "bets:match"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok := store.Get(context.Background(), "bets:match:1"); ok {
		t.Fatalf("expected bet entry to be dropped")
	}
	if _, ok := store.Get(context.Background(), "leaderboard:1"); !ok {
		t.Fatalf("expected leaderboard entry to survive")
	}
}

func TestRedis_HandleAppliesRemoteMessages(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	r := NewRedis(nil, "", "replica-a", NewLocal(store), logging.NewNop())

	r.handle(context.Background(), `{"origin":"replica-a","tags":["bets:match"]}`)
	if _, ok := store.Get(context.Background(), "bets:match:1"); !ok {
		t.Fatalf("expected own message to be ignored")
	}

	r.handle(context.Background(), `not-json`)
	r.handle(context.Background(), `{"origin":"replica-b","tags":["bets:match"," ",""]}`)
	if _, ok := store.Get(context.Background(), "bets:match:1"); ok {
		t.Fatalf("expected remote message to drop the entry")
	}
}

func TestRedis_InvalidateTagsReportsPublishFailure(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := seededStore(t)
	r := NewRedis(client, "test-channel", "replica-a", NewLocal(store), logging.NewNop())

	err := r.InvalidateTags(context.Background(), "leaderboard:league:1", "leaderboard:league:1")
	if err == nil {
		t.Fatalf("expected publish error against an unreachable redis")
	}
	if _, ok := store.Get(context.Background(), "leaderboard:1"); ok {
		t.Fatalf("expected local entry to be dropped even when publish fails")
	}
}

func TestCompactTags(t *testing.T) {
	t.Parallel()

	got := compactTags([]string{"a", " a ", "", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected tags: %v", got)
	}
	if err := NewRedis(nil, "", "x", nil, nil).InvalidateTags(context.Background(), " "); err != nil {
		t.Fatalf("expected no-op for empty tags, got %v", err)
	}
}
