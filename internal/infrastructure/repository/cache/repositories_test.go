package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	leaderboardmock "github.com/riskibarqy/prediction-league/internal/mocks/domain/leaderboard"
	leaguemock "github.com/riskibarqy/prediction-league/internal/mocks/domain/league"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

func TestLeagueRepository_CachesMisses(t *testing.T) {
	t.Parallel()

	next := leaguemock.NewRepository(t)
	next.On("GetByID", mock.Anything, int64(9)).Return(league.League{}, false, nil).Once()

	repo := NewLeagueRepository(next, basecache.NewStore(time.Minute))
	for i := 0; i < 2; i++ {
		_, exists, err := repo.GetByID(context.Background(), 9)
		if err != nil || exists {
			t.Fatalf("attempt %d: expected cached miss, got exists=%v err=%v", i, exists, err)
		}
	}
}

func TestLeaderboardRepository_InvalidatedByLeagueTag(t *testing.T) {
	t.Parallel()

	next := leaderboardmock.NewRepository(t)
	next.On("ListLeagueTotals", mock.Anything, int64(1)).
		Return([]leaderboard.Total{{LeagueUserID: 1, Points: 5}}, nil).Twice()

	store := basecache.NewStore(time.Minute)
	repo := NewLeaderboardRepository(next, store)

	first, err := repo.ListLeagueTotals(context.Background(), 1)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	first[0].Points = 99

	cached, err := repo.ListLeagueTotals(context.Background(), 1)
	if err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if cached[0].Points != 5 {
		t.Fatalf("expected cached copy to be isolated from callers, got %d", cached[0].Points)
	}

	store.InvalidateTags(context.Background(), leaderboard.CacheTag(2))
	if _, err := repo.ListLeagueTotals(context.Background(), 1); err != nil {
		t.Fatalf("load after unrelated invalidation: %v", err)
	}

	store.InvalidateTags(context.Background(), leaderboard.CacheTag(1))
	if _, err := repo.ListLeagueTotals(context.Background(), 1); err != nil {
		t.Fatalf("reload: %v", err)
	}
}
