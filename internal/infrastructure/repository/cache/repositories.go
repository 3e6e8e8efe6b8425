package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
)

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64) (league.League, bool, error) {
	key := "league:id:" + strconv.FormatInt(leagueID, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeagueByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeagueByID)
	return cached.value, cached.exists, nil
}

type cachedLeagueByID struct {
	value  league.League
	exists bool
}

// LeaderboardRepository caches league totals until an evaluation drops the
// league's tag.
type LeaderboardRepository struct {
	next  leaderboard.Repository
	cache *basecache.Store
}

func NewLeaderboardRepository(next leaderboard.Repository, cache *basecache.Store) *LeaderboardRepository {
	return &LeaderboardRepository{next: next, cache: cache}
}

func (r *LeaderboardRepository) ListLeagueTotals(ctx context.Context, leagueID int64) ([]leaderboard.Total, error) {
	key := "leaderboard:totals:" + strconv.FormatInt(leagueID, 10)
	tags := []string{leaderboard.CacheTag(leagueID)}
	v, err := r.cache.GetOrLoadTagged(ctx, key, tags, func(ctx context.Context) (any, error) {
		items, err := r.next.ListLeagueTotals(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return append([]leaderboard.Total(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]leaderboard.Total)
	return append([]leaderboard.Total(nil), items...), nil
}
