package memory

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/league"
)

type LeagueRepository struct {
	store *Store
}

func NewLeagueRepository(store *Store) *LeagueRepository {
	return &LeagueRepository{store: store}
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID int64) (league.League, bool, error) {
	var (
		l  league.League
		ok bool
	)
	r.store.read(func(d *Dataset) {
		l, ok = d.Leagues[leagueID]
	})
	return l, ok, nil
}
