package memory

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
)

type LeaderboardRepository struct {
	store *Store
}

func NewLeaderboardRepository(store *Store) *LeaderboardRepository {
	return &LeaderboardRepository{store: store}
}

// ListLeagueTotals sums every category's prediction points per league member.
// Members without predictions are listed with zero points.
func (r *LeaderboardRepository) ListLeagueTotals(_ context.Context, leagueID int64) ([]leaderboard.Total, error) {
	var out []leaderboard.Total
	r.store.read(func(d *Dataset) {
		points := make(map[int64]int)
		for _, p := range d.Matches.Predictions {
			points[p.LeagueUserID] += p.TotalPoints
		}
		for _, p := range d.Series.Predictions {
			points[p.LeagueUserID] += p.TotalPoints
		}
		for _, p := range d.SingleBets.Predictions {
			points[p.LeagueUserID] += p.TotalPoints
		}
		for _, p := range d.Questions.Predictions {
			points[p.LeagueUserID] += p.TotalPoints
		}

		out = make([]leaderboard.Total, 0)
		for _, lu := range d.LeagueUsers {
			if lu.LeagueID != leagueID {
				continue
			}
			out = append(out, leaderboard.Total{
				LeagueUserID: lu.ID,
				UserID:       lu.UserID,
				DisplayName:  lu.DisplayName,
				Points:       points[lu.ID],
			})
		}
	})
	return out, nil
}
