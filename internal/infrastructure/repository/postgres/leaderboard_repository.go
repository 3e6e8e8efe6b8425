package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

const predictionPointsUnion = `(
    SELECT league_user_id, total_points FROM user_match_bets WHERE deleted_at IS NULL
    UNION ALL
    SELECT league_user_id, total_points FROM user_series_bets WHERE deleted_at IS NULL
    UNION ALL
    SELECT league_user_id, total_points FROM user_single_bets WHERE deleted_at IS NULL
    UNION ALL
    SELECT league_user_id, total_points FROM user_question_bets WHERE deleted_at IS NULL
) p`

type leaderboardTotalRow struct {
	LeagueUserID int64  `db:"league_user_id"`
	UserID       int64  `db:"user_id"`
	DisplayName  string `db:"display_name"`
	Points       int    `db:"points"`
}

type LeaderboardRepository struct {
	db *sqlx.DB
}

func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

func (r *LeaderboardRepository) ListLeagueTotals(ctx context.Context, leagueID int64) ([]leaderboard.Total, error) {
	query, args, err := qb.Select(
		"lu.id AS league_user_id",
		"lu.user_id",
		"lu.display_name",
		"COALESCE(SUM(p.total_points), 0) AS points",
	).
		From("league_users lu LEFT JOIN "+predictionPointsUnion+" ON p.league_user_id = lu.id").
		Where(
			qb.Eq("lu.league_id", leagueID),
			qb.IsNull("lu.deleted_at"),
		).
		GroupBy("lu.id", "lu.user_id", "lu.display_name").
		OrderBy("points DESC", "lu.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build league totals query: %w", err)
	}

	var rows []leaderboardTotalRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league totals league=%d: %w", leagueID, err)
	}

	out := make([]leaderboard.Total, 0, len(rows))
	for _, row := range rows {
		out = append(out, leaderboard.Total{
			LeagueUserID: row.LeagueUserID,
			UserID:       row.UserID,
			DisplayName:  row.DisplayName,
			Points:       row.Points,
		})
	}
	return out, nil
}
