package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type RankingRepository struct {
	db sqlx.QueryerContext
}

func NewRankingRepository(db sqlx.QueryerContext) *RankingRepository {
	return &RankingRepository{db: db}
}

// RankingAt picks the newest version whose [effective_from, effective_to)
// interval covers at.
func (r *RankingRepository) RankingAt(ctx context.Context, leagueID, participantID int64, at time.Time) (int, bool, error) {
	query, args, err := qb.Select("ranking").From("ranking_versions").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("participant_id", participantID),
			qb.Lte("effective_from", at),
			qb.Expr("(effective_to IS NULL OR effective_to > ?)", at),
			qb.IsNull("deleted_at"),
		).
		OrderBy("effective_from DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build ranking at query: %w", err)
	}

	var tier int
	if err := sqlx.GetContext(ctx, r.db, &tier, query, args...); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("ranking at participant=%d: %w", participantID, err)
	}
	return tier, true, nil
}

type rankingAtRow struct {
	ParticipantID int64 `db:"participant_id"`
	Ranking       int   `db:"ranking"`
}

// RankingsAt resolves every ranked participant of the league in one query.
func (r *RankingRepository) RankingsAt(ctx context.Context, leagueID int64, at time.Time) (map[int64]int, error) {
	query, args, err := qb.Select("DISTINCT ON (participant_id) participant_id", "ranking").From("ranking_versions").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Lte("effective_from", at),
			qb.Expr("(effective_to IS NULL OR effective_to > ?)", at),
			qb.IsNull("deleted_at"),
		).
		OrderBy("participant_id", "effective_from DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build rankings at query: %w", err)
	}

	var rows []rankingAtRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("rankings at league=%d: %w", leagueID, err)
	}

	out := make(map[int64]int, len(rows))
	for _, row := range rows {
		out[row.ParticipantID] = row.Ranking
	}
	return out, nil
}
