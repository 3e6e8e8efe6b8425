package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type ParticipantRepository struct {
	db sqlx.QueryerContext
}

func NewParticipantRepository(db sqlx.QueryerContext) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

type participantPositionRow struct {
	ID       int64  `db:"id"`
	Position string `db:"position"`
}

func (r *ParticipantRepository) PositionsByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	query, args, err := qb.Select("id", "position").From("participants").
		Where(
			qb.EqAny("id", pq.Int64Array(ids)),
			qb.Expr("COALESCE(position, '') <> ''"),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build participant positions query: %w", err)
	}

	var rows []participantPositionRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list participant positions: %w", err)
	}

	out := make(map[int64]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Position
	}
	return out, nil
}
