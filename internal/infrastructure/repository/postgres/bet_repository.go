package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type betRepository[I any, P any, IR any, PR any] struct {
	db     sqlx.ExtContext
	lock   bool
	schema betSchema[I, P, IR, PR]
}

func newBetRepository[I any, P any, IR any, PR any](db sqlx.ExtContext, lock bool, schema betSchema[I, P, IR, PR]) *betRepository[I, P, IR, PR] {
	return &betRepository[I, P, IR, PR]{db: db, lock: lock, schema: schema}
}

func (r *betRepository[I, P, IR, PR]) Get(ctx context.Context, id int64) (I, bool, error) {
	var zero I

	builder := qb.Select(r.schema.instanceColumns...).From(r.schema.instanceTable).
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		)
	if r.lock {
		builder = builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return zero, false, fmt.Errorf("build get %s query: %w", r.schema.category, err)
	}

	var row IR
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("get %s id=%d: %w", r.schema.category, id, err)
	}

	return r.schema.toInstance(row), true, nil
}

func (r *betRepository[I, P, IR, PR]) ListPredictions(ctx context.Context, id int64) ([]P, error) {
	query, args, err := qb.Select(r.schema.predictionColumns...).
		From(r.schema.predictionTable+" b JOIN league_users lu ON lu.id = b.league_user_id").
		Where(
			qb.Eq("b."+r.schema.foreignKey, id),
			qb.IsNull("b.deleted_at"),
		).
		OrderBy("b.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list %s predictions query: %w", r.schema.category, err)
	}

	var rows []PR
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s predictions id=%d: %w", r.schema.category, id, err)
	}

	out := make([]P, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.schema.toPrediction(row))
	}
	return out, nil
}

// SavePoints overwrites every listed prediction's total in one statement.
func (r *betRepository[I, P, IR, PR]) SavePoints(ctx context.Context, id int64, updates []bet.PointsUpdate, scoredAt time.Time) error {
	if len(updates) == 0 {
		return nil
	}

	query, args, err := savePointsQuery(r.schema.predictionTable, r.schema.foreignKey, id, updates, scoredAt)
	if err != nil {
		return fmt.Errorf("build save %s points query: %w", r.schema.category, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save %s points id=%d: %w", r.schema.category, id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected != int64(len(updates)) {
		return fmt.Errorf("save %s points id=%d: updated %d of %d predictions", r.schema.category, id, affected, len(updates))
	}
	return nil
}

func savePointsQuery(table, foreignKey string, id int64, updates []bet.PointsUpdate, scoredAt time.Time) (string, []any, error) {
	ids := make([]int64, 0, len(updates))
	points := make([]int64, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.PredictionID)
		points = append(points, int64(u.TotalPoints))
	}

	return qb.Update(table+" AS b").
		SetExpr("total_points", "u.total_points").
		Set("scored_at", scoredAt).
		SetExpr("updated_at", "NOW()").
		From("unnest(?::bigint[], ?::int[]) AS u(id, total_points)", pq.Int64Array(ids), pq.Int64Array(points)).
		Where(
			qb.Expr("b.id = u.id"),
			qb.Eq("b."+foreignKey, id),
			qb.IsNull("b.deleted_at"),
		).
		ToSQL()
}

func (r *betRepository[I, P, IR, PR]) MarkEvaluated(ctx context.Context, id int64, at time.Time) error {
	query, args, err := qb.Update(r.schema.instanceTable).
		Set("is_evaluated", true).
		Set("evaluated_at", at).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark %s evaluated query: %w", r.schema.category, err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark %s evaluated id=%d: %w", r.schema.category, id, err)
	}
	return nil
}

func (r *betRepository[I, P, IR, PR]) ListPendingIDs(ctx context.Context, scheduledBefore time.Time, afterID int64, limit int) ([]int64, error) {
	query, args, err := qb.Select("id").From(r.schema.instanceTable).
		Where(
			qb.Expr("id > ?", afterID),
			qb.Eq("is_evaluated", false),
			qb.Expr("scheduled_at < ?", scheduledBefore),
			r.schema.outcomeRecorded,
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending %s query: %w", r.schema.category, err)
	}

	var ids []int64
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list pending %s: %w", r.schema.category, err)
	}
	return ids, nil
}
