package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type evaluatorConfigTableModel struct {
	ID        int64     `db:"id"`
	LeagueID  int64     `db:"league_id"`
	Kind      string    `db:"kind"`
	Name      string    `db:"name"`
	Points    int       `db:"points"`
	Config    []byte    `db:"config"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type EvaluatorRepository struct {
	db sqlx.QueryerContext
}

func NewEvaluatorRepository(db sqlx.QueryerContext) *EvaluatorRepository {
	return &EvaluatorRepository{db: db}
}

// ListByLeague decodes every config payload; a malformed one fails the whole
// read with evaluator.ErrInvalidConfig.
func (r *EvaluatorRepository) ListByLeague(ctx context.Context, leagueID int64) ([]evaluator.Config, error) {
	query, args, err := qb.Select("id", "league_id", "kind", "name", "points", "config", "created_at", "updated_at").
		From("evaluator_configs").
		Where(
			qb.Eq("league_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list evaluator configs query: %w", err)
	}

	var rows []evaluatorConfigTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list evaluator configs league=%d: %w", leagueID, err)
	}

	out := make([]evaluator.Config, 0, len(rows))
	for _, row := range rows {
		kind := evaluator.Kind(row.Kind)
		settings, err := evaluator.DecodeSettings(kind, row.Config)
		if err != nil {
			return nil, fmt.Errorf("evaluator config id=%d: %w", row.ID, err)
		}
		out = append(out, evaluator.Config{
			ID:        row.ID,
			LeagueID:  row.LeagueID,
			Kind:      kind,
			Name:      row.Name,
			Points:    row.Points,
			Settings:  settings,
			CreatedAt: row.CreatedAt.UTC(),
			UpdatedAt: row.UpdatedAt.UTC(),
		})
	}
	return out, nil
}
