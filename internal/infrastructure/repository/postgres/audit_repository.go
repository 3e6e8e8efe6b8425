package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type auditLogInsertModel struct {
	ID                  string    `db:"id"`
	AdminUserID         int64     `db:"admin_user_id"`
	Action              string    `db:"action"`
	Category            string    `db:"category"`
	BetInstanceID       int64     `db:"bet_instance_id"`
	TotalUsersEvaluated int       `db:"total_users_evaluated"`
	SumOfPoints         int       `db:"sum_of_points"`
	DurationMs          int64     `db:"duration_ms"`
	CreatedAt           time.Time `db:"created_at"`
}

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, entry audit.Entry) error {
	query, args, err := qb.InsertModel("audit_logs", auditLogInsertModel{
		ID:                  entry.ID,
		AdminUserID:         entry.AdminUserID,
		Action:              entry.Action,
		Category:            entry.Category,
		BetInstanceID:       entry.BetInstanceID,
		TotalUsersEvaluated: entry.TotalUsersEvaluated,
		SumOfPoints:         entry.SumOfPoints,
		DurationMs:          entry.DurationMs,
		CreatedAt:           entry.CreatedAt,
	}, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert audit log query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
