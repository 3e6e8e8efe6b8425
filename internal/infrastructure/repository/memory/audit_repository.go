package memory

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/audit"
)

type AuditRepository struct {
	store *Store
}

func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

func (r *AuditRepository) Insert(_ context.Context, entry audit.Entry) error {
	r.store.write(func(d *Dataset) {
		d.AuditLogs = append(d.AuditLogs, entry)
	})
	return nil
}
