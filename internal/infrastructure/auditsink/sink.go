package auditsink

import (
	"context"
	"errors"

	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// RepositorySink persists entries into the audit log table.
type RepositorySink struct {
	repo audit.Repository
}

func NewRepositorySink(repo audit.Repository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

func (s *RepositorySink) Record(ctx context.Context, entry audit.Entry) error {
	return s.repo.Insert(ctx, entry)
}

// LogSink writes entries to the structured log.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(ctx context.Context, entry audit.Entry) error {
	s.logger.InfoContext(ctx, "evaluation audit",
		"audit_id", entry.ID,
		"admin_user_id", entry.AdminUserID,
		"action", entry.Action,
		"category", entry.Category,
		"bet_instance_id", entry.BetInstanceID,
		"total_users_evaluated", entry.TotalUsersEvaluated,
		"sum_of_points", entry.SumOfPoints,
		"duration_ms", entry.DurationMs,
	)
	return nil
}

// MultiSink forwards to every sink and joins their failures.
type MultiSink []audit.Sink

func (m MultiSink) Record(ctx context.Context, entry audit.Entry) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
