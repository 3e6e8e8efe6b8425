package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
)

const (
	evaluationStatusSuccess  = "success"
	evaluationStatusFailed   = "failed"
	evaluationStatusRejected = "rejected"
)

type EvaluationRunner interface {
	Evaluate(ctx context.Context, category bet.Category, betID int64, userID *int64) (evaluation.Summary, error)
}

// CacheInvalidator drops cached reads by tag.
type CacheInvalidator interface {
	InvalidateTags(ctx context.Context, tags ...string) error
}

type EvaluationMetrics interface {
	ObserveEvaluation(category, status string, duration time.Duration)
	IncEvaluationRetry(category string)
}

type EvaluationServiceConfig struct {
	AdminRole string
	Retry     resilience.RetryConfig
}

type EvaluateInput struct {
	Category      string
	BetInstanceID int64
	UserID        *int64
}

type EvaluatorResultView struct {
	EvaluatorName string `json:"evaluatorName"`
	Awarded       bool   `json:"awarded"`
	Points        int    `json:"points"`
}

type UserResultView struct {
	UserID           int64                 `json:"userId"`
	TotalPoints      int                   `json:"totalPoints"`
	EvaluatorResults []EvaluatorResultView `json:"evaluatorResults"`
}

// ActionResult is the action-layer response. Error is a plain message meant
// for administrators.
type ActionResult struct {
	Success             bool             `json:"success"`
	Results             []UserResultView `json:"results"`
	TotalUsersEvaluated int              `json:"totalUsersEvaluated"`
	Error               string           `json:"error,omitempty"`
	Code                string           `json:"code,omitempty"`

	err error
}

func (r ActionResult) Err() error {
	return r.err
}

// MarshalJSON drops the result fields from a failure.
func (r ActionResult) MarshalJSON() ([]byte, error) {
	if r.Success {
		type success ActionResult
		return sonic.Marshal(success(r))
	}
	return sonic.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Code    string `json:"code,omitempty"`
	}{Error: r.Error, Code: r.Code})
}

// EvaluationService is the administrator-facing evaluation entry point. It
// authorizes the caller, retries serialization conflicts and runs audit and
// cache collaborators after the transaction has committed.
type EvaluationService struct {
	runner      EvaluationRunner
	auditSink   audit.Sink
	invalidator CacheInvalidator
	metrics     EvaluationMetrics
	ids         id.Generator
	logger      *logging.Logger
	cfg         EvaluationServiceConfig
	now         func() time.Time
}

func NewEvaluationService(
	runner EvaluationRunner,
	auditSink audit.Sink,
	invalidator CacheInvalidator,
	metrics EvaluationMetrics,
	ids id.Generator,
	logger *logging.Logger,
	cfg EvaluationServiceConfig,
) *EvaluationService {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.AdminRole) == "" {
		cfg.AdminRole = user.RoleAdmin
	}
	cfg.Retry = resilience.NormalizeRetryConfig(cfg.Retry)

	return &EvaluationService{
		runner:      runner,
		auditSink:   auditSink,
		invalidator: invalidator,
		metrics:     metrics,
		ids:         ids,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// AdminRole is the role a principal needs to trigger an evaluation.
func (s *EvaluationService) AdminRole() string {
	return s.cfg.AdminRole
}

// Execute wraps Evaluate into the success/failure envelope.
func (s *EvaluationService) Execute(ctx context.Context, principal user.Principal, input EvaluateInput) ActionResult {
	summary, err := s.Evaluate(ctx, principal, input)
	if err != nil {
		return ActionResult{
			Success: false,
			Error:   err.Error(),
			Code:    ErrorCode(err),
			err:     err,
		}
	}
	return NewActionResult(summary)
}

func NewActionResult(summary evaluation.Summary) ActionResult {
	views := make([]UserResultView, 0, len(summary.Results))
	for _, r := range summary.Results {
		breakdown := make([]EvaluatorResultView, 0, len(r.EvaluatorResults))
		for _, er := range r.EvaluatorResults {
			breakdown = append(breakdown, EvaluatorResultView{
				EvaluatorName: er.EvaluatorName,
				Awarded:       er.Awarded,
				Points:        er.Points,
			})
		}
		views = append(views, UserResultView{
			UserID:           r.UserID,
			TotalPoints:      r.TotalPoints,
			EvaluatorResults: breakdown,
		})
	}
	return ActionResult{
		Success:             true,
		Results:             views,
		TotalUsersEvaluated: summary.TotalUsersEvaluated,
	}
}

func (s *EvaluationService) Evaluate(ctx context.Context, principal user.Principal, input EvaluateInput) (evaluation.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EvaluationService.Evaluate",
		attribute.String("bet.category", input.Category),
		attribute.Int64("bet.id", input.BetInstanceID),
	)
	defer span.End()

	start := s.now()
	category, err := validateEvaluateInput(input)
	if err != nil {
		s.observe(string(category), evaluationStatusRejected, start)
		return evaluation.Summary{}, err
	}
	if !principal.Authenticated() {
		s.observe(string(category), evaluationStatusRejected, start)
		return evaluation.Summary{}, fmt.Errorf("%w: caller is not authenticated", ErrUnauthorized)
	}
	if !principal.HasRole(s.cfg.AdminRole) {
		s.observe(string(category), evaluationStatusRejected, start)
		return evaluation.Summary{}, fmt.Errorf("%w: evaluation requires the %s role", ErrForbidden, s.cfg.AdminRole)
	}

	var summary evaluation.Summary
	err = resilience.Retry(
		ctx,
		s.cfg.Retry,
		func(err error) bool { return errors.Is(err, evaluation.ErrSerializationFailure) },
		func(attempt int, err error) {
			if s.metrics != nil {
				s.metrics.IncEvaluationRetry(string(category))
			}
			s.logger.WarnContext(ctx, "retrying evaluation after serialization failure",
				"category", category,
				"bet_id", input.BetInstanceID,
				"attempt", attempt,
				"error", err,
			)
		},
		func(ctx context.Context) error {
			var runErr error
			summary, runErr = s.runner.Evaluate(ctx, category, input.BetInstanceID, input.UserID)
			return runErr
		},
	)
	if err != nil {
		recordSpanError(span, err)
		s.observe(string(category), evaluationStatusFailed, start)
		s.logger.WarnContext(ctx, "evaluation failed",
			"category", category,
			"bet_id", input.BetInstanceID,
			"error", err,
		)
		return evaluation.Summary{}, err
	}

	duration := s.now().Sub(start)
	s.observe(string(category), evaluationStatusSuccess, start)
	s.afterCommit(ctx, principal, summary, duration)

	s.logger.InfoContext(ctx, "evaluation completed",
		"category", category,
		"bet_id", input.BetInstanceID,
		"users_evaluated", summary.TotalUsersEvaluated,
		"marked_evaluated", summary.MarkedEvaluated,
		"duration_ms", duration.Milliseconds(),
	)
	return summary, nil
}

// afterCommit notifies the audit sink and drops cached reads. Failures are
// logged and never reach the caller.
func (s *EvaluationService) afterCommit(ctx context.Context, principal user.Principal, summary evaluation.Summary, duration time.Duration) {
	var wg conc.WaitGroup
	if s.auditSink != nil {
		wg.Go(func() {
			entry := audit.Entry{
				AdminUserID:         principal.UserID,
				Action:              audit.ActionEvaluate,
				Category:            string(summary.Category),
				BetInstanceID:       summary.BetInstanceID,
				TotalUsersEvaluated: summary.TotalUsersEvaluated,
				SumOfPoints:         summary.SumOfPoints(),
				DurationMs:          duration.Milliseconds(),
				CreatedAt:           s.now().UTC(),
			}
			if s.ids != nil {
				if entryID, err := s.ids.NewID(); err == nil {
					entry.ID = entryID
				}
			}
			if err := s.auditSink.Record(ctx, entry); err != nil {
				s.logger.WarnContext(ctx, "record evaluation audit entry failed",
					"category", summary.Category,
					"bet_id", summary.BetInstanceID,
					"error", err,
				)
			}
		})
	}
	if s.invalidator != nil {
		wg.Go(func() {
			tags := []string{bet.CacheTag(summary.Category), leaderboard.CacheTag(summary.LeagueID)}
			if err := s.invalidator.InvalidateTags(ctx, tags...); err != nil {
				s.logger.WarnContext(ctx, "invalidate evaluation caches failed",
					"tags", tags,
					"error", err,
				)
			}
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.ErrorContext(ctx, "evaluation collaborator panicked", "error", recovered.AsError())
	}
}

func (s *EvaluationService) observe(category, status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	if category == "" {
		category = "unknown"
	}
	s.metrics.ObserveEvaluation(category, status, s.now().Sub(start))
}

func validateEvaluateInput(input EvaluateInput) (bet.Category, error) {
	category, err := bet.ParseCategory(strings.TrimSpace(input.Category))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.BetInstanceID <= 0 {
		return category, fmt.Errorf("%w: bet instance id must be a positive integer", ErrInvalidInput)
	}
	if input.UserID != nil && *input.UserID <= 0 {
		return category, fmt.Errorf("%w: user id must be a positive integer", ErrInvalidInput)
	}
	return category, nil
}
