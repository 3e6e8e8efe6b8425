package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const defaultEvaluationJobBatchSize = 50

type EvaluationJobResult struct {
	Evaluated int
	Skipped   int
	Failed    int
}

// EvaluationJob evaluates bet instances whose result is recorded but which
// were never evaluated. It runs as the system principal.
type EvaluationJob struct {
	store     evaluation.Store
	evaluator *EvaluationService
	logger    *logging.Logger
	batchSize int
	now       func() time.Time
}

func NewEvaluationJob(store evaluation.Store, evaluator *EvaluationService, logger *logging.Logger, batchSize int) *EvaluationJob {
	if logger == nil {
		logger = logging.Default()
	}
	if batchSize <= 0 {
		batchSize = defaultEvaluationJobBatchSize
	}
	return &EvaluationJob{
		store:     store,
		evaluator: evaluator,
		logger:    logger,
		batchSize: batchSize,
		now:       time.Now,
	}
}

func (j *EvaluationJob) Run(ctx context.Context) (EvaluationJobResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EvaluationJob.Run")
	defer span.End()

	now := j.now().UTC()
	principal := user.System(j.evaluator.AdminRole())
	var result EvaluationJobResult
	for _, category := range bet.AllCategories {
		// Instances that fail or stay incomplete remain pending, so each page
		// starts after the last id tried rather than from the head of the list.
		var afterID int64
		for {
			ids, err := j.pendingIDs(ctx, category, now, afterID)
			if err != nil {
				return result, fmt.Errorf("list pending %s: %w", category, err)
			}

			for _, betID := range ids {
				if err := ctx.Err(); err != nil {
					return result, err
				}
				j.evaluate(ctx, principal, category, betID, &result)
			}

			if len(ids) < j.batchSize {
				break
			}
			afterID = ids[len(ids)-1]
		}
	}

	j.logger.InfoContext(ctx, "scheduled evaluation finished",
		"evaluated", result.Evaluated,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (j *EvaluationJob) evaluate(ctx context.Context, principal user.Principal, category bet.Category, betID int64, result *EvaluationJobResult) {
	_, err := j.evaluator.Evaluate(ctx, principal, EvaluateInput{
		Category:      string(category),
		BetInstanceID: betID,
	})
	switch {
	case err == nil:
		result.Evaluated++
	case errors.Is(err, ErrOutcomeMissing):
		result.Skipped++
	default:
		result.Failed++
		j.logger.WarnContext(ctx, "scheduled evaluation failed",
			"category", category,
			"bet_id", betID,
			"error", err,
		)
	}
}

func (j *EvaluationJob) pendingIDs(ctx context.Context, category bet.Category, before time.Time, afterID int64) ([]int64, error) {
	var ids []int64
	err := j.store.View(ctx, func(ctx context.Context, tx evaluation.Tx) error {
		var err error
		switch category {
		case bet.CategoryMatch:
			ids, err = tx.Matches().ListPendingIDs(ctx, before, afterID, j.batchSize)
		case bet.CategorySeries:
			ids, err = tx.Series().ListPendingIDs(ctx, before, afterID, j.batchSize)
		case bet.CategorySingleBet:
			ids, err = tx.SingleBets().ListPendingIDs(ctx, before, afterID, j.batchSize)
		case bet.CategoryQuestion:
			ids, err = tx.Questions().ListPendingIDs(ctx, before, afterID, j.batchSize)
		}
		return err
	})
	return ids, err
}
