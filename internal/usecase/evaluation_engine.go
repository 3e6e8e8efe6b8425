package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultEvaluationWorkers   = 4
	parallelScoringThreshold   = 256
	maxEvaluationWorkerCeiling = 32
)

type EvaluationEngineConfig struct {
	// Workers bounds the scoring pool used for large prediction batches.
	Workers int
}

// EvaluationEngine recomputes the points of every (or one) prediction on a bet
// instance inside a single serializable transaction.
type EvaluationEngine struct {
	store   evaluation.Store
	workers int
	now     func() time.Time
}

func NewEvaluationEngine(store evaluation.Store, cfg EvaluationEngineConfig) *EvaluationEngine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultEvaluationWorkers
	}
	if workers > maxEvaluationWorkerCeiling {
		workers = maxEvaluationWorkerCeiling
	}
	return &EvaluationEngine{
		store:   store,
		workers: workers,
		now:     time.Now,
	}
}

// Evaluate runs one evaluation attempt. userID narrows the pass to that user's
// prediction.
func (e *EvaluationEngine) Evaluate(ctx context.Context, category bet.Category, betID int64, userID *int64) (evaluation.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EvaluationEngine.Evaluate",
		attribute.String("bet.category", string(category)),
		attribute.Int64("bet.id", betID),
	)
	defer span.End()

	var summary evaluation.Summary
	err := e.store.WithinTx(ctx, func(ctx context.Context, tx evaluation.Tx) error {
		var err error
		switch category {
		case bet.CategoryMatch:
			summary, err = evaluateInTx[bet.Match, bet.UserMatchBet](ctx, e, tx, matchAdapter{}, betID, userID)
		case bet.CategorySeries:
			summary, err = evaluateInTx[bet.Series, bet.UserSeriesBet](ctx, e, tx, seriesAdapter{}, betID, userID)
		case bet.CategorySingleBet:
			summary, err = evaluateInTx[bet.SingleBet, bet.UserSingleBet](ctx, e, tx, singleBetAdapter{}, betID, userID)
		case bet.CategoryQuestion:
			summary, err = evaluateInTx[bet.Question, bet.UserQuestionBet](ctx, e, tx, questionAdapter{}, betID, userID)
		default:
			err = fmt.Errorf("%w: unknown bet category %q", ErrInvalidInput, category)
		}
		return err
	})
	if err != nil {
		return evaluation.Summary{}, err
	}
	return summary, nil
}

func evaluateInTx[I any, P any](
	ctx context.Context,
	e *EvaluationEngine,
	tx evaluation.Tx,
	adapter categoryAdapter[I, P],
	betID int64,
	userID *int64,
) (evaluation.Summary, error) {
	category := adapter.category()
	repo := adapter.repository(tx)

	instance, exists, err := repo.Get(ctx, betID)
	if err != nil {
		return evaluation.Summary{}, fmt.Errorf("get %s: %w", category, err)
	}
	if !exists {
		return evaluation.Summary{}, fmt.Errorf("%w: %s=%d", ErrNotFound, category, betID)
	}

	target := adapter.target(instance)
	if !target.recorded {
		return evaluation.Summary{}, fmt.Errorf("%w: %s=%d", ErrOutcomeMissing, category, betID)
	}

	configs, err := tx.Evaluators().ListByLeague(ctx, target.instance.LeagueID)
	if err != nil {
		return evaluation.Summary{}, fmt.Errorf("list evaluators: %w", err)
	}
	applicable := evaluator.Resolve(configs, category)
	for _, cfg := range applicable {
		if err := cfg.Validate(); err != nil {
			return evaluation.Summary{}, fmt.Errorf("evaluator %d: %w", cfg.ID, err)
		}
	}
	if missing := target.outcome.Missing(evaluator.Requirements(applicable)); len(missing) > 0 && !target.partial {
		return evaluation.Summary{}, fmt.Errorf("%w: %s=%d missing %s", ErrOutcomeMissing, category, betID, joinFields(missing))
	}

	predictions, err := repo.ListPredictions(ctx, betID)
	if err != nil {
		return evaluation.Summary{}, fmt.Errorf("list %s predictions: %w", category, err)
	}

	all := make([]evaluationInput, 0, len(predictions))
	targets := make([]evaluationInput, 0, len(predictions))
	for _, p := range predictions {
		in := adapter.prediction(instance, p)
		all = append(all, in)
		if userID == nil || in.prediction.UserID == *userID {
			targets = append(targets, in)
		}
	}

	summary := evaluation.Summary{
		Category:      category,
		BetInstanceID: betID,
		LeagueID:      target.instance.LeagueID,
		Results:       []evaluation.UserResult{},
	}
	// A user without a prediction leaves the instance untouched.
	if len(targets) == 0 && userID != nil {
		return summary, nil
	}

	now := e.now().UTC()
	if len(targets) > 0 {
		scoring, err := buildScoringContext(ctx, tx, target, applicable, all)
		if err != nil {
			return evaluation.Summary{}, err
		}

		results, err := e.scoreAll(targets, applicable, target.outcome, scoring)
		if err != nil {
			return evaluation.Summary{}, err
		}

		updates := make([]bet.PointsUpdate, 0, len(results))
		for _, r := range results {
			updates = append(updates, bet.PointsUpdate{PredictionID: r.PredictionID, TotalPoints: r.TotalPoints})
		}
		if err := repo.SavePoints(ctx, betID, updates, now); err != nil {
			return evaluation.Summary{}, fmt.Errorf("save %s points: %w", category, err)
		}
		summary.Results = results
		summary.TotalUsersEvaluated = len(results)
	}

	if userID == nil || everyPredictionScored(all, targets) {
		if err := repo.MarkEvaluated(ctx, betID, now); err != nil {
			return evaluation.Summary{}, fmt.Errorf("mark %s evaluated: %w", category, err)
		}
		summary.MarkedEvaluated = true
	}
	return summary, nil
}

// buildScoringContext fetches every batch-level input up front. Closest-value
// distance always spans the whole batch, even for a single-user pass.
func buildScoringContext(
	ctx context.Context,
	tx evaluation.Tx,
	target evaluationTarget,
	configs []evaluator.Config,
	all []evaluationInput,
) (evaluator.Context, error) {
	scoring := evaluator.Context{ScheduledAt: target.instance.ScheduledAt}

	if evaluator.NeedsRankings(configs) {
		rankings, err := tx.Rankings().RankingsAt(ctx, target.instance.LeagueID, target.instance.ScheduledAt)
		if err != nil {
			return evaluator.Context{}, fmt.Errorf("load rankings: %w", err)
		}
		scoring.Rankings = rankings
	}

	if evaluator.NeedsPositions(configs) {
		ids := participantIDs(all)
		if len(ids) > 0 {
			positions, err := tx.Participants().PositionsByIDs(ctx, ids)
			if err != nil {
				return evaluator.Context{}, fmt.Errorf("load participant positions: %w", err)
			}
			scoring.Positions = positions
		}
	}

	if target.outcome.Has(evaluator.FieldValue) {
		values := make([]decimal.Decimal, 0, len(all))
		for _, in := range all {
			if in.input.Value != nil {
				values = append(values, *in.input.Value)
			}
		}
		if closest, ok := evaluator.ClosestDistance(values, target.outcome.Value); ok {
			scoring.ClosestDistance = &closest
		}
	}

	return scoring, nil
}

// scoreAll keeps results in prediction order regardless of worker scheduling.
func (e *EvaluationEngine) scoreAll(
	targets []evaluationInput,
	configs []evaluator.Config,
	outcome evaluator.Outcome,
	scoring evaluator.Context,
) ([]evaluation.UserResult, error) {
	results := make([]evaluation.UserResult, len(targets))
	if len(targets) < parallelScoringThreshold || e.workers <= 1 {
		for i, in := range targets {
			results[i] = scoreOne(in, configs, outcome, scoring)
		}
		return results, nil
	}

	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return nil, fmt.Errorf("create scoring pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, in := range targets {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results[i] = scoreOne(in, configs, outcome, scoring)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit scoring task: %w", err)
		}
	}
	workers.Wait()
	return results, nil
}

func scoreOne(in evaluationInput, configs []evaluator.Config, outcome evaluator.Outcome, scoring evaluator.Context) evaluation.UserResult {
	result := evaluation.UserResult{
		UserID:           in.prediction.UserID,
		LeagueUserID:     in.prediction.LeagueUserID,
		PredictionID:     in.prediction.ID,
		EvaluatorResults: make([]evaluation.EvaluatorResult, 0, len(configs)),
	}
	for _, cfg := range configs {
		scored := evaluator.Score(cfg, in.input, outcome, scoring)
		result.TotalPoints += scored.Points
		result.EvaluatorResults = append(result.EvaluatorResults, evaluation.EvaluatorResult{
			EvaluatorID:   cfg.ID,
			EvaluatorName: cfg.DisplayName(),
			Kind:          cfg.Kind,
			Awarded:       scored.Awarded,
			Points:        scored.Points,
		})
	}
	return result
}

func everyPredictionScored(all, targets []evaluationInput) bool {
	scoredNow := make(map[int64]struct{}, len(targets))
	for _, in := range targets {
		scoredNow[in.prediction.ID] = struct{}{}
	}
	for _, in := range all {
		if _, ok := scoredNow[in.prediction.ID]; ok {
			continue
		}
		if in.prediction.ScoredAt == nil {
			return false
		}
	}
	return true
}

func participantIDs(all []evaluationInput) []int64 {
	seen := make(map[int64]struct{})
	out := make([]int64, 0, len(all))
	add := func(id *int64) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; ok {
			return
		}
		seen[*id] = struct{}{}
		out = append(out, *id)
	}
	for _, in := range all {
		add(in.input.TeamID)
		add(in.input.PlayerID)
		add(in.input.ScorerID)
	}
	return out
}

func joinFields(fields []evaluator.Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, ", ")
}
