package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"go.opentelemetry.io/otel/attribute"
)

// ReadCache is the tagged read-through cache used by public reads.
type ReadCache interface {
	GetOrLoadTagged(ctx context.Context, key string, tags []string, loader func(context.Context) (any, error)) (any, error)
}

type PredictionPoints struct {
	PredictionID int64
	LeagueUserID int64
	UserID       int64
	TotalPoints  int
	ScoredAt     *time.Time
}

type BetResults struct {
	Category      bet.Category
	BetInstanceID int64
	LeagueID      int64
	IsEvaluated   bool
	EvaluatedAt   *time.Time
	Predictions   []PredictionPoints
}

// BetResultService serves the public per-bet points table. Entries are tagged
// with the category so an evaluation drops them.
type BetResultService struct {
	store evaluation.Store
	cache ReadCache
}

func NewBetResultService(store evaluation.Store, cache ReadCache) *BetResultService {
	return &BetResultService{store: store, cache: cache}
}

func (s *BetResultService) Get(ctx context.Context, rawCategory string, betID int64) (BetResults, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BetResultService.Get",
		attribute.String("bet.category", rawCategory),
		attribute.Int64("bet.id", betID),
	)
	defer span.End()

	category, err := bet.ParseCategory(rawCategory)
	if err != nil {
		return BetResults{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if betID <= 0 {
		return BetResults{}, fmt.Errorf("%w: bet id must be a positive integer", ErrInvalidInput)
	}

	if s.cache == nil {
		return s.load(ctx, category, betID)
	}

	key := bet.CacheTag(category) + ":" + strconv.FormatInt(betID, 10)
	v, err := s.cache.GetOrLoadTagged(ctx, key, []string{bet.CacheTag(category)}, func(ctx context.Context) (any, error) {
		return s.load(ctx, category, betID)
	})
	if err != nil {
		return BetResults{}, err
	}
	out, _ := v.(BetResults)
	out.Predictions = append([]PredictionPoints(nil), out.Predictions...)
	return out, nil
}

func (s *BetResultService) load(ctx context.Context, category bet.Category, betID int64) (BetResults, error) {
	var out BetResults
	err := s.store.View(ctx, func(ctx context.Context, tx evaluation.Tx) error {
		var err error
		switch category {
		case bet.CategoryMatch:
			out, err = loadBetResults[bet.Match, bet.UserMatchBet](ctx, tx, matchAdapter{}, betID)
		case bet.CategorySeries:
			out, err = loadBetResults[bet.Series, bet.UserSeriesBet](ctx, tx, seriesAdapter{}, betID)
		case bet.CategorySingleBet:
			out, err = loadBetResults[bet.SingleBet, bet.UserSingleBet](ctx, tx, singleBetAdapter{}, betID)
		case bet.CategoryQuestion:
			out, err = loadBetResults[bet.Question, bet.UserQuestionBet](ctx, tx, questionAdapter{}, betID)
		}
		return err
	})
	if err != nil {
		return BetResults{}, err
	}
	return out, nil
}

func loadBetResults[I any, P any](ctx context.Context, tx evaluation.Tx, adapter categoryAdapter[I, P], betID int64) (BetResults, error) {
	category := adapter.category()
	repo := adapter.repository(tx)

	instance, exists, err := repo.Get(ctx, betID)
	if err != nil {
		return BetResults{}, fmt.Errorf("get %s: %w", category, err)
	}
	if !exists {
		return BetResults{}, fmt.Errorf("%w: %s=%d", ErrNotFound, category, betID)
	}

	predictions, err := repo.ListPredictions(ctx, betID)
	if err != nil {
		return BetResults{}, fmt.Errorf("list %s predictions: %w", category, err)
	}

	target := adapter.target(instance)
	out := BetResults{
		Category:      category,
		BetInstanceID: betID,
		LeagueID:      target.instance.LeagueID,
		IsEvaluated:   target.instance.IsEvaluated,
		EvaluatedAt:   target.instance.EvaluatedAt,
		Predictions:   make([]PredictionPoints, 0, len(predictions)),
	}
	for _, p := range predictions {
		in := adapter.prediction(instance, p)
		out.Predictions = append(out.Predictions, PredictionPoints{
			PredictionID: in.prediction.ID,
			LeagueUserID: in.prediction.LeagueUserID,
			UserID:       in.prediction.UserID,
			TotalPoints:  in.prediction.TotalPoints,
			ScoredAt:     in.prediction.ScoredAt,
		})
	}
	return out, nil
}
