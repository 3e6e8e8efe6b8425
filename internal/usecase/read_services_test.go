package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

func TestBetResultService_CachesUntilCategoryTagIsDropped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore(memory.SeedDataset())
	readCache := cache.NewStore(time.Minute)
	service := NewBetResultService(store, readCache)

	before, err := service.Get(ctx, "match", memory.MatchIDOpener)
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	if before.IsEvaluated || len(before.Predictions) != 3 {
		t.Fatalf("unexpected results before evaluation: %+v", before)
	}

	if _, err := newTestEngine(store).Evaluate(ctx, bet.CategoryMatch, memory.MatchIDOpener, nil); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	stale, err := service.Get(ctx, "match", memory.MatchIDOpener)
	if err != nil {
		t.Fatalf("get cached results: %v", err)
	}
	if stale.IsEvaluated {
		t.Fatalf("expected cached read before invalidation")
	}

	readCache.InvalidateTags(ctx, bet.CacheTag(bet.CategoryMatch))
	fresh, err := service.Get(ctx, "match", memory.MatchIDOpener)
	if err != nil {
		t.Fatalf("get fresh results: %v", err)
	}
	if !fresh.IsEvaluated || fresh.Predictions[0].TotalPoints != 15 {
		t.Fatalf("expected fresh evaluated results, got %+v", fresh)
	}
}

func TestBetResultService_Validation(t *testing.T) {
	t.Parallel()

	service := NewBetResultService(memory.NewStore(memory.SeedDataset()), nil)
	if _, err := service.Get(context.Background(), "cricket", 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.Get(context.Background(), "question", 77); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRankingService_RankingAt(t *testing.T) {
	t.Parallel()

	service := NewRankingService(memory.NewStore(memory.SeedDataset()))
	ctx := context.Background()

	got, err := service.RankingAt(ctx, memory.LeagueIDDemo, memory.PlayerIDStriker, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ranking at: %v", err)
	}
	if !got.Found || got.Ranking != 1 {
		t.Fatalf("expected tier 1, got %+v", got)
	}

	got, err = service.RankingAt(ctx, memory.LeagueIDDemo, memory.PlayerIDStriker, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC))
	if err != nil {
		t.Fatalf("ranking before season: %v", err)
	}
	if got.Found {
		t.Fatalf("expected no ranking before the first interval, got %+v", got)
	}

	if _, err := service.RankingAt(ctx, 0, 1, time.Time{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEvaluationJob_EvaluatesPendingInstances(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedDataset())
	service := NewEvaluationService(newTestEngine(store), nil, nil, nil, nil, logging.NewNop(), EvaluationServiceConfig{})
	job := NewEvaluationJob(store, service, logging.NewNop(), 10)
	job.now = func() time.Time { return engineNow }

	result, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run job: %v", err)
	}
	// The opener match and the goal-total single bet have results; the series
	// and question do not.
	if result.Evaluated != 2 || result.Failed != 0 {
		t.Fatalf("unexpected job result: %+v", result)
	}

	again, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("rerun job: %v", err)
	}
	if again.Evaluated != 0 {
		t.Fatalf("expected nothing pending on rerun, got %+v", again)
	}
}

func TestEvaluationJob_PagesPastInstancesThatStayPending(t *testing.T) {
	t.Parallel()

	data := memory.SeedDataset()
	answer := true

	// Match 1 lacks its scorers and stays pending; match 2 takes its predictions.
	opener := data.Matches.Instances[memory.MatchIDOpener]
	second := opener
	second.ID = 2
	opener.ScorerIDs = nil
	data.Matches.Instances[memory.MatchIDOpener] = opener
	data.Matches.Instances[second.ID] = second
	for id, p := range data.Matches.Predictions {
		p.BetID = second.ID
		data.Matches.Predictions[id] = p
	}

	// Question 1 is answered with no predictions ahead of question 2.
	first := data.Questions.Instances[memory.QuestionIDPenalty]
	first.Answer = &answer
	next := first
	next.ID = 2
	data.Questions.Instances[first.ID] = first
	data.Questions.Instances[next.ID] = next
	for id, p := range data.Questions.Predictions {
		p.BetID = next.ID
		data.Questions.Predictions[id] = p
	}

	store := memory.NewStore(data)
	service := NewEvaluationService(newTestEngine(store), nil, nil, nil, nil, logging.NewNop(), EvaluationServiceConfig{})
	job := NewEvaluationJob(store, service, logging.NewNop(), 1)
	job.now = func() time.Time { return engineNow }

	result, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run job: %v", err)
	}
	// match 2, the single bet and both questions
	if result.Evaluated != 4 || result.Skipped != 1 || result.Failed != 0 {
		t.Fatalf("unexpected job result: %+v", result)
	}

	snapshot := store.Snapshot()
	if !snapshot.Matches.Instances[second.ID].IsEvaluated || snapshot.Matches.Instances[memory.MatchIDOpener].IsEvaluated {
		t.Fatalf("unexpected match flags: %+v", snapshot.Matches.Instances)
	}
	if !snapshot.Questions.Instances[first.ID].IsEvaluated || !snapshot.Questions.Instances[next.ID].IsEvaluated {
		t.Fatalf("expected both questions evaluated: %+v", snapshot.Questions.Instances)
	}

	again, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("rerun job: %v", err)
	}
	if again.Evaluated != 0 || again.Skipped != 1 {
		t.Fatalf("expected only the incomplete match on rerun, got %+v", again)
	}
}

func TestEvaluationJob_ActsWithConfiguredAdminRole(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedDataset())
	service := NewEvaluationService(newTestEngine(store), nil, nil, nil, nil, logging.NewNop(), EvaluationServiceConfig{
		AdminRole: "league-admin",
	})
	job := NewEvaluationJob(store, service, logging.NewNop(), 10)
	job.now = func() time.Time { return engineNow }

	result, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run job: %v", err)
	}
	if result.Evaluated != 2 || result.Failed != 0 {
		t.Fatalf("unexpected job result: %+v", result)
	}
	if !store.Snapshot().Matches.Instances[memory.MatchIDOpener].IsEvaluated {
		t.Fatalf("expected opener to be evaluated")
	}
}
