package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	auditmock "github.com/riskibarqy/prediction-league/internal/mocks/domain/audit"
	evaluatormock "github.com/riskibarqy/prediction-league/internal/mocks/domain/evaluator"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/stretchr/testify/mock"
)

var admin = user.Principal{UserID: 7, Roles: []string{user.RoleAdmin}}

type runnerFunc func(ctx context.Context, category bet.Category, betID int64, userID *int64) (evaluation.Summary, error)

func (f runnerFunc) Evaluate(ctx context.Context, category bet.Category, betID int64, userID *int64) (evaluation.Summary, error) {
	return f(ctx, category, betID, userID)
}

type recordingInvalidator struct {
	mu   sync.Mutex
	tags []string
	err  error
}

func (r *recordingInvalidator) InvalidateTags(_ context.Context, tags ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = append(r.tags, tags...)
	return r.err
}

type recordingMetrics struct {
	mu       sync.Mutex
	statuses []string
	retries  int
}

func (m *recordingMetrics) ObserveEvaluation(_ string, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

func (m *recordingMetrics) IncEvaluationRetry(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}

func TestEvaluationService_RejectsBeforeTouchingStore(t *testing.T) {
	t.Parallel()

	calls := 0
	runner := runnerFunc(func(context.Context, bet.Category, int64, *int64) (evaluation.Summary, error) {
		calls++
		return evaluation.Summary{}, nil
	})
	service := NewEvaluationService(runner, nil, nil, nil, nil, logging.NewNop(), EvaluationServiceConfig{})

	negative := int64(-1)
	tests := []struct {
		name      string
		principal user.Principal
		input     EvaluateInput
		targetErr error
		code      string
	}{
		{name: "unknown category", principal: admin, input: EvaluateInput{Category: "darts", BetInstanceID: 1}, targetErr: ErrInvalidInput, code: "BAD_REQUEST"},
		{name: "non positive bet id", principal: admin, input: EvaluateInput{Category: "match", BetInstanceID: 0}, targetErr: ErrInvalidInput, code: "BAD_REQUEST"},
		{name: "non positive user id", principal: admin, input: EvaluateInput{Category: "match", BetInstanceID: 1, UserID: &negative}, targetErr: ErrInvalidInput, code: "BAD_REQUEST"},
		{name: "anonymous", principal: user.Principal{}, input: EvaluateInput{Category: "match", BetInstanceID: 1}, targetErr: ErrUnauthorized, code: "UNAUTHORIZED"},
		{name: "member", principal: user.Principal{UserID: 9, Roles: []string{"member"}}, input: EvaluateInput{Category: "match", BetInstanceID: 1}, targetErr: ErrForbidden, code: "FORBIDDEN"},
	}

	for _, tc := range tests {
		result := service.Execute(context.Background(), tc.principal, tc.input)
		if result.Success {
			t.Fatalf("%s: expected failure", tc.name)
		}
		if !errors.Is(result.Err(), tc.targetErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.targetErr, result.Err())
		}
		if result.Code != tc.code || result.Error == "" {
			t.Fatalf("%s: unexpected failure envelope: %+v", tc.name, result)
		}
	}
	if calls != 0 {
		t.Fatalf("runner must not be called for rejected input, got %d calls", calls)
	}
}

func TestEvaluationService_RetriesSerializationFailures(t *testing.T) {
	t.Parallel()

	attempts := 0
	runner := runnerFunc(func(context.Context, bet.Category, int64, *int64) (evaluation.Summary, error) {
		attempts++
		if attempts < 3 {
			return evaluation.Summary{}, evaluation.ErrSerializationFailure
		}
		return evaluation.Summary{Category: bet.CategoryMatch, BetInstanceID: 1, LeagueID: 1}, nil
	})
	metrics := &recordingMetrics{}
	service := NewEvaluationService(runner, nil, nil, metrics, nil, logging.NewNop(), EvaluationServiceConfig{
		Retry: resilience.RetryConfig{MaxRetries: 3},
	})

	result := service.Execute(context.Background(), admin, EvaluateInput{Category: "match", BetInstanceID: 1})
	if !result.Success {
		t.Fatalf("expected success after retries, got %+v", result)
	}
	if attempts != 3 || metrics.retries != 2 {
		t.Fatalf("unexpected attempts=%d retries=%d", attempts, metrics.retries)
	}
	if len(metrics.statuses) != 1 || metrics.statuses[0] != evaluationStatusSuccess {
		t.Fatalf("unexpected metric statuses: %v", metrics.statuses)
	}
}

func TestEvaluationService_GivesUpAfterBoundedRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	runner := runnerFunc(func(context.Context, bet.Category, int64, *int64) (evaluation.Summary, error) {
		attempts++
		return evaluation.Summary{}, evaluation.ErrSerializationFailure
	})
	service := NewEvaluationService(runner, nil, nil, nil, nil, logging.NewNop(), EvaluationServiceConfig{
		Retry: resilience.RetryConfig{MaxRetries: 2},
	})

	_, err := service.Evaluate(context.Background(), admin, EvaluateInput{Category: "series", BetInstanceID: 4})
	if !errors.Is(err, evaluation.ErrSerializationFailure) {
		t.Fatalf("expected serialization failure, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestEvaluationService_CollaboratorFailuresAreSwallowed(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedDataset())
	sink := auditmock.NewSink(t)
	sink.
		On("Record", mock.Anything, mock.MatchedBy(func(e audit.Entry) bool {
			return e.AdminUserID == admin.UserID &&
				e.Action == audit.ActionEvaluate &&
				e.Category == "match" &&
				e.BetInstanceID == memory.MatchIDOpener &&
				e.TotalUsersEvaluated == 3 &&
				e.SumOfPoints == 32 &&
				e.ID == "audit-1"
		})).
		Return(errors.New("audit store down")).
		Once()
	invalidator := &recordingInvalidator{err: errors.New("redis down")}

	service := NewEvaluationService(
		newTestEngine(store), sink, invalidator, nil, id.Static("audit-1"), logging.NewNop(), EvaluationServiceConfig{},
	)

	result := service.Execute(context.Background(), admin, EvaluateInput{Category: "match", BetInstanceID: memory.MatchIDOpener})
	if !result.Success || result.TotalUsersEvaluated != 3 {
		t.Fatalf("expected success despite collaborator failures, got %+v", result)
	}
	if len(result.Results) != 3 || len(result.Results[0].EvaluatorResults) != 3 {
		t.Fatalf("unexpected result views: %+v", result.Results)
	}

	want := map[string]bool{"bets:match": false, "leaderboard:league:1": false}
	for _, tag := range invalidator.tags {
		want[tag] = true
	}
	for tag, seen := range want {
		if !seen {
			t.Fatalf("expected tag %s to be invalidated, got %v", tag, invalidator.tags)
		}
	}

	if got := store.Snapshot().Matches.Predictions[1].TotalPoints; got != 15 {
		t.Fatalf("scoring must persist despite collaborator failure, got %d", got)
	}
}

type evaluatorOverrideStore struct {
	evaluation.Store
	evaluators evaluator.Repository
}

type evaluatorOverrideTx struct {
	evaluation.Tx
	evaluators evaluator.Repository
}

func (t evaluatorOverrideTx) Evaluators() evaluator.Repository { return t.evaluators }

func (s evaluatorOverrideStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx evaluation.Tx) error) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, tx evaluation.Tx) error {
		return fn(ctx, evaluatorOverrideTx{Tx: tx, evaluators: s.evaluators})
	})
}

func TestEvaluationEngine_EvaluatorLoadFailureWritesNothing(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedDataset())
	evaluators := evaluatormock.NewRepository(t)
	evaluators.
		On("ListByLeague", mock.Anything, memory.LeagueIDDemo).
		Return(nil, errors.New("connection reset")).
		Once()

	engine := newTestEngine(store)
	engine.store = evaluatorOverrideStore{Store: store, evaluators: evaluators}

	_, err := engine.Evaluate(context.Background(), bet.CategoryMatch, memory.MatchIDOpener, nil)
	if err == nil {
		t.Fatalf("expected evaluator load error")
	}
	if store.Snapshot().Matches.Instances[memory.MatchIDOpener].IsEvaluated {
		t.Fatalf("match must not be marked evaluated")
	}
}

func TestActionResult_JSONShapes(t *testing.T) {
	t.Parallel()

	store := memory.NewStore(memory.SeedDataset())
	service := NewEvaluationService(newTestEngine(store), nil, nil, nil, nil, logging.NewNop(), EvaluationServiceConfig{})
	nobody := int64(999)

	empty := service.Execute(context.Background(), admin, EvaluateInput{Category: "match", BetInstanceID: memory.MatchIDOpener, UserID: &nobody})
	failed := service.Execute(context.Background(), user.Principal{}, EvaluateInput{Category: "match", BetInstanceID: memory.MatchIDOpener})

	tests := []struct {
		name    string
		result  ActionResult
		present []string
		absent  []string
	}{
		{name: "success without predictions", result: empty, present: []string{"success", "results", "totalUsersEvaluated"}, absent: []string{"error"}},
		{name: "failure", result: failed, present: []string{"success", "error", "code"}, absent: []string{"results", "totalUsersEvaluated"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			body := mustDecode(t, tc.result)
			for _, key := range tc.present {
				if _, ok := body[key]; !ok {
					t.Fatalf("expected key %q in %v", key, body)
				}
			}
			for _, key := range tc.absent {
				if _, ok := body[key]; ok {
					t.Fatalf("unexpected key %q in %v", key, body)
				}
			}
		})
	}

	if results, ok := mustDecode(t, empty)["results"].([]any); !ok || len(results) != 0 {
		t.Fatalf("expected an empty results array for a user without a prediction")
	}
}

func mustDecode(t *testing.T, result ActionResult) map[string]any {
	t.Helper()
	raw, err := sonic.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var body map[string]any
	if err := sonic.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return body
}
