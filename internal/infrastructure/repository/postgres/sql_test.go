package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/shopspring/decimal"
)

func TestIsSerializationFailure(t *testing.T) {
	t.Run("matches pq serialization code", func(t *testing.T) {
		err := fmt.Errorf("save points: %w", &pq.Error{Code: "40001", Message: "could not serialize access"})
		if !isSerializationFailure(err) {
			t.Fatalf("expected true for 40001")
		}
	})

	t.Run("matches deadlock code", func(t *testing.T) {
		if !isSerializationFailure(&pq.Error{Code: "40P01"}) {
			t.Fatalf("expected true for 40P01")
		}
	})

	t.Run("matches message fallback", func(t *testing.T) {
		if !isSerializationFailure(fakeErr("pq: could not serialize access due to read/write dependencies (40001)")) {
			t.Fatalf("expected true for serialization message")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isSerializationFailure(&pq.Error{Code: "23505"}) {
			t.Fatalf("expected false for unique violation")
		}
	})
}

func TestMapTxError(t *testing.T) {
	err := mapTxError(&pq.Error{Code: "40001"})
	if !errors.Is(err, evaluation.ErrSerializationFailure) {
		t.Fatalf("expected serialization failure sentinel, got %v", err)
	}

	plain := errors.New("boom")
	if got := mapTxError(plain); got != plain {
		t.Fatalf("expected unrelated error to pass through, got %v", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
}

func TestSavePointsQuery(t *testing.T) {
	at := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	query, args, err := savePointsQuery("user_match_bets", "match_id", 9, []bet.PointsUpdate{
		{PredictionID: 1, TotalPoints: 15},
		{PredictionID: 3, TotalPoints: 2},
	}, at)
	if err != nil {
		t.Fatalf("build query: %v", err)
	}

	want := "UPDATE user_match_bets AS b SET total_points = u.total_points, scored_at = $1, updated_at = NOW() " +
		"FROM unnest($2::bigint[], $3::int[]) AS u(id, total_points) " +
		"WHERE b.id = u.id AND b.match_id = $4 AND b.deleted_at IS NULL"
	if query != want {
		t.Fatalf("unexpected query:\n%s\nwant:\n%s", query, want)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %#v", args)
	}
	ids, ok := args[1].(pq.Int64Array)
	if !ok || len(ids) != 2 || ids[1] != 3 {
		t.Fatalf("unexpected ids arg: %#v", args[1])
	}
	points, ok := args[2].(pq.Int64Array)
	if !ok || points[0] != 15 {
		t.Fatalf("unexpected points arg: %#v", args[2])
	}
}

func TestSchemas_MapRows(t *testing.T) {
	home, away := 2, 1
	match := matchSchema.toInstance(matchTableModel{
		instanceTableModel: instanceTableModel{ID: 1, LeagueID: 4, ScheduledAt: time.Now()},
		HomeScore:          &home,
		AwayScore:          &away,
		ScorerIDs:          pq.Int64Array{10, 11},
	})
	if match.LeagueID != 4 || len(match.ScorerIDs) != 2 {
		t.Fatalf("unexpected match: %+v", match)
	}

	single := singleBetSchema.toInstance(singleBetTableModel{
		instanceTableModel: instanceTableModel{ID: 2},
		Value:              decimal.NullDecimal{Decimal: decimal.RequireFromString("11.5"), Valid: true},
	})
	if single.Value == nil || !single.Value.Equal(decimal.RequireFromString("11.5")) || !single.HasOutcome() {
		t.Fatalf("unexpected single bet: %+v", single)
	}

	prediction := questionSchema.toPrediction(userQuestionBetTableModel{
		predictionTableModel: predictionTableModel{ID: 5, BetID: 2, UserID: 77, ScoredAt: sql.NullTime{Time: time.Now(), Valid: true}},
	})
	if prediction.UserID != 77 || prediction.ScoredAt == nil || prediction.Answer != nil {
		t.Fatalf("unexpected prediction: %+v", prediction)
	}
}

func TestPredictionColumns(t *testing.T) {
	cols := strings.Join(predictionColumns("series_id", "home_score"), ", ")
	if !strings.Contains(cols, "b.series_id AS bet_id") || !strings.HasSuffix(cols, "b.home_score") {
		t.Fatalf("unexpected prediction columns: %s", cols)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func TestSeedRows_ParentsBeforeChildren(t *testing.T) {
	rows, err := seedRows(memory.SeedDataset())
	if err != nil {
		t.Fatalf("seed rows: %v", err)
	}

	seen := make(map[string]int)
	for i, row := range rows {
		if _, ok := seen[row.table]; !ok {
			seen[row.table] = i
		}
	}
	order := [][2]string{
		{"leagues", "league_users"},
		{"league_users", "user_match_bets"},
		{"matches", "user_match_bets"},
		{"single_bets", "user_single_bets"},
	}
	for _, pair := range order {
		if seen[pair[0]] >= seen[pair[1]] {
			t.Fatalf("expected %s before %s", pair[0], pair[1])
		}
	}
}
