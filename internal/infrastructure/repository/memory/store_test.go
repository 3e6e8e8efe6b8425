package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
)

func TestStore_WithinTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := NewStore(SeedDataset())
	boom := errors.New("boom")

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx evaluation.Tx) error {
		if err := tx.Matches().SavePoints(ctx, MatchIDOpener, []bet.PointsUpdate{{PredictionID: 1, TotalPoints: 99}}, time.Now()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	snapshot := store.Snapshot()
	if got := snapshot.Matches.Predictions[1].TotalPoints; got != 0 {
		t.Fatalf("expected rolled back points, got %d", got)
	}
}

func TestStore_WithinTxCommits(t *testing.T) {
	t.Parallel()

	store := NewStore(SeedDataset())
	at := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx evaluation.Tx) error {
		if err := tx.Matches().SavePoints(ctx, MatchIDOpener, []bet.PointsUpdate{{PredictionID: 2, TotalPoints: 7}}, at); err != nil {
			return err
		}
		return tx.Matches().MarkEvaluated(ctx, MatchIDOpener, at)
	})
	if err != nil {
		t.Fatalf("commit tx: %v", err)
	}

	snapshot := store.Snapshot()
	p := snapshot.Matches.Predictions[2]
	if p.TotalPoints != 7 || p.ScoredAt == nil || !p.ScoredAt.Equal(at) {
		t.Fatalf("unexpected prediction after commit: %+v", p.Prediction)
	}
	if m := snapshot.Matches.Instances[MatchIDOpener]; !m.IsEvaluated {
		t.Fatalf("expected match to be marked evaluated")
	}
}

func TestBetRepository_SavePointsRejectsForeignPrediction(t *testing.T) {
	t.Parallel()

	store := NewStore(SeedDataset())
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx evaluation.Tx) error {
		return tx.Questions().SavePoints(ctx, 999, []bet.PointsUpdate{{PredictionID: 1, TotalPoints: 1}}, time.Now())
	})
	if err == nil {
		t.Fatalf("expected error for prediction of another bet")
	}
}

func TestBetRepository_ListPendingIDs(t *testing.T) {
	t.Parallel()

	store := NewStore(SeedDataset())
	err := store.View(context.Background(), func(ctx context.Context, tx evaluation.Tx) error {
		ids, err := tx.Matches().ListPendingIDs(ctx, seedKickoff.Add(time.Hour), 0, 10)
		if err != nil {
			return err
		}
		if len(ids) != 1 || ids[0] != MatchIDOpener {
			t.Fatalf("unexpected pending matches: %v", ids)
		}

		ids, err = tx.Matches().ListPendingIDs(ctx, seedKickoff.Add(time.Hour), MatchIDOpener, 10)
		if err != nil {
			return err
		}
		if len(ids) != 0 {
			t.Fatalf("ids at or below afterID must be skipped: %v", ids)
		}

		ids, err = tx.Questions().ListPendingIDs(ctx, seedKickoff.Add(time.Hour), 0, 10)
		if err != nil {
			return err
		}
		if len(ids) != 0 {
			t.Fatalf("question without answer must not be pending: %v", ids)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestLeaderboardRepository_ListLeagueTotals(t *testing.T) {
	t.Parallel()

	data := SeedDataset()
	p := data.Matches.Predictions[1]
	p.TotalPoints = 15
	data.Matches.Predictions[1] = p
	q := data.Questions.Predictions[1]
	q.TotalPoints = 2
	data.Questions.Predictions[1] = q

	repo := NewLeaderboardRepository(NewStore(data))
	totals, err := repo.ListLeagueTotals(context.Background(), LeagueIDDemo)
	if err != nil {
		t.Fatalf("list totals: %v", err)
	}
	if len(totals) != 3 {
		t.Fatalf("expected three members, got %d", len(totals))
	}
	for _, total := range totals {
		if total.LeagueUserID == 1 && total.Points != 17 {
			t.Fatalf("expected 17 points for member 1, got %d", total.Points)
		}
	}
}
