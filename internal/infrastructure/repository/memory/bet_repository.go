package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
)

// betRepository implements bet.Repository for any category over a BetTable.
type betRepository[I any, P any] struct {
	table        *BetTable[I, P]
	instanceOf   func(*I) *bet.Instance
	predictionOf func(*P) *bet.Prediction
	hasOutcome   func(I) bool
}

func (r *betRepository[I, P]) Get(_ context.Context, id int64) (I, bool, error) {
	item, ok := r.table.Instances[id]
	return item, ok, nil
}

func (r *betRepository[I, P]) ListPredictions(_ context.Context, id int64) ([]P, error) {
	out := make([]P, 0)
	for _, p := range r.table.Predictions {
		if r.predictionOf(&p).BetID == id {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b P) int {
		return compareInt64(r.predictionOf(&a).ID, r.predictionOf(&b).ID)
	})
	return out, nil
}

func (r *betRepository[I, P]) SavePoints(_ context.Context, id int64, updates []bet.PointsUpdate, scoredAt time.Time) error {
	for _, u := range updates {
		p, ok := r.table.Predictions[u.PredictionID]
		if !ok || r.predictionOf(&p).BetID != id {
			return fmt.Errorf("prediction %d does not belong to bet %d", u.PredictionID, id)
		}
		base := r.predictionOf(&p)
		base.TotalPoints = u.TotalPoints
		at := scoredAt
		base.ScoredAt = &at
		r.table.Predictions[u.PredictionID] = p
	}
	return nil
}

func (r *betRepository[I, P]) MarkEvaluated(_ context.Context, id int64, at time.Time) error {
	item, ok := r.table.Instances[id]
	if !ok {
		return fmt.Errorf("bet %d not found", id)
	}
	inst := r.instanceOf(&item)
	inst.IsEvaluated = true
	evaluatedAt := at
	inst.EvaluatedAt = &evaluatedAt
	r.table.Instances[id] = item
	return nil
}

func (r *betRepository[I, P]) ListPendingIDs(_ context.Context, scheduledBefore time.Time, afterID int64, limit int) ([]int64, error) {
	out := make([]int64, 0)
	for id, item := range r.table.Instances {
		inst := r.instanceOf(&item)
		if id <= afterID || inst.IsEvaluated || !inst.ScheduledAt.Before(scheduledBefore) || !r.hasOutcome(item) {
			continue
		}
		out = append(out, id)
	}
	slices.Sort(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
