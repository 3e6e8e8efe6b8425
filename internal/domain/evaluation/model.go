package evaluation

import (
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
)

// EvaluatorResult is one config's contribution to a user's total.
type EvaluatorResult struct {
	EvaluatorID   int64
	EvaluatorName string
	Kind          evaluator.Kind
	Awarded       bool
	Points        int
}

type UserResult struct {
	UserID           int64
	LeagueUserID     int64
	PredictionID     int64
	TotalPoints      int
	EvaluatorResults []EvaluatorResult
}

// Summary is what one evaluation pass produced.
type Summary struct {
	Category            bet.Category
	BetInstanceID       int64
	LeagueID            int64
	Results             []UserResult
	TotalUsersEvaluated int
	MarkedEvaluated     bool
}

func (s Summary) SumOfPoints() int {
	total := 0
	for _, r := range s.Results {
		total += r.TotalPoints
	}
	return total
}
