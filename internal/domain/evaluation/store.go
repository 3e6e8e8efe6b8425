package evaluation

import (
	"context"
	"errors"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
	"github.com/riskibarqy/prediction-league/internal/domain/participant"
	"github.com/riskibarqy/prediction-league/internal/domain/ranking"
)

// ErrSerializationFailure marks a transaction aborted by a concurrent writer.
// The whole unit of work is safe to retry.
var ErrSerializationFailure = errors.New("serialization failure")

// Tx exposes the repositories bound to one unit of work.
type Tx interface {
	Matches() bet.MatchRepository
	Series() bet.SeriesRepository
	SingleBets() bet.SingleBetRepository
	Questions() bet.QuestionRepository
	Evaluators() evaluator.Repository
	Rankings() ranking.Repository
	Participants() participant.Repository
}

// Store runs units of work. WithinTx uses serializable isolation and either
// commits everything fn wrote or nothing.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
