package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
	"github.com/riskibarqy/prediction-league/internal/domain/participant"
	"github.com/riskibarqy/prediction-league/internal/domain/ranking"
)

// Store keeps every table in process memory. Transactions work on a copy of
// the dataset that replaces the live one only when fn succeeds, and they are
// serialized by a single lock.
type Store struct {
	mu   sync.RWMutex
	data *Dataset
}

func NewStore(seed Dataset) *Store {
	data := seed.clone()
	return &Store{data: &data}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx evaluation.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, newTx(&work)); err != nil {
		return err
	}
	s.data = &work
	return nil
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx evaluation.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.data.clone()
	return fn(ctx, newTx(&snapshot))
}

// Snapshot returns a copy of the current dataset.
func (s *Store) Snapshot() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

func (s *Store) read(fn func(d *Dataset)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(fn func(d *Dataset)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}

type tx struct {
	data *Dataset
}

func newTx(data *Dataset) *tx {
	return &tx{data: data}
}

func (t *tx) Matches() bet.MatchRepository {
	return &betRepository[bet.Match, bet.UserMatchBet]{
		table:        &t.data.Matches,
		instanceOf:   func(m *bet.Match) *bet.Instance { return &m.Instance },
		predictionOf: func(p *bet.UserMatchBet) *bet.Prediction { return &p.Prediction },
		hasOutcome:   func(m bet.Match) bool { return m.HomeScore != nil && m.AwayScore != nil },
	}
}

func (t *tx) Series() bet.SeriesRepository {
	return &betRepository[bet.Series, bet.UserSeriesBet]{
		table:        &t.data.Series,
		instanceOf:   func(s *bet.Series) *bet.Instance { return &s.Instance },
		predictionOf: func(p *bet.UserSeriesBet) *bet.Prediction { return &p.Prediction },
		hasOutcome:   bet.Series.Complete,
	}
}

func (t *tx) SingleBets() bet.SingleBetRepository {
	return &betRepository[bet.SingleBet, bet.UserSingleBet]{
		table:        &t.data.SingleBets,
		instanceOf:   func(b *bet.SingleBet) *bet.Instance { return &b.Instance },
		predictionOf: func(p *bet.UserSingleBet) *bet.Prediction { return &p.Prediction },
		hasOutcome:   bet.SingleBet.HasOutcome,
	}
}

func (t *tx) Questions() bet.QuestionRepository {
	return &betRepository[bet.Question, bet.UserQuestionBet]{
		table:        &t.data.Questions,
		instanceOf:   func(q *bet.Question) *bet.Instance { return &q.Instance },
		predictionOf: func(p *bet.UserQuestionBet) *bet.Prediction { return &p.Prediction },
		hasOutcome:   func(q bet.Question) bool { return q.Answer != nil },
	}
}

func (t *tx) Evaluators() evaluator.Repository {
	return &evaluatorRepository{data: t.data}
}

func (t *tx) Rankings() ranking.Repository {
	return &rankingRepository{data: t.data}
}

func (t *tx) Participants() participant.Repository {
	return &participantRepository{data: t.data}
}
