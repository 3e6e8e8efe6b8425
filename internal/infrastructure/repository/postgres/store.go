package postgres

import (
	"context"
	"database/sql"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
	"github.com/riskibarqy/prediction-league/internal/domain/participant"
	"github.com/riskibarqy/prediction-league/internal/domain/ranking"
)

// Store runs evaluation units of work against Postgres. Write transactions
// are SERIALIZABLE and lock the bet instance row.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx evaluation.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return mapTxError(crerr.Wrap(err, "begin evaluation tx"))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, newTx(tx, true)); err != nil {
		return mapTxError(err)
	}
	if err := tx.Commit(); err != nil {
		return mapTxError(crerr.Wrap(err, "commit evaluation tx"))
	}
	return nil
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx evaluation.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return crerr.Wrap(err, "begin read tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	return fn(ctx, newTx(tx, false))
}

func mapTxError(err error) error {
	if isSerializationFailure(err) {
		return fmt.Errorf("%w: %w", evaluation.ErrSerializationFailure, err)
	}
	return err
}

type tx struct {
	db   sqlx.ExtContext
	lock bool
}

func newTx(db sqlx.ExtContext, lock bool) *tx {
	return &tx{db: db, lock: lock}
}

func (t *tx) Matches() bet.MatchRepository {
	return newBetRepository(t.db, t.lock, matchSchema)
}

func (t *tx) Series() bet.SeriesRepository {
	return newBetRepository(t.db, t.lock, seriesSchema)
}

func (t *tx) SingleBets() bet.SingleBetRepository {
	return newBetRepository(t.db, t.lock, singleBetSchema)
}

func (t *tx) Questions() bet.QuestionRepository {
	return newBetRepository(t.db, t.lock, questionSchema)
}

func (t *tx) Evaluators() evaluator.Repository {
	return NewEvaluatorRepository(t.db)
}

func (t *tx) Rankings() ranking.Repository {
	return NewRankingRepository(t.db)
}

func (t *tx) Participants() participant.Repository {
	return NewParticipantRepository(t.db)
}
