package usecase

import (
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluation"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
)

// evaluationTarget is a bet instance reduced to what scoring needs.
type evaluationTarget struct {
	instance bet.Instance
	outcome  evaluator.Outcome
	// recorded is false until an administrator has entered any result.
	recorded bool
	// partial outcomes score evaluators whose field is absent as zero instead
	// of rejecting the whole pass.
	partial bool
}

type evaluationInput struct {
	prediction bet.Prediction
	input      evaluator.Prediction
}

// categoryAdapter is everything category-specific about an evaluation pass.
type categoryAdapter[I any, P any] interface {
	category() bet.Category
	repository(tx evaluation.Tx) bet.Repository[I, P]
	target(instance I) evaluationTarget
	prediction(instance I, p P) evaluationInput
}

type matchAdapter struct{}

func (matchAdapter) category() bet.Category { return bet.CategoryMatch }

func (matchAdapter) repository(tx evaluation.Tx) bet.MatchRepository { return tx.Matches() }

func (matchAdapter) target(m bet.Match) evaluationTarget {
	t := evaluationTarget{instance: m.Instance}
	winner, decided := m.Winner()
	if !decided {
		return t
	}

	t.recorded = true
	t.outcome = evaluator.Outcome{
		Fields:    evaluator.FieldScore | evaluator.FieldTeam,
		HomeScore: *m.HomeScore,
		AwayScore: *m.AwayScore,
		TeamID:    winner,
	}
	// An empty scorer list only counts as recorded for a goalless match.
	if len(m.ScorerIDs) > 0 || *m.HomeScore+*m.AwayScore == 0 {
		t.outcome.Fields |= evaluator.FieldScorers
		t.outcome.ScorerIDs = m.ScorerIDs
	}
	return t
}

func (matchAdapter) prediction(m bet.Match, p bet.UserMatchBet) evaluationInput {
	return evaluationInput{
		prediction: p.Prediction,
		input: evaluator.Prediction{
			HomeScore: p.HomeScore,
			AwayScore: p.AwayScore,
			TeamID:    p.Winner(m),
			ScorerID:  p.ScorerID,
		},
	}
}

type seriesAdapter struct{}

func (seriesAdapter) category() bet.Category { return bet.CategorySeries }

func (seriesAdapter) repository(tx evaluation.Tx) bet.SeriesRepository { return tx.Series() }

func (seriesAdapter) target(s bet.Series) evaluationTarget {
	t := evaluationTarget{instance: s.Instance}
	if !s.Complete() {
		return t
	}

	t.recorded = true
	t.outcome = evaluator.Outcome{
		Fields:    evaluator.FieldScore,
		HomeScore: *s.HomeScore,
		AwayScore: *s.AwayScore,
	}
	if winner, decided := s.Winner(); decided {
		t.outcome.Fields |= evaluator.FieldTeam
		t.outcome.TeamID = winner
	}
	return t
}

func (seriesAdapter) prediction(s bet.Series, p bet.UserSeriesBet) evaluationInput {
	return evaluationInput{
		prediction: p.Prediction,
		input: evaluator.Prediction{
			HomeScore: p.HomeScore,
			AwayScore: p.AwayScore,
			TeamID:    p.Winner(s),
		},
	}
}

type singleBetAdapter struct{}

func (singleBetAdapter) category() bet.Category { return bet.CategorySingleBet }

func (singleBetAdapter) repository(tx evaluation.Tx) bet.SingleBetRepository { return tx.SingleBets() }

func (singleBetAdapter) target(b bet.SingleBet) evaluationTarget {
	t := evaluationTarget{instance: b.Instance, recorded: b.HasOutcome(), partial: true}
	if b.TeamID != nil {
		t.outcome.Fields |= evaluator.FieldTeam
		t.outcome.TeamID = b.TeamID
	}
	if b.PlayerID != nil {
		t.outcome.Fields |= evaluator.FieldPlayer
		t.outcome.PlayerID = *b.PlayerID
	}
	if b.Value != nil {
		t.outcome.Fields |= evaluator.FieldValue
		t.outcome.Value = *b.Value
	}
	if len(b.GroupStageTeamIDs) > 0 {
		t.outcome.Fields |= evaluator.FieldAdvancing
		t.outcome.AdvancingTeamIDs = b.GroupStageTeamIDs
	}
	return t
}

func (singleBetAdapter) prediction(_ bet.SingleBet, p bet.UserSingleBet) evaluationInput {
	return evaluationInput{
		prediction: p.Prediction,
		input: evaluator.Prediction{
			TeamID:   p.TeamID,
			PlayerID: p.PlayerID,
			Value:    p.Value,
		},
	}
}

type questionAdapter struct{}

func (questionAdapter) category() bet.Category { return bet.CategoryQuestion }

func (questionAdapter) repository(tx evaluation.Tx) bet.QuestionRepository { return tx.Questions() }

func (questionAdapter) target(q bet.Question) evaluationTarget {
	t := evaluationTarget{instance: q.Instance}
	if q.Answer == nil {
		return t
	}
	t.recorded = true
	t.outcome = evaluator.Outcome{Fields: evaluator.FieldAnswer, Answer: *q.Answer}
	return t
}

func (questionAdapter) prediction(_ bet.Question, p bet.UserQuestionBet) evaluationInput {
	return evaluationInput{
		prediction: p.Prediction,
		input:      evaluator.Prediction{Answer: p.Answer},
	}
}
