package memory

import (
	"maps"
	"slices"

	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/participant"
	"github.com/riskibarqy/prediction-league/internal/domain/ranking"
)

// BetTable holds the instances of one category and their predictions, both
// keyed by id.
type BetTable[I any, P any] struct {
	Instances   map[int64]I
	Predictions map[int64]P
}

func (t BetTable[I, P]) clone() BetTable[I, P] {
	out := BetTable[I, P]{
		Instances:   maps.Clone(t.Instances),
		Predictions: maps.Clone(t.Predictions),
	}
	if out.Instances == nil {
		out.Instances = make(map[int64]I)
	}
	if out.Predictions == nil {
		out.Predictions = make(map[int64]P)
	}
	return out
}

type Dataset struct {
	Leagues      map[int64]league.League
	LeagueUsers  map[int64]league.LeagueUser
	Participants map[int64]participant.Participant
	Evaluators   []evaluator.Config
	Rankings     []ranking.Version
	Matches      BetTable[bet.Match, bet.UserMatchBet]
	Series       BetTable[bet.Series, bet.UserSeriesBet]
	SingleBets   BetTable[bet.SingleBet, bet.UserSingleBet]
	Questions    BetTable[bet.Question, bet.UserQuestionBet]
	AuditLogs    []audit.Entry
}

func (d Dataset) clone() Dataset {
	out := Dataset{
		Leagues:      maps.Clone(d.Leagues),
		LeagueUsers:  maps.Clone(d.LeagueUsers),
		Participants: maps.Clone(d.Participants),
		Evaluators:   slices.Clone(d.Evaluators),
		Rankings:     slices.Clone(d.Rankings),
		Matches:      d.Matches.clone(),
		Series:       d.Series.clone(),
		SingleBets:   d.SingleBets.clone(),
		Questions:    d.Questions.clone(),
		AuditLogs:    slices.Clone(d.AuditLogs),
	}
	if out.Leagues == nil {
		out.Leagues = make(map[int64]league.League)
	}
	if out.LeagueUsers == nil {
		out.LeagueUsers = make(map[int64]league.LeagueUser)
	}
	if out.Participants == nil {
		out.Participants = make(map[int64]participant.Participant)
	}
	return out
}
