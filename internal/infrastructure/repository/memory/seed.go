package memory

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/riskibarqy/prediction-league/internal/domain/evaluator"
	"github.com/riskibarqy/prediction-league/internal/domain/league"
	"github.com/riskibarqy/prediction-league/internal/domain/participant"
	"github.com/riskibarqy/prediction-league/internal/domain/ranking"
	"github.com/shopspring/decimal"
)

const (
	LeagueIDDemo int64 = 1

	TeamIDGaruda  int64 = 1
	TeamIDHarimau int64 = 2

	PlayerIDStriker    int64 = 10
	PlayerIDWinger     int64 = 11
	PlayerIDGoalkeeper int64 = 12

	MatchIDOpener     int64 = 1
	SeriesIDFinal     int64 = 1
	SingleBetIDGoals  int64 = 1
	QuestionIDPenalty int64 = 1
)

var seedKickoff = time.Date(2026, 6, 14, 18, 0, 0, 0, time.UTC)

// SeedDataset is a small demo league whose opener match has a recorded result.
// Evaluating it gives 15, 15 and 2 points to the three members.
func SeedDataset() Dataset {
	seasonStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	created := seasonStart

	d := Dataset{
		Leagues: map[int64]league.League{
			LeagueIDDemo: {ID: LeagueIDDemo, Name: "Demo Prediction League", Season: "2026"},
		},
		LeagueUsers: map[int64]league.LeagueUser{
			1: {ID: 1, LeagueID: LeagueIDDemo, UserID: 101, DisplayName: "Ayu"},
			2: {ID: 2, LeagueID: LeagueIDDemo, UserID: 102, DisplayName: "Bima"},
			3: {ID: 3, LeagueID: LeagueIDDemo, UserID: 103, DisplayName: "Citra"},
		},
		Participants: map[int64]participant.Participant{
			TeamIDGaruda:       {ID: TeamIDGaruda, LeagueID: LeagueIDDemo, Name: "Garuda FC", Kind: participant.KindTeam},
			TeamIDHarimau:      {ID: TeamIDHarimau, LeagueID: LeagueIDDemo, Name: "Harimau United", Kind: participant.KindTeam},
			PlayerIDStriker:    {ID: PlayerIDStriker, LeagueID: LeagueIDDemo, Name: "Rizky Pratama", Kind: participant.KindPlayer, TeamID: int64Ptr(TeamIDGaruda), Position: "forward"},
			PlayerIDWinger:     {ID: PlayerIDWinger, LeagueID: LeagueIDDemo, Name: "Dimas Saputra", Kind: participant.KindPlayer, TeamID: int64Ptr(TeamIDHarimau), Position: "forward"},
			PlayerIDGoalkeeper: {ID: PlayerIDGoalkeeper, LeagueID: LeagueIDDemo, Name: "Arif Hidayat", Kind: participant.KindPlayer, TeamID: int64Ptr(TeamIDGaruda), Position: "goalkeeper"},
		},
		Evaluators: []evaluator.Config{
			{ID: 1, LeagueID: LeagueIDDemo, Kind: evaluator.KindExactTeam, Name: "Match winner", Points: 5, Settings: evaluator.PositionFilter{}, CreatedAt: created, UpdatedAt: created},
			{
				ID: 2, LeagueID: LeagueIDDemo, Kind: evaluator.KindScorer, Name: "Goal scorer", Points: 0,
				Settings:  evaluator.RankedScorer{RankedPoints: map[string]int{"1": 10, "2": 6}, UnrankedPoints: 2},
				CreatedAt: created, UpdatedAt: created,
			},
			{ID: 3, LeagueID: LeagueIDDemo, Kind: evaluator.KindExactScore, Name: "Exact score", Points: 3, Settings: evaluator.NoSettings{}, CreatedAt: created, UpdatedAt: created},
			{ID: 4, LeagueID: LeagueIDDemo, Kind: evaluator.KindClosestValue, Name: "Closest goal total", Points: 6, Settings: evaluator.NoSettings{}, CreatedAt: created, UpdatedAt: created},
			{ID: 5, LeagueID: LeagueIDDemo, Kind: evaluator.KindExactAnswer, Name: "Correct answer", Points: 2, Settings: evaluator.NoSettings{}, CreatedAt: created, UpdatedAt: created},
		},
		Rankings: []ranking.Version{
			{ID: 1, ParticipantID: PlayerIDStriker, LeagueID: LeagueIDDemo, Ranking: 1, EffectiveFrom: seasonStart},
		},
	}

	d.Matches = BetTable[bet.Match, bet.UserMatchBet]{
		Instances: map[int64]bet.Match{
			MatchIDOpener: {
				Instance:   bet.Instance{ID: MatchIDOpener, LeagueID: LeagueIDDemo, ScheduledAt: seedKickoff},
				HomeTeamID: TeamIDGaruda,
				AwayTeamID: TeamIDHarimau,
				HomeScore:  intPtr(2),
				AwayScore:  intPtr(1),
				ScorerIDs:  []int64{PlayerIDStriker, PlayerIDWinger},
			},
		},
		Predictions: map[int64]bet.UserMatchBet{
			1: {Prediction: bet.Prediction{ID: 1, BetID: MatchIDOpener, LeagueUserID: 1, UserID: 101}, HomeScore: intPtr(2), AwayScore: intPtr(0), ScorerID: int64Ptr(PlayerIDStriker)},
			2: {Prediction: bet.Prediction{ID: 2, BetID: MatchIDOpener, LeagueUserID: 2, UserID: 102}, HomeScore: intPtr(1), AwayScore: intPtr(0), ScorerID: int64Ptr(PlayerIDStriker)},
			3: {Prediction: bet.Prediction{ID: 3, BetID: MatchIDOpener, LeagueUserID: 3, UserID: 103}, HomeScore: intPtr(0), AwayScore: intPtr(1), ScorerID: int64Ptr(PlayerIDWinger)},
		},
	}

	d.Series = BetTable[bet.Series, bet.UserSeriesBet]{
		Instances: map[int64]bet.Series{
			SeriesIDFinal: {
				Instance:   bet.Instance{ID: SeriesIDFinal, LeagueID: LeagueIDDemo, ScheduledAt: seedKickoff.Add(14 * 24 * time.Hour)},
				HomeTeamID: TeamIDGaruda,
				AwayTeamID: TeamIDHarimau,
				BestOf:     7,
			},
		},
		Predictions: map[int64]bet.UserSeriesBet{
			1: {Prediction: bet.Prediction{ID: 1, BetID: SeriesIDFinal, LeagueUserID: 1, UserID: 101}, HomeScore: intPtr(4), AwayScore: intPtr(2)},
		},
	}

	d.SingleBets = BetTable[bet.SingleBet, bet.UserSingleBet]{
		Instances: map[int64]bet.SingleBet{
			SingleBetIDGoals: {
				Instance: bet.Instance{ID: SingleBetIDGoals, LeagueID: LeagueIDDemo, ScheduledAt: seedKickoff},
				Title:    "Total goals on the opening weekend",
				Value:    decimalPtr(11),
			},
		},
		Predictions: map[int64]bet.UserSingleBet{
			1: {Prediction: bet.Prediction{ID: 1, BetID: SingleBetIDGoals, LeagueUserID: 1, UserID: 101}, Value: decimalPtr(10)},
			2: {Prediction: bet.Prediction{ID: 2, BetID: SingleBetIDGoals, LeagueUserID: 2, UserID: 102}, Value: decimalPtr(12)},
			3: {Prediction: bet.Prediction{ID: 3, BetID: SingleBetIDGoals, LeagueUserID: 3, UserID: 103}, Value: decimalPtr(12)},
		},
	}

	d.Questions = BetTable[bet.Question, bet.UserQuestionBet]{
		Instances: map[int64]bet.Question{
			QuestionIDPenalty: {
				Instance: bet.Instance{ID: QuestionIDPenalty, LeagueID: LeagueIDDemo, ScheduledAt: seedKickoff},
				Text:     "Will the opener have a penalty?",
			},
		},
		Predictions: map[int64]bet.UserQuestionBet{
			1: {Prediction: bet.Prediction{ID: 1, BetID: QuestionIDPenalty, LeagueUserID: 1, UserID: 101}, Answer: boolPtr(true)},
			2: {Prediction: bet.Prediction{ID: 2, BetID: QuestionIDPenalty, LeagueUserID: 2, UserID: 102}, Answer: boolPtr(false)},
		},
	}

	return d
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
