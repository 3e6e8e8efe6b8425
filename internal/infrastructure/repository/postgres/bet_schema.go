package postgres

import (
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

// betSchema describes where one category lives and how its rows map to the
// domain. I/P are domain types, IR/PR the scanned row models.
type betSchema[I any, P any, IR any, PR any] struct {
	category          bet.Category
	instanceTable     string
	predictionTable   string
	foreignKey        string
	instanceColumns   []string
	predictionColumns []string
	outcomeRecorded   qb.Condition
	toInstance        func(IR) I
	toPrediction      func(PR) P
}

var instanceColumns = []string{"id", "league_id", "scheduled_at", "is_evaluated", "evaluated_at"}

func predictionColumns(foreignKey string, extra ...string) []string {
	cols := []string{
		"b.id",
		"b." + foreignKey + " AS bet_id",
		"b.league_user_id",
		"lu.user_id",
		"b.total_points",
		"b.scored_at",
	}
	for _, c := range extra {
		cols = append(cols, "b."+c)
	}
	return cols
}

var matchSchema = betSchema[bet.Match, bet.UserMatchBet, matchTableModel, userMatchBetTableModel]{
	category:          bet.CategoryMatch,
	instanceTable:     "matches",
	predictionTable:   "user_match_bets",
	foreignKey:        "match_id",
	instanceColumns:   append(append([]string{}, instanceColumns...), "home_team_id", "away_team_id", "home_score", "away_score", "winner_team_id", "scorer_ids"),
	predictionColumns: predictionColumns("match_id", "home_score", "away_score", "scorer_id"),
	outcomeRecorded:   qb.Expr("home_score IS NOT NULL AND away_score IS NOT NULL"),
	toInstance: func(row matchTableModel) bet.Match {
		return bet.Match{
			Instance:     row.instanceTableModel.toDomain(),
			HomeTeamID:   row.HomeTeamID,
			AwayTeamID:   row.AwayTeamID,
			HomeScore:    row.HomeScore,
			AwayScore:    row.AwayScore,
			WinnerTeamID: row.WinnerTeamID,
			ScorerIDs:    int64Slice(row.ScorerIDs),
		}
	},
	toPrediction: func(row userMatchBetTableModel) bet.UserMatchBet {
		return bet.UserMatchBet{
			Prediction: row.predictionTableModel.toDomain(),
			HomeScore:  row.HomeScore,
			AwayScore:  row.AwayScore,
			ScorerID:   row.ScorerID,
		}
	},
}

var seriesSchema = betSchema[bet.Series, bet.UserSeriesBet, seriesTableModel, userSeriesBetTableModel]{
	category:          bet.CategorySeries,
	instanceTable:     "series",
	predictionTable:   "user_series_bets",
	foreignKey:        "series_id",
	instanceColumns:   append(append([]string{}, instanceColumns...), "home_team_id", "away_team_id", "best_of", "home_score", "away_score"),
	predictionColumns: predictionColumns("series_id", "home_score", "away_score"),
	outcomeRecorded: qb.Expr(
		"home_score IS NOT NULL AND away_score IS NOT NULL AND (best_of <= 0 OR GREATEST(home_score, away_score) >= best_of / 2 + 1)",
	),
	toInstance: func(row seriesTableModel) bet.Series {
		return bet.Series{
			Instance:   row.instanceTableModel.toDomain(),
			HomeTeamID: row.HomeTeamID,
			AwayTeamID: row.AwayTeamID,
			BestOf:     row.BestOf,
			HomeScore:  row.HomeScore,
			AwayScore:  row.AwayScore,
		}
	},
	toPrediction: func(row userSeriesBetTableModel) bet.UserSeriesBet {
		return bet.UserSeriesBet{
			Prediction: row.predictionTableModel.toDomain(),
			HomeScore:  row.HomeScore,
			AwayScore:  row.AwayScore,
		}
	},
}

var singleBetSchema = betSchema[bet.SingleBet, bet.UserSingleBet, singleBetTableModel, userSingleBetTableModel]{
	category:          bet.CategorySingleBet,
	instanceTable:     "single_bets",
	predictionTable:   "user_single_bets",
	foreignKey:        "single_bet_id",
	instanceColumns:   append(append([]string{}, instanceColumns...), "title", "team_id", "player_id", "value", "group_stage_team_ids"),
	predictionColumns: predictionColumns("single_bet_id", "team_id", "player_id", "value"),
	outcomeRecorded: qb.Expr(
		"(team_id IS NOT NULL OR player_id IS NOT NULL OR value IS NOT NULL OR COALESCE(cardinality(group_stage_team_ids), 0) > 0)",
	),
	toInstance: func(row singleBetTableModel) bet.SingleBet {
		return bet.SingleBet{
			Instance:          row.instanceTableModel.toDomain(),
			Title:             row.Title,
			TeamID:            row.TeamID,
			PlayerID:          row.PlayerID,
			Value:             nullDecimalToPtr(row.Value),
			GroupStageTeamIDs: int64Slice(row.GroupStageTeamIDs),
		}
	},
	toPrediction: func(row userSingleBetTableModel) bet.UserSingleBet {
		return bet.UserSingleBet{
			Prediction: row.predictionTableModel.toDomain(),
			TeamID:     row.TeamID,
			PlayerID:   row.PlayerID,
			Value:      nullDecimalToPtr(row.Value),
		}
	},
}

var questionSchema = betSchema[bet.Question, bet.UserQuestionBet, questionTableModel, userQuestionBetTableModel]{
	category:          bet.CategoryQuestion,
	instanceTable:     "questions",
	predictionTable:   "user_question_bets",
	foreignKey:        "question_id",
	instanceColumns:   append(append([]string{}, instanceColumns...), "text", "answer"),
	predictionColumns: predictionColumns("question_id", "answer"),
	outcomeRecorded:   qb.IsNotNull("answer"),
	toInstance: func(row questionTableModel) bet.Question {
		return bet.Question{
			Instance: row.instanceTableModel.toDomain(),
			Text:     row.Text,
			Answer:   row.Answer,
		}
	},
	toPrediction: func(row userQuestionBetTableModel) bet.UserQuestionBet {
		return bet.UserQuestionBet{
			Prediction: row.predictionTableModel.toDomain(),
			Answer:     row.Answer,
		}
	},
}
