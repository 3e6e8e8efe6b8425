package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/domain/bet"
	"github.com/shopspring/decimal"
)

type instanceTableModel struct {
	ID          int64        `db:"id"`
	LeagueID    int64        `db:"league_id"`
	ScheduledAt time.Time    `db:"scheduled_at"`
	IsEvaluated bool         `db:"is_evaluated"`
	EvaluatedAt sql.NullTime `db:"evaluated_at"`
}

func (m instanceTableModel) toDomain() bet.Instance {
	return bet.Instance{
		ID:          m.ID,
		LeagueID:    m.LeagueID,
		ScheduledAt: m.ScheduledAt.UTC(),
		IsEvaluated: m.IsEvaluated,
		EvaluatedAt: nullTimeToTimePtr(m.EvaluatedAt),
	}
}

// predictionTableModel is read through a join with league_users so every row
// carries the global user id.
type predictionTableModel struct {
	ID           int64        `db:"id"`
	BetID        int64        `db:"bet_id"`
	LeagueUserID int64        `db:"league_user_id"`
	UserID       int64        `db:"user_id"`
	TotalPoints  int          `db:"total_points"`
	ScoredAt     sql.NullTime `db:"scored_at"`
}

func (m predictionTableModel) toDomain() bet.Prediction {
	return bet.Prediction{
		ID:           m.ID,
		BetID:        m.BetID,
		LeagueUserID: m.LeagueUserID,
		UserID:       m.UserID,
		TotalPoints:  m.TotalPoints,
		ScoredAt:     nullTimeToTimePtr(m.ScoredAt),
	}
}

type matchTableModel struct {
	instanceTableModel
	HomeTeamID   int64         `db:"home_team_id"`
	AwayTeamID   int64         `db:"away_team_id"`
	HomeScore    *int          `db:"home_score"`
	AwayScore    *int          `db:"away_score"`
	WinnerTeamID *int64        `db:"winner_team_id"`
	ScorerIDs    pq.Int64Array `db:"scorer_ids"`
}

type userMatchBetTableModel struct {
	predictionTableModel
	HomeScore *int   `db:"home_score"`
	AwayScore *int   `db:"away_score"`
	ScorerID  *int64 `db:"scorer_id"`
}

type seriesTableModel struct {
	instanceTableModel
	HomeTeamID int64 `db:"home_team_id"`
	AwayTeamID int64 `db:"away_team_id"`
	BestOf     int   `db:"best_of"`
	HomeScore  *int  `db:"home_score"`
	AwayScore  *int  `db:"away_score"`
}

type userSeriesBetTableModel struct {
	predictionTableModel
	HomeScore *int `db:"home_score"`
	AwayScore *int `db:"away_score"`
}

type singleBetTableModel struct {
	instanceTableModel
	Title             string              `db:"title"`
	TeamID            *int64              `db:"team_id"`
	PlayerID          *int64              `db:"player_id"`
	Value             decimal.NullDecimal `db:"value"`
	GroupStageTeamIDs pq.Int64Array       `db:"group_stage_team_ids"`
}

type userSingleBetTableModel struct {
	predictionTableModel
	TeamID   *int64              `db:"team_id"`
	PlayerID *int64              `db:"player_id"`
	Value    decimal.NullDecimal `db:"value"`
}

type questionTableModel struct {
	instanceTableModel
	Text   string `db:"text"`
	Answer *bool  `db:"answer"`
}

type userQuestionBetTableModel struct {
	predictionTableModel
	Answer *bool `db:"answer"`
}
