package httpapi

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/leaderboard"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type leaderboardEntryDTO struct {
	Rank         int    `json:"rank"`
	LeagueUserID int64  `json:"leagueUserId"`
	UserID       int64  `json:"userId"`
	DisplayName  string `json:"displayName,omitempty"`
	Points       int    `json:"points"`
}

type leaderboardDTO struct {
	LeagueID int64                 `json:"leagueId"`
	Entries  []leaderboardEntryDTO `json:"entries"`
}

type predictionPointsDTO struct {
	PredictionID int64  `json:"predictionId"`
	LeagueUserID int64  `json:"leagueUserId"`
	UserID       int64  `json:"userId"`
	TotalPoints  int    `json:"totalPoints"`
	ScoredAt     string `json:"scoredAt,omitempty"`
}

type betResultsDTO struct {
	Category      string                `json:"category"`
	BetInstanceID int64                 `json:"betInstanceId"`
	LeagueID      int64                 `json:"leagueId"`
	IsEvaluated   bool                  `json:"isEvaluated"`
	EvaluatedAt   string                `json:"evaluatedAt,omitempty"`
	Predictions   []predictionPointsDTO `json:"predictions"`
}

type rankingDTO struct {
	LeagueID      int64  `json:"leagueId"`
	ParticipantID int64  `json:"participantId"`
	At            string `json:"at"`
	Ranking       *int   `json:"ranking"`
}

func leaderboardToDTO(leagueID int64, entries []leaderboard.Entry) leaderboardDTO {
	out := leaderboardDTO{LeagueID: leagueID, Entries: make([]leaderboardEntryDTO, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, leaderboardEntryDTO{
			Rank:         e.Rank,
			LeagueUserID: e.LeagueUserID,
			UserID:       e.UserID,
			DisplayName:  e.DisplayName,
			Points:       e.Points,
		})
	}
	return out
}

func betResultsToDTO(v usecase.BetResults) betResultsDTO {
	out := betResultsDTO{
		Category:      string(v.Category),
		BetInstanceID: v.BetInstanceID,
		LeagueID:      v.LeagueID,
		IsEvaluated:   v.IsEvaluated,
		EvaluatedAt:   formatOptionalTime(v.EvaluatedAt),
		Predictions:   make([]predictionPointsDTO, 0, len(v.Predictions)),
	}
	for _, p := range v.Predictions {
		out.Predictions = append(out.Predictions, predictionPointsDTO{
			PredictionID: p.PredictionID,
			LeagueUserID: p.LeagueUserID,
			UserID:       p.UserID,
			TotalPoints:  p.TotalPoints,
			ScoredAt:     formatOptionalTime(p.ScoredAt),
		})
	}
	return out
}

// rankingToDTO reports a null ranking when no version covers the instant.
func rankingToDTO(v usecase.RankingLookup) rankingDTO {
	out := rankingDTO{
		LeagueID:      v.LeagueID,
		ParticipantID: v.ParticipantID,
		At:            v.At.UTC().Format(time.RFC3339),
	}
	if v.Found {
		ranking := v.Ranking
		out.Ranking = &ranking
	}
	return out
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
