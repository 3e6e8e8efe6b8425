package bet

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the kind of event members predict on.
type Category string

const (
	CategoryMatch     Category = "match"
	CategorySeries    Category = "series"
	CategorySingleBet Category = "single_bet"
	CategoryQuestion  Category = "question"
)

var AllCategories = []Category{
	CategoryMatch,
	CategorySeries,
	CategorySingleBet,
	CategoryQuestion,
}

func ParseCategory(v string) (Category, error) {
	for _, c := range AllCategories {
		if string(c) == v {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown bet category %q", v)
}

// Instance carries what every bet instance has regardless of category.
type Instance struct {
	ID          int64
	LeagueID    int64
	ScheduledAt time.Time
	IsEvaluated bool
	EvaluatedAt *time.Time
}

// Match is a head-to-head fixture. WinnerTeamID is recorded explicitly when the
// winner is not implied by the score (extra time, penalties).
type Match struct {
	Instance
	HomeTeamID   int64
	AwayTeamID   int64
	HomeScore    *int
	AwayScore    *int
	WinnerTeamID *int64
	ScorerIDs    []int64
}

// Winner returns the winning team and whether the result is recorded. A
// recorded draw returns (nil, true).
func (m Match) Winner() (*int64, bool) {
	if m.HomeScore == nil || m.AwayScore == nil {
		return nil, false
	}
	if m.WinnerTeamID != nil {
		return m.WinnerTeamID, true
	}
	return winnerByScore(m.HomeTeamID, m.AwayTeamID, *m.HomeScore, *m.AwayScore), true
}

// Series is a best-of-N elimination tie. BestOf of zero means an open length.
type Series struct {
	Instance
	HomeTeamID int64
	AwayTeamID int64
	BestOf     int
	HomeScore  *int
	AwayScore  *int
}

func (s Series) WinsRequired() int {
	if s.BestOf <= 0 {
		return 0
	}
	return s.BestOf/2 + 1
}

// Complete reports whether both scores are in and, for a fixed length, one
// side has reached the required number of wins.
func (s Series) Complete() bool {
	if s.HomeScore == nil || s.AwayScore == nil {
		return false
	}
	required := s.WinsRequired()
	return required == 0 || *s.HomeScore >= required || *s.AwayScore >= required
}

// Winner returns the winning team once the series is decided.
func (s Series) Winner() (*int64, bool) {
	if s.HomeScore == nil || s.AwayScore == nil {
		return nil, false
	}
	if required := s.WinsRequired(); required > 0 && *s.HomeScore < required && *s.AwayScore < required {
		return nil, false
	}
	winner := winnerByScore(s.HomeTeamID, s.AwayTeamID, *s.HomeScore, *s.AwayScore)
	if winner == nil {
		return nil, false
	}
	return winner, true
}

// SingleBet is a proposition ("who wins the golden boot", "how many goals in the
// tournament"). Any subset of the outcome fields may be recorded.
type SingleBet struct {
	Instance
	Title             string
	TeamID            *int64
	PlayerID          *int64
	Value             *decimal.Decimal
	GroupStageTeamIDs []int64
}

func (b SingleBet) HasOutcome() bool {
	return b.TeamID != nil || b.PlayerID != nil || b.Value != nil || len(b.GroupStageTeamIDs) > 0
}

// Question is a yes/no prompt.
type Question struct {
	Instance
	Text   string
	Answer *bool
}

// Prediction carries what every user prediction row has.
type Prediction struct {
	ID           int64
	BetID        int64
	LeagueUserID int64
	UserID       int64
	TotalPoints  int
	ScoredAt     *time.Time
}

type UserMatchBet struct {
	Prediction
	HomeScore *int
	AwayScore *int
	ScorerID  *int64
}

// Winner derives the predicted winner the same way Match.Winner does.
func (b UserMatchBet) Winner(m Match) *int64 {
	if b.HomeScore == nil || b.AwayScore == nil {
		return nil
	}
	return winnerByScore(m.HomeTeamID, m.AwayTeamID, *b.HomeScore, *b.AwayScore)
}

type UserSeriesBet struct {
	Prediction
	HomeScore *int
	AwayScore *int
}

func (b UserSeriesBet) Winner(s Series) *int64 {
	if b.HomeScore == nil || b.AwayScore == nil {
		return nil
	}
	return winnerByScore(s.HomeTeamID, s.AwayTeamID, *b.HomeScore, *b.AwayScore)
}

type UserSingleBet struct {
	Prediction
	TeamID   *int64
	PlayerID *int64
	Value    *decimal.Decimal
}

type UserQuestionBet struct {
	Prediction
	Answer *bool
}

// PointsUpdate is one recomputed total written back to a prediction row.
type PointsUpdate struct {
	PredictionID int64
	TotalPoints  int
}

func winnerByScore(homeID, awayID int64, home, away int) *int64 {
	switch {
	case home > away:
		return &homeID
	case away > home:
		return &awayID
	default:
		return nil
	}
}

// CacheTag groups every cached public read of one category.
func CacheTag(category Category) string {
	return "bets:" + string(category)
}
