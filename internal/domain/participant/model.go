package participant

import "context"

type Kind string

const (
	KindTeam   Kind = "team"
	KindPlayer Kind = "player"
)

// Participant is a team or player members can pick in predictions.
type Participant struct {
	ID       int64
	LeagueID int64
	Name     string
	Kind     Kind
	TeamID   *int64
	Position string
}

// Repository describes participant reads used during scoring.
type Repository interface {
	// PositionsByIDs returns the position of every requested participant that has one.
	PositionsByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}
