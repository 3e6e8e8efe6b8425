package evaluator

import "context"

// Repository returns a league's non-deleted evaluator configs with decoded settings.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]Config, error)
}
