package ranking

import (
	"context"
	"time"
)

// Repository is the read side of the ranking interval table.
type Repository interface {
	RankingAt(ctx context.Context, leagueID, participantID int64, at time.Time) (int, bool, error)
	RankingsAt(ctx context.Context, leagueID int64, at time.Time) (map[int64]int, error)
}
