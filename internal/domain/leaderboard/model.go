package leaderboard

import (
	"context"
	"sort"
	"strconv"
)

// Total is one league member's summed points across every bet category.
type Total struct {
	LeagueUserID int64
	UserID       int64
	DisplayName  string
	Points       int
}

type Entry struct {
	Rank int
	Total
}

// Rank orders totals by points desc then league user id, assigning the same
// rank to equal points (1, 1, 3).
func Rank(totals []Total) []Entry {
	sorted := append([]Total(nil), totals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].LeagueUserID < sorted[j].LeagueUserID
	})

	out := make([]Entry, 0, len(sorted))
	for i, total := range sorted {
		rank := i + 1
		if i > 0 && sorted[i-1].Points == total.Points {
			rank = out[i-1].Rank
		}
		out = append(out, Entry{Rank: rank, Total: total})
	}
	return out
}

type Repository interface {
	ListLeagueTotals(ctx context.Context, leagueID int64) ([]Total, error)
}

// CacheTag groups every cached leaderboard read of one league.
func CacheTag(leagueID int64) string {
	return "leaderboard:league:" + strconv.FormatInt(leagueID, 10)
}
