package ranking

import (
	"slices"
	"time"
)

// Version is one effective-dated ranking tier for a participant in a league.
// The interval is half-open: [EffectiveFrom, EffectiveTo). A nil EffectiveTo is
// the currently active version.
type Version struct {
	ID            int64
	ParticipantID int64
	LeagueID      int64
	Ranking       int
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
}

func (v Version) Covers(at time.Time) bool {
	if v.EffectiveFrom.After(at) {
		return false
	}
	return v.EffectiveTo == nil || v.EffectiveTo.After(at)
}

// Resolve picks the tier in effect at the given moment. Versions are checked
// newest first and the first covering one wins.
func Resolve(versions []Version, at time.Time) (int, bool) {
	ordered := slices.Clone(versions)
	slices.SortStableFunc(ordered, newestFirst)
	for _, v := range ordered {
		if v.Covers(at) {
			return v.Ranking, true
		}
	}
	return 0, false
}

// ResolveAll resolves every participant present in versions.
func ResolveAll(versions []Version, at time.Time) map[int64]int {
	ordered := slices.Clone(versions)
	slices.SortStableFunc(ordered, newestFirst)

	out := make(map[int64]int)
	for _, v := range ordered {
		if _, done := out[v.ParticipantID]; done {
			continue
		}
		if v.Covers(at) {
			out[v.ParticipantID] = v.Ranking
		}
	}
	return out
}

func newestFirst(a, b Version) int {
	return b.EffectiveFrom.Compare(a.EffectiveFrom)
}
