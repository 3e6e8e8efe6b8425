package ranking

import (
	"testing"
	"time"
)

func TestResolve_HalfOpenBoundary(t *testing.T) {
	t.Parallel()

	scheduled := time.Date(2026, 6, 14, 18, 0, 0, 0, time.UTC)
	closedAtKickoff := scheduled
	versions := []Version{
		{ID: 1, ParticipantID: 7, Ranking: 1, EffectiveFrom: scheduled.Add(-30 * 24 * time.Hour), EffectiveTo: &closedAtKickoff},
	}

	if _, ok := Resolve(versions, scheduled); ok {
		t.Fatalf("expected interval ending at scheduled time not to cover it")
	}

	tier, ok := Resolve(versions, scheduled.Add(-time.Microsecond))
	if !ok || tier != 1 {
		t.Fatalf("expected tier 1 one microsecond earlier, got %d ok=%v", tier, ok)
	}
}

func TestResolve_NewestCoveringVersionWins(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	firstEnd := base.Add(48 * time.Hour)
	versions := []Version{
		{ID: 1, ParticipantID: 7, Ranking: 3, EffectiveFrom: base, EffectiveTo: &firstEnd},
		{ID: 2, ParticipantID: 7, Ranking: 1, EffectiveFrom: firstEnd},
	}

	tests := []struct {
		name  string
		at    time.Time
		tier  int
		found bool
	}{
		{name: "before first", at: base.Add(-time.Second), found: false},
		{name: "at first start", at: base, tier: 3, found: true},
		{name: "at handover", at: firstEnd, tier: 1, found: true},
		{name: "open interval", at: base.Add(365 * 24 * time.Hour), tier: 1, found: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tier, ok := Resolve(versions, tc.at)
			if ok != tc.found || tier != tc.tier {
				t.Fatalf("expected tier=%d found=%v, got tier=%d found=%v", tc.tier, tc.found, tier, ok)
			}
		})
	}
}

func TestResolveAll(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ended := base.Add(time.Hour)
	versions := []Version{
		{ParticipantID: 1, Ranking: 2, EffectiveFrom: base},
		{ParticipantID: 2, Ranking: 4, EffectiveFrom: base, EffectiveTo: &ended},
		{ParticipantID: 3, Ranking: 1, EffectiveFrom: base.Add(24 * time.Hour)},
	}

	got := ResolveAll(versions, base.Add(2*time.Hour))
	if len(got) != 1 || got[1] != 2 {
		t.Fatalf("unexpected rankings: %v", got)
	}
}
