package evaluator

import (
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Prediction is the category-neutral view of one user's submission. Only the
// fields the category collects are set.
type Prediction struct {
	HomeScore *int
	AwayScore *int
	TeamID    *int64
	PlayerID  *int64
	ScorerID  *int64
	Value     *decimal.Decimal
	Answer    *bool
}

// Outcome is the category-neutral view of a recorded result. Fields marks which
// components are recorded; a recorded FieldTeam with a nil TeamID is a draw.
type Outcome struct {
	Fields           Field
	HomeScore        int
	AwayScore        int
	TeamID           *int64
	PlayerID         int64
	ScorerIDs        []int64
	Value            decimal.Decimal
	AdvancingTeamIDs []int64
	Answer           bool
}

func (o Outcome) Has(f Field) bool {
	return o.Fields&f == f
}

// Context is the batch-level data scoring may consult. It is fetched once per
// evaluation so Score never performs I/O.
type Context struct {
	ScheduledAt time.Time
	// Rankings maps participant id to the tier in effect at ScheduledAt.
	Rankings map[int64]int
	// Positions maps participant id to its position.
	Positions map[int64]string
	// ClosestDistance is the minimum distance of any prediction in the batch
	// to the outcome value. Nil when nobody predicted a value.
	ClosestDistance *decimal.Decimal
}

type Result struct {
	Awarded bool
	Points  int
}

var notAwarded = Result{}

// Score evaluates one config against one prediction.
func Score(cfg Config, p Prediction, o Outcome, c Context) Result {
	entry, ok := catalog[cfg.Kind]
	if !ok || !o.Has(entry.Requires) {
		return notAwarded
	}

	switch cfg.Kind {
	case KindExactScore:
		if p.HomeScore == nil || p.AwayScore == nil {
			return notAwarded
		}
		return award(cfg.Points, *p.HomeScore == o.HomeScore && *p.AwayScore == o.AwayScore)
	case KindScoreDifference:
		if p.HomeScore == nil || p.AwayScore == nil {
			return notAwarded
		}
		return award(cfg.Points, *p.HomeScore-*p.AwayScore == o.HomeScore-o.AwayScore)
	case KindExactTeam:
		if p.TeamID == nil || o.TeamID == nil {
			return notAwarded
		}
		if !positionAllowed(cfg.Settings, *p.TeamID, c) {
			return notAwarded
		}
		return award(cfg.Points, *p.TeamID == *o.TeamID)
	case KindExactPlayer:
		if p.PlayerID == nil {
			return notAwarded
		}
		if !positionAllowed(cfg.Settings, *p.PlayerID, c) {
			return notAwarded
		}
		return award(cfg.Points, *p.PlayerID == o.PlayerID)
	case KindExactValue:
		if p.Value == nil {
			return notAwarded
		}
		return award(cfg.Points, p.Value.Equal(o.Value))
	case KindClosestValue:
		if p.Value == nil || c.ClosestDistance == nil {
			return notAwarded
		}
		return award(cfg.Points, p.Value.Sub(o.Value).Abs().Equal(*c.ClosestDistance))
	case KindGroupStageTeam:
		if p.TeamID == nil {
			return notAwarded
		}
		return award(cfg.Points, slices.Contains(o.AdvancingTeamIDs, *p.TeamID))
	case KindScorer:
		return scoreRankedScorer(cfg, p, o, c)
	case KindExactAnswer:
		if p.Answer == nil {
			return notAwarded
		}
		return award(cfg.Points, *p.Answer == o.Answer)
	default:
		return notAwarded
	}
}

func scoreRankedScorer(cfg Config, p Prediction, o Outcome, c Context) Result {
	settings, ok := cfg.Settings.(RankedScorer)
	if !ok || p.ScorerID == nil {
		return notAwarded
	}
	playerID := *p.ScorerID
	position, known := c.Positions[playerID]
	if !settings.Allows(position, known) {
		return notAwarded
	}
	if !slices.Contains(o.ScorerIDs, playerID) {
		return notAwarded
	}

	tier, ranked := c.Rankings[playerID]
	if !ranked {
		return Result{Awarded: true, Points: settings.UnrankedPoints}
	}
	points, ok := settings.RankedPoints[strconv.Itoa(tier)]
	if !ok {
		return notAwarded
	}
	return Result{Awarded: true, Points: points}
}

// ClosestDistance returns the smallest |v - outcome| across values.
func ClosestDistance(values []decimal.Decimal, outcome decimal.Decimal) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, false
	}
	best := values[0].Sub(outcome).Abs()
	for _, v := range values[1:] {
		if d := v.Sub(outcome).Abs(); d.LessThan(best) {
			best = d
		}
	}
	return best, true
}

func positionAllowed(settings Settings, participantID int64, c Context) bool {
	filter, ok := settings.(PositionFilter)
	if !ok {
		return true
	}
	position, known := c.Positions[participantID]
	return filter.Allows(position, known)
}

func award(points int, hit bool) Result {
	if !hit {
		return notAwarded
	}
	return Result{Awarded: true, Points: points}
}

// NeedsRankings reports whether any config consults ranking tiers.
func NeedsRankings(configs []Config) bool {
	return slices.ContainsFunc(configs, func(c Config) bool { return c.Kind == KindScorer })
}

// NeedsPositions reports whether any config filters by participant position.
func NeedsPositions(configs []Config) bool {
	return slices.ContainsFunc(configs, func(c Config) bool {
		switch s := c.Settings.(type) {
		case PositionFilter:
			return len(s.Positions) > 0
		case RankedScorer:
			return len(s.Positions) > 0
		default:
			return false
		}
	})
}

// Requirements is the union of outcome fields the configs need.
func Requirements(configs []Config) Field {
	var need Field
	for _, cfg := range configs {
		if entry, ok := catalog[cfg.Kind]; ok {
			need |= entry.Requires
		}
	}
	return need
}

// Missing lists the required fields absent from the outcome.
func (o Outcome) Missing(need Field) []Field {
	var out []Field
	for f := FieldScore; f <= FieldAnswer; f <<= 1 {
		if need&f != 0 && o.Fields&f == 0 {
			out = append(out, f)
		}
	}
	return out
}
