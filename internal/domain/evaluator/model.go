package evaluator

import (
	"errors"
	"slices"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/bet"
)

var ErrInvalidConfig = errors.New("invalid evaluator configuration")

// Kind names a scoring rule in the catalog.
type Kind string

const (
	KindExactScore      Kind = "exact_score"
	KindScoreDifference Kind = "score_difference"
	KindExactTeam       Kind = "exact_team"
	KindExactPlayer     Kind = "exact_player"
	KindExactValue      Kind = "exact_value"
	KindClosestValue    Kind = "closest_value"
	KindGroupStageTeam  Kind = "group_stage_team"
	KindScorer          Kind = "scorer"
	KindExactAnswer     Kind = "exact_answer"
)

// Field is an outcome component a kind needs before it can be scored.
type Field uint8

const (
	FieldScore Field = 1 << iota
	FieldTeam
	FieldPlayer
	FieldValue
	FieldAdvancing
	FieldScorers
	FieldAnswer
)

func (f Field) String() string {
	switch f {
	case FieldScore:
		return "score"
	case FieldTeam:
		return "team"
	case FieldPlayer:
		return "player"
	case FieldValue:
		return "value"
	case FieldAdvancing:
		return "group stage teams"
	case FieldScorers:
		return "scorers"
	case FieldAnswer:
		return "answer"
	default:
		return "unknown"
	}
}

// CatalogEntry is immutable reference data describing one kind.
type CatalogEntry struct {
	Kind       Kind
	Categories []bet.Category
	Requires   Field
}

var catalog = map[Kind]CatalogEntry{
	KindExactScore:      {Kind: KindExactScore, Categories: []bet.Category{bet.CategoryMatch, bet.CategorySeries}, Requires: FieldScore},
	KindScoreDifference: {Kind: KindScoreDifference, Categories: []bet.Category{bet.CategoryMatch}, Requires: FieldScore},
	KindExactTeam:       {Kind: KindExactTeam, Categories: []bet.Category{bet.CategoryMatch, bet.CategorySeries, bet.CategorySingleBet}, Requires: FieldTeam},
	KindExactPlayer:     {Kind: KindExactPlayer, Categories: []bet.Category{bet.CategorySingleBet}, Requires: FieldPlayer},
	KindExactValue:      {Kind: KindExactValue, Categories: []bet.Category{bet.CategorySingleBet}, Requires: FieldValue},
	KindClosestValue:    {Kind: KindClosestValue, Categories: []bet.Category{bet.CategorySingleBet}, Requires: FieldValue},
	KindGroupStageTeam:  {Kind: KindGroupStageTeam, Categories: []bet.Category{bet.CategorySingleBet}, Requires: FieldAdvancing},
	KindScorer:          {Kind: KindScorer, Categories: []bet.Category{bet.CategoryMatch}, Requires: FieldScorers},
	KindExactAnswer:     {Kind: KindExactAnswer, Categories: []bet.Category{bet.CategoryQuestion}, Requires: FieldAnswer},
}

func Lookup(kind Kind) (CatalogEntry, bool) {
	entry, ok := catalog[kind]
	return entry, ok
}

// Catalog lists every kind in a stable order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(catalog))
	for _, entry := range catalog {
		out = append(out, entry)
	}
	slices.SortFunc(out, func(a, b CatalogEntry) int {
		switch {
		case a.Kind < b.Kind:
			return -1
		case a.Kind > b.Kind:
			return 1
		default:
			return 0
		}
	})
	return out
}

func (k Kind) AppliesTo(category bet.Category) bool {
	entry, ok := catalog[k]
	return ok && slices.Contains(entry.Categories, category)
}

// Config is a league's configured instance of a kind.
type Config struct {
	ID        int64
	LeagueID  int64
	Kind      Kind
	Name      string
	Points    int
	Settings  Settings
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName is what result breakdowns report for the config.
func (c Config) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return string(c.Kind)
}

// Resolve keeps the configs whose kind applies to the category, ordered by id.
func Resolve(configs []Config, category bet.Category) []Config {
	out := make([]Config, 0, len(configs))
	for _, cfg := range configs {
		if cfg.Kind.AppliesTo(category) {
			out = append(out, cfg)
		}
	}
	slices.SortStableFunc(out, func(a, b Config) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
	return out
}
