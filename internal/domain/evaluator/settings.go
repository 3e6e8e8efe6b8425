package evaluator

import (
	"bytes"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// Settings is the kind-specific configuration payload. The concrete type is
// fixed by the kind: PositionFilter for exact_team/exact_player, RankedScorer
// for scorer and NoSettings for everything else.
type Settings interface {
	settingsKind() string
}

type NoSettings struct{}

func (NoSettings) settingsKind() string { return "none" }

// PositionFilter restricts an evaluator to participants playing one of Positions.
// An empty filter applies to everyone.
type PositionFilter struct {
	Positions []string `json:"positions,omitempty"`
}

func (PositionFilter) settingsKind() string { return "positions" }

func (f PositionFilter) Allows(position string, known bool) bool {
	return allowsPosition(f.Positions, position, known)
}

// RankedScorer awards points by the scorer's ranking tier.
type RankedScorer struct {
	RankedPoints   map[string]int `json:"rankedPoints"`
	UnrankedPoints int            `json:"unrankedPoints"`
	Positions      []string       `json:"positions,omitempty"`
}

func (RankedScorer) settingsKind() string { return "ranked_scorer" }

func (s RankedScorer) Allows(position string, known bool) bool {
	return allowsPosition(s.Positions, position, known)
}

var strictJSON = sonic.Config{
	DisallowUnknownFields: true,
	UseInt64:              true,
}.Froze()

// DecodeSettings parses a stored config payload for kind. A nil, empty or
// JSON null payload means "absent".
func DecodeSettings(kind Kind, raw []byte) (Settings, error) {
	if _, ok := catalog[kind]; !ok {
		return nil, crerr.Wrapf(ErrInvalidConfig, "unknown evaluator kind %q", kind)
	}

	absent := isAbsentPayload(raw)
	var settings Settings
	switch kind {
	case KindExactTeam, KindExactPlayer:
		filter := PositionFilter{}
		if !absent {
			if err := strictJSON.Unmarshal(raw, &filter); err != nil {
				return nil, crerr.Wrapf(ErrInvalidConfig, "decode %s config: %v", kind, err)
			}
		}
		settings = filter
	case KindScorer:
		if absent {
			return nil, crerr.Wrapf(ErrInvalidConfig, "%s requires rankedPoints and unrankedPoints", kind)
		}
		var scorer RankedScorer
		if err := strictJSON.Unmarshal(raw, &scorer); err != nil {
			return nil, crerr.Wrapf(ErrInvalidConfig, "decode %s config: %v", kind, err)
		}
		settings = scorer
	default:
		if !absent && !bytes.Equal(bytes.TrimSpace(raw), []byte("{}")) {
			return nil, crerr.Wrapf(ErrInvalidConfig, "%s does not accept a config payload", kind)
		}
		settings = NoSettings{}
	}

	if err := ValidateSettings(kind, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ValidateSettings checks that the settings type matches the kind and that
// every point value is non-negative.
func ValidateSettings(kind Kind, settings Settings) error {
	switch kind {
	case KindExactTeam, KindExactPlayer:
		filter, ok := settings.(PositionFilter)
		if !ok {
			return crerr.Wrapf(ErrInvalidConfig, "%s expects a position filter, got %s", kind, settingsName(settings))
		}
		return validatePositions(kind, filter.Positions)
	case KindScorer:
		scorer, ok := settings.(RankedScorer)
		if !ok {
			return crerr.Wrapf(ErrInvalidConfig, "%s expects ranked scorer settings, got %s", kind, settingsName(settings))
		}
		if len(scorer.RankedPoints) == 0 {
			return crerr.Wrapf(ErrInvalidConfig, "%s rankedPoints cannot be empty", kind)
		}
		for rank, points := range scorer.RankedPoints {
			if strings.TrimSpace(rank) == "" {
				return crerr.Wrapf(ErrInvalidConfig, "%s rankedPoints has an empty rank", kind)
			}
			if points < 0 {
				return crerr.Wrapf(ErrInvalidConfig, "%s rankedPoints[%s] must be >= 0", kind, rank)
			}
		}
		if scorer.UnrankedPoints < 0 {
			return crerr.Wrapf(ErrInvalidConfig, "%s unrankedPoints must be >= 0", kind)
		}
		return validatePositions(kind, scorer.Positions)
	default:
		if settings == nil {
			return nil
		}
		if _, ok := settings.(NoSettings); !ok {
			return crerr.Wrapf(ErrInvalidConfig, "%s does not accept %s settings", kind, settingsName(settings))
		}
		return nil
	}
}

// Validate checks a whole config row.
func (c Config) Validate() error {
	if c.LeagueID <= 0 {
		return crerr.Wrap(ErrInvalidConfig, "league id must be > 0")
	}
	if _, ok := catalog[c.Kind]; !ok {
		return crerr.Wrapf(ErrInvalidConfig, "unknown evaluator kind %q", c.Kind)
	}
	if c.Points < 0 {
		return crerr.Wrapf(ErrInvalidConfig, "%s points must be >= 0", c.Kind)
	}
	return ValidateSettings(c.Kind, c.Settings)
}

func validatePositions(kind Kind, positions []string) error {
	for _, p := range positions {
		if strings.TrimSpace(p) == "" {
			return crerr.Wrapf(ErrInvalidConfig, "%s positions cannot contain blanks", kind)
		}
	}
	return nil
}

func allowsPosition(positions []string, position string, known bool) bool {
	if len(positions) == 0 {
		return true
	}
	if !known {
		return false
	}
	for _, p := range positions {
		if strings.EqualFold(strings.TrimSpace(p), strings.TrimSpace(position)) {
			return true
		}
	}
	return false
}

func isAbsentPayload(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func settingsName(s Settings) string {
	if s == nil {
		return "no"
	}
	return s.settingsKind()
}

// EncodeSettings renders settings for storage. Absent payloads encode as nil.
func EncodeSettings(settings Settings) ([]byte, error) {
	switch s := settings.(type) {
	case nil, NoSettings:
		return nil, nil
	case PositionFilter:
		if len(s.Positions) == 0 {
			return nil, nil
		}
		return sonic.Marshal(s)
	default:
		return sonic.Marshal(s)
	}
}
