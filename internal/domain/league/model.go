package league

import (
	"fmt"
	"strings"
)

// League is an isolated prediction competition.
type League struct {
	ID     int64
	Name   string
	Season string
}

func (l League) Validate() error {
	if l.ID <= 0 {
		return fmt.Errorf("league id must be > 0")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}

// LeagueUser binds a global user to one league.
type LeagueUser struct {
	ID          int64
	LeagueID    int64
	UserID      int64
	DisplayName string
}
