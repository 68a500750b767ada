package event

import (
	"fmt"
	"strings"
)

const (
	KindLeague     = "league"
	KindTournament = "tournament"
)

// Event is a competition that owns matches: a league season or a tournament.
// A match links to exactly one of the two.
type Event struct {
	ID         string
	Kind       string
	Name       string
	SeasonCode string
	State      string
}

func ValidKind(kind string) bool {
	return kind == KindLeague || kind == KindTournament
}

func (e Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if !ValidKind(e.Kind) {
		return fmt.Errorf("event kind %q is invalid", e.Kind)
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("event name is required")
	}

	return nil
}
