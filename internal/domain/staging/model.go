package staging

import (
	"fmt"
	"strings"
	"time"
)

// Rejection reason codes. Rejected observations keep their payload so a
// fixed scraper or resolver can be re-run against them later.
const (
	ReasonSameTeam         = "SAME_TEAM_MATCH"
	ReasonMissingDate      = "MISSING_MATCH_DATE"
	ReasonResolutionFailed = "TEAM_RESOLUTION_FAILED"
	ReasonInvalidPayload   = "INVALID_PAYLOAD"
)

// MatchObservation is one scraped match as a provider reported it, before
// any canonicalization. Raw names stay raw here; resolution happens at
// promotion time.
type MatchObservation struct {
	ID                   int64
	SourcePlatform       string
	SourceNativeMatchKey string
	SourceEventID        string
	Season               string
	MatchDate            *time.Time
	HomeTeamRaw          string
	AwayTeamRaw          string
	HomeScore            *int
	AwayScore            *int
	State                string
	Payload              []byte
	ObservedAt           time.Time
	Processed            bool
}

func (o MatchObservation) Validate() error {
	if strings.TrimSpace(o.SourcePlatform) == "" {
		return fmt.Errorf("observation source platform is required")
	}
	if strings.TrimSpace(o.HomeTeamRaw) == "" {
		return fmt.Errorf("observation home team is required")
	}
	if strings.TrimSpace(o.AwayTeamRaw) == "" {
		return fmt.Errorf("observation away team is required")
	}

	return nil
}

// RejectedMatch is an observation promotion refused, with the reason code.
type RejectedMatch struct {
	MatchObservation
	ReasonCode string
	RejectedAt time.Time
}

// StandingObservation is one scraped standings row for a team and season.
type StandingObservation struct {
	ID             int64
	SourcePlatform string
	SourceEventID  string
	Season         string
	TeamRaw        string
	State          string
	Wins           int
	Losses         int
	Ties           int
	GoalsFor       int
	GoalsAgainst   int
	Points         int
	ObservedAt     time.Time
	Processed      bool
}

func (o StandingObservation) Validate() error {
	if strings.TrimSpace(o.SourcePlatform) == "" {
		return fmt.Errorf("standing source platform is required")
	}
	if strings.TrimSpace(o.TeamRaw) == "" {
		return fmt.Errorf("standing team is required")
	}
	if o.Wins < 0 || o.Losses < 0 || o.Ties < 0 || o.GoalsFor < 0 || o.GoalsAgainst < 0 {
		return fmt.Errorf("standing counters cannot be negative")
	}

	return nil
}
