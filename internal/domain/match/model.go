package match

import (
	"fmt"
	"time"
)

// Match is one row in the production ledger. A match is identified
// semantically by (date, home team, away team); provider keys are kept only
// as a secondary lookup.
type Match struct {
	ID             string
	MatchDate      time.Time
	HomeTeamID     string
	AwayTeamID     string
	HomeScore      *int
	AwayScore      *int
	LeagueID       string
	TournamentID   string
	SeasonCode     string
	SourcePlatform string
	SourceMatchKey string
	ObservedAt     time.Time
	DeletedAt      *time.Time
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.MatchDate.IsZero() {
		return fmt.Errorf("match date is required")
	}
	if m.HomeTeamID == "" || m.AwayTeamID == "" {
		return fmt.Errorf("match team ids are required")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("match cannot pair a team against itself")
	}
	if m.LeagueID != "" && m.TournamentID != "" {
		return fmt.Errorf("match cannot link both a league and a tournament")
	}

	return nil
}

// SemanticKey is the natural identity of a match.
type SemanticKey struct {
	MatchDate  time.Time
	HomeTeamID string
	AwayTeamID string
}

func (m Match) SemanticKey() SemanticKey {
	return SemanticKey{
		MatchDate:  m.MatchDate,
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
	}
}

// HasScores reports whether both scores are present.
func (m Match) HasScores() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// ShouldReplaceScores decides whether an incoming observation may overwrite
// the stored scores. Present scores never regress to absent ones, and an
// incoming 0-0 over a real stored score is treated as a provider placeholder
// and skipped. When both sides carry real scores the newer observation wins.
func ShouldReplaceScores(existing Match, incomingHome, incomingAway *int, incomingObservedAt time.Time) bool {
	if incomingHome == nil || incomingAway == nil {
		return false
	}
	if !existing.HasScores() {
		return true
	}
	if *incomingHome == 0 && *incomingAway == 0 && (*existing.HomeScore != 0 || *existing.AwayScore != 0) {
		return false
	}
	return incomingObservedAt.After(existing.ObservedAt)
}
