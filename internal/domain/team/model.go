package team

import (
	"fmt"
	"strings"
)

const (
	GenderBoys  = "B"
	GenderGirls = "G"

	// DefaultRating seeds newly created teams before any result is known.
	DefaultRating = 1500
)

// Team is one canonical youth club side. Raw provider names collapse onto a
// single Team through the canonical key; provider-specific identifiers live
// in the registry, not here.
type Team struct {
	ID             string
	Name           string
	NormalizedName string
	State          string
	AgeGroup       string
	Gender         string
	BirthYear      *int
	Aliases        []string
	Rating         float64
	MatchesPlayed  int
	Wins           int
	Losses         int
	Ties           int
	GoalsFor       int
	GoalsAgainst   int
	Points         int
}

// Partition is the candidate pool a fuzzy match is allowed to search.
// Teams in different states, age groups, or genders never merge.
type Partition struct {
	State    string
	AgeGroup string
	Gender   string
}

// CanonicalKey uniquely identifies a team across providers.
type CanonicalKey struct {
	NormalizedName string
	Partition
}

func (k CanonicalKey) String() string {
	return strings.Join([]string{k.NormalizedName, k.State, k.AgeGroup, k.Gender}, "|")
}

func (t Team) CanonicalKey() CanonicalKey {
	return CanonicalKey{
		NormalizedName: t.NormalizedName,
		Partition: Partition{
			State:    t.State,
			AgeGroup: t.AgeGroup,
			Gender:   t.Gender,
		},
	}
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if strings.TrimSpace(t.NormalizedName) == "" {
		return fmt.Errorf("team normalized name is required")
	}
	switch t.Gender {
	case "", GenderBoys, GenderGirls:
	default:
		return fmt.Errorf("team gender %q is invalid", t.Gender)
	}
	if t.BirthYear != nil && (*t.BirthYear < 1950 || *t.BirthYear > 2035) {
		return fmt.Errorf("team birth year %d is out of range", *t.BirthYear)
	}

	return nil
}

// Aggregates are the cached record columns standings observations replace.
// MatchesPlayed is maintained separately by promotion against the ledger.
type Aggregates struct {
	Wins         int
	Losses       int
	Ties         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}
