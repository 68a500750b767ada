package match

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestValidate(t *testing.T) {
	base := Match{
		ID:         "m1",
		MatchDate:  time.Date(2025, 9, 13, 0, 0, 0, 0, time.UTC),
		HomeTeamID: "t1",
		AwayTeamID: "t2",
		LeagueID:   "e1",
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("valid match rejected: %v", err)
	}

	selfPlay := base
	selfPlay.AwayTeamID = selfPlay.HomeTeamID
	if err := selfPlay.Validate(); err == nil {
		t.Fatalf("expected error for team playing itself")
	}

	doubleLink := base
	doubleLink.TournamentID = "e2"
	if err := doubleLink.Validate(); err == nil {
		t.Fatalf("expected error for match linked to both event kinds")
	}

	noDate := base
	noDate.MatchDate = time.Time{}
	if err := noDate.Validate(); err == nil {
		t.Fatalf("expected error for missing match date")
	}

	unlinked := base
	unlinked.LeagueID = ""
	if err := unlinked.Validate(); err != nil {
		t.Fatalf("unlinked match should be valid: %v", err)
	}
}

func TestShouldReplaceScores(t *testing.T) {
	observed := time.Date(2025, 9, 13, 12, 0, 0, 0, time.UTC)
	later := observed.Add(time.Hour)
	earlier := observed.Add(-time.Hour)

	existingNoScores := Match{ObservedAt: observed}
	existingScored := Match{HomeScore: intPtr(3), AwayScore: intPtr(1), ObservedAt: observed}
	existingNilNil := Match{HomeScore: intPtr(0), AwayScore: intPtr(0), ObservedAt: observed}

	cases := []struct {
		name       string
		existing   Match
		home, away *int
		observedAt time.Time
		want       bool
	}{
		{name: "incoming nil never overwrites", existing: existingScored, home: nil, away: nil, observedAt: later, want: false},
		{name: "incoming half nil never overwrites", existing: existingScored, home: intPtr(2), away: nil, observedAt: later, want: false},
		{name: "scores fill in over nil", existing: existingNoScores, home: intPtr(2), away: intPtr(2), observedAt: earlier, want: true},
		{name: "placeholder zero over real score skipped", existing: existingScored, home: intPtr(0), away: intPtr(0), observedAt: later, want: false},
		{name: "zero over zero allowed when newer", existing: existingNilNil, home: intPtr(0), away: intPtr(0), observedAt: later, want: true},
		{name: "newer real score wins", existing: existingScored, home: intPtr(3), away: intPtr(2), observedAt: later, want: true},
		{name: "older real score loses", existing: existingScored, home: intPtr(3), away: intPtr(2), observedAt: earlier, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShouldReplaceScores(tc.existing, tc.home, tc.away, tc.observedAt)
			if got != tc.want {
				t.Fatalf("ShouldReplaceScores = %v, want %v", got, tc.want)
			}
		})
	}
}
