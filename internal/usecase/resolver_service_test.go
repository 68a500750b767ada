package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/registry"
	"github.com/pitchrank/pitchrank/internal/domain/season"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/infrastructure/repository/memory"
	"github.com/pitchrank/pitchrank/internal/platform/cache"
	"github.com/pitchrank/pitchrank/internal/platform/id"
)

func newResolverFixture(seed []team.Team) (*TeamResolverService, *memory.TeamRepository, *memory.RegistryRepository) {
	teamRepo := memory.NewTeamRepository(seed)
	registryRepo := memory.NewRegistryRepository(teamRepo, memory.NewEventRepository(nil))
	resolver := NewTeamResolverService(
		teamRepo,
		NewRegistryService(registryRepo, nil),
		id.NewUUIDGenerator(),
		cache.NewStore(time.Minute),
		DefaultMatchingPolicy(),
		nil,
	)
	return resolver, teamRepo, registryRepo
}

func fallSeason(year int) season.Season {
	return season.Season{StartYear: year}
}

func TestTeamResolverService_ResolveTeam_CreatesWithoutRosterPrefix(t *testing.T) {
	t.Parallel()

	resolver, _, _ := newResolverFixture(nil)

	resolved, err := resolver.ResolveTeam(context.Background(), ResolveTeamInput{
		RawName:        "7115 Riverside SC 2015B",
		SourcePlatform: "acme",
		State:          "KS",
		Season:         fallSeason(2025),
	})
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}

	if resolved.NormalizedName != "riverside" {
		t.Fatalf("normalized name = %q, want %q", resolved.NormalizedName, "riverside")
	}
	if resolved.BirthYear == nil || *resolved.BirthYear != 2015 {
		t.Fatalf("birth year = %v, want 2015", resolved.BirthYear)
	}
	if resolved.Gender != team.GenderBoys {
		t.Fatalf("gender = %q, want %q", resolved.Gender, team.GenderBoys)
	}
	if resolved.AgeGroup != "U11" {
		t.Fatalf("age group = %q, want U11", resolved.AgeGroup)
	}
	if resolved.Rating != team.DefaultRating {
		t.Fatalf("rating = %v, want %v", resolved.Rating, team.DefaultRating)
	}
}

func TestTeamResolverService_ResolveTeam_ReusesAcrossNameVariants(t *testing.T) {
	t.Parallel()

	resolver, _, _ := newResolverFixture(nil)
	ctx := context.Background()

	first, err := resolver.ResolveTeam(ctx, ResolveTeamInput{
		RawName:        "7115 Riverside SC 2015B",
		SourcePlatform: "acme",
		State:          "KS",
		Season:         fallSeason(2025),
	})
	if err != nil {
		t.Fatalf("first ResolveTeam error: %v", err)
	}

	// Different roster code, different boilerplate, same club.
	second, err := resolver.ResolveTeam(ctx, ResolveTeamInput{
		RawName:        "811C Riverside FC 2015B",
		SourcePlatform: "other",
		State:          "KS",
		Season:         fallSeason(2025),
	})
	if err != nil {
		t.Fatalf("second ResolveTeam error: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("name variants resolved to different teams: %s vs %s", first.ID, second.ID)
	}
}

func TestTeamResolverService_ResolveTeam_RegistryFastPath(t *testing.T) {
	t.Parallel()

	resolver, _, _ := newResolverFixture(nil)
	ctx := context.Background()

	created, err := resolver.ResolveTeam(ctx, ResolveTeamInput{
		RawName:        "Union KC Jr Elite B15",
		SourcePlatform: "acme",
		SourceNativeID: "team-900",
		State:          "KS",
		Season:         fallSeason(2025),
	})
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}

	// A completely different raw name under the same native id must hit the
	// registry and skip name matching entirely.
	resolved, err := resolver.ResolveTeam(ctx, ResolveTeamInput{
		RawName:        "totally renamed squad",
		SourcePlatform: "acme",
		SourceNativeID: "team-900",
		State:          "KS",
	})
	if err != nil {
		t.Fatalf("fast-path ResolveTeam error: %v", err)
	}
	if resolved.ID != created.ID {
		t.Fatalf("fast path resolved %s, want %s", resolved.ID, created.ID)
	}
}

func TestTeamResolverService_ResolveTeam_BirthYearGuard(t *testing.T) {
	t.Parallel()

	resolver, _, _ := newResolverFixture(nil)
	ctx := context.Background()

	older, err := resolver.ResolveTeam(ctx, ResolveTeamInput{
		RawName: "Thunder Elite 2013B",
		State:   "KS",
	})
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	younger, err := resolver.ResolveTeam(ctx, ResolveTeamInput{
		RawName: "Thunder Elite 2015B",
		State:   "KS",
	})
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}

	if older.ID == younger.ID {
		t.Fatalf("teams with different birth years merged into %s", older.ID)
	}
}

func TestTeamResolverService_ResolveTeam_DryRunMiss(t *testing.T) {
	t.Parallel()

	resolver, _, _ := newResolverFixture(nil)

	_, err := resolver.ResolveTeam(context.Background(), ResolveTeamInput{
		RawName: "Never Seen United 2014G",
		State:   "MO",
		DryRun:  true,
	})
	if !errors.Is(err, ErrNoResolution) {
		t.Fatalf("expected ErrNoResolution, got %v", err)
	}
}

func TestTeamResolverService_ResolveTeam_DryRunDoesNotWrite(t *testing.T) {
	t.Parallel()

	seed := []team.Team{{
		ID: "team-77", Name: "Riverside SC", NormalizedName: "riverside",
		State: "KS", Gender: team.GenderBoys, Aliases: []string{"Riverside SC"},
	}}
	resolver, teamRepo, registryRepo := newResolverFixture(seed)
	ctx := context.Background()

	resolved, err := resolver.ResolveTeam(ctx, ResolveTeamInput{
		RawName:        "Riverside SC (KS)",
		SourcePlatform: "acme",
		SourceNativeID: "native-77",
		State:          "KS",
		Gender:         team.GenderBoys,
		DryRun:         true,
	})
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if resolved.ID != "team-77" {
		t.Fatalf("resolved %s, want team-77", resolved.ID)
	}

	// The hit is reported, but neither the alias nor the registry mapping
	// lands anywhere.
	stored, _, err := teamRepo.GetByID(ctx, "team-77")
	if err != nil {
		t.Fatalf("load team: %v", err)
	}
	if len(stored.Aliases) != 1 || stored.Aliases[0] != "Riverside SC" {
		t.Fatalf("aliases = %v, want only the original spelling", stored.Aliases)
	}
	_, err = NewRegistryService(registryRepo, nil).Lookup(ctx, registry.SourceRef{
		EntityType: registry.EntityTeam, SourcePlatform: "acme", SourceNativeID: "native-77",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("registry lookup after dry run = %v, want ErrNotFound", err)
	}
}

func TestTeamResolverService_ResolveTeam_TieBreakPrefersMoreMatches(t *testing.T) {
	t.Parallel()

	// Two existing duplicates with identical canonical keys; the one with
	// more matches played must win deterministically.
	seed := []team.Team{
		{ID: "t-low", Name: "Riverside", NormalizedName: "riverside", State: "KS", Gender: team.GenderBoys, MatchesPlayed: 2},
		{ID: "t-high", Name: "Riverside", NormalizedName: "riverside", State: "KS", Gender: team.GenderBoys, MatchesPlayed: 9},
	}
	resolver, _, _ := newResolverFixture(seed)

	resolved, err := resolver.ResolveTeam(context.Background(), ResolveTeamInput{
		RawName: "Riverside Red",
		State:   "KS",
		Gender:  team.GenderBoys,
	})
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if resolved.ID != "t-high" {
		t.Fatalf("tie break resolved %s, want t-high", resolved.ID)
	}
}

func TestTeamResolverService_ResolveTeam_RecordsAlias(t *testing.T) {
	t.Parallel()

	resolver, teamRepo, _ := newResolverFixture(nil)
	ctx := context.Background()

	created, err := resolver.ResolveTeam(ctx, ResolveTeamInput{
		RawName: "7115 Riverside SC 2015B",
		State:   "KS",
		Season:  fallSeason(2025),
	})
	if err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}
	if _, err := resolver.ResolveTeam(ctx, ResolveTeamInput{
		RawName: "811C Riverside 2015B",
		State:   "KS",
		Season:  fallSeason(2025),
	}); err != nil {
		t.Fatalf("ResolveTeam error: %v", err)
	}

	stored, found, err := teamRepo.GetByID(ctx, created.ID)
	if err != nil || !found {
		t.Fatalf("load team: found=%v err=%v", found, err)
	}
	if len(stored.Aliases) != 2 {
		t.Fatalf("aliases = %v, want the two raw spellings", stored.Aliases)
	}
}
