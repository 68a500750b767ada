package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/pitchrank/pitchrank/internal/domain/registry"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/infrastructure/repository/memory"
)

func newRegistryFixture(seedTeams []team.Team) (*RegistryService, *memory.TeamRepository) {
	teamRepo := memory.NewTeamRepository(seedTeams)
	repo := memory.NewRegistryRepository(teamRepo, memory.NewEventRepository(nil))
	return NewRegistryService(repo, nil), teamRepo
}

func teamRef(nativeID string) registry.SourceRef {
	return registry.SourceRef{
		EntityType:     registry.EntityTeam,
		SourcePlatform: "acme",
		SourceNativeID: nativeID,
	}
}

func TestRegistryService_RegisterLookupRoundTrip(t *testing.T) {
	t.Parallel()

	svc, _ := newRegistryFixture(nil)
	ctx := context.Background()

	mapping := registry.Mapping{SourceRef: teamRef("n1"), EntityID: "team-1"}
	if err := svc.Register(ctx, mapping); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	got, err := svc.Lookup(ctx, teamRef("n1"))
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if got != "team-1" {
		t.Fatalf("Lookup = %s, want team-1", got)
	}

	// Same triple, same target: a no-op, not an error.
	if err := svc.Register(ctx, mapping); err != nil {
		t.Fatalf("idempotent Register error: %v", err)
	}

	// Same triple, different target: a conflict.
	conflicting := registry.Mapping{SourceRef: teamRef("n1"), EntityID: "team-2"}
	if err := svc.Register(ctx, conflicting); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegistryService_Reassign(t *testing.T) {
	t.Parallel()

	svc, _ := newRegistryFixture(nil)
	ctx := context.Background()

	if err := svc.Reassign(ctx, teamRef("missing"), "team-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unmapped ref, got %v", err)
	}

	if err := svc.Register(ctx, registry.Mapping{SourceRef: teamRef("n1"), EntityID: "team-1"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := svc.Reassign(ctx, teamRef("n1"), "team-2"); err != nil {
		t.Fatalf("Reassign error: %v", err)
	}

	got, err := svc.Lookup(ctx, teamRef("n1"))
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if got != "team-2" {
		t.Fatalf("Lookup after reassign = %s, want team-2", got)
	}
}

func TestRegistryService_ListOrphans(t *testing.T) {
	t.Parallel()

	svc, teamRepo := newRegistryFixture([]team.Team{
		{ID: "team-live", Name: "Live", NormalizedName: "live", State: "KS"},
		{ID: "team-dead", Name: "Dead", NormalizedName: "dead", State: "KS"},
	})
	ctx := context.Background()

	if err := svc.Register(ctx, registry.Mapping{SourceRef: teamRef("live"), EntityID: "team-live"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := svc.Register(ctx, registry.Mapping{SourceRef: teamRef("dead"), EntityID: "team-dead"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if err := teamRepo.Delete(ctx, "team-dead"); err != nil {
		t.Fatalf("delete team: %v", err)
	}

	orphans, err := svc.ListOrphans(ctx, registry.EntityTeam)
	if err != nil {
		t.Fatalf("ListOrphans error: %v", err)
	}
	if len(orphans) != 1 {
		t.Fatalf("orphans = %+v, want exactly one", orphans)
	}
	if orphans[0].SourceNativeID != "dead" || orphans[0].EntityID != "team-dead" {
		t.Fatalf("unexpected orphan: %+v", orphans[0])
	}
}
