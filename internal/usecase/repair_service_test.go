package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/event"
	"github.com/pitchrank/pitchrank/internal/domain/match"
	"github.com/pitchrank/pitchrank/internal/domain/pipeline"
	"github.com/pitchrank/pitchrank/internal/domain/registry"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/infrastructure/repository/memory"
)

type repairFixture struct {
	repair   *RepairService
	registry *RegistryService

	matchRepo    *memory.MatchRepository
	teamRepo     *memory.TeamRepository
	eventRepo    *memory.EventRepository
	registryRepo *memory.RegistryRepository
}

func newRepairFixture(teams []team.Team, matches []match.Match) *repairFixture {
	teamRepo := memory.NewTeamRepository(teams)
	eventRepo := memory.NewEventRepository(nil)
	registryRepo := memory.NewRegistryRepository(teamRepo, eventRepo)
	matchRepo := memory.NewMatchRepository(matches)
	registrySvc := NewRegistryService(registryRepo, nil)

	return &repairFixture{
		repair:       NewRepairService(matchRepo, teamRepo, eventRepo, registrySvc, registryRepo, nil),
		registry:     registrySvc,
		matchRepo:    matchRepo,
		teamRepo:     teamRepo,
		eventRepo:    eventRepo,
		registryRepo: registryRepo,
	}
}

func tournamentMatches(n int, tournamentID string) []match.Match {
	out := make([]match.Match, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, match.Match{
			ID:           fmt.Sprintf("m-%03d", i),
			MatchDate:    time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			HomeTeamID:   fmt.Sprintf("home-%03d", i),
			AwayTeamID:   fmt.Sprintf("away-%03d", i),
			TournamentID: tournamentID,
		})
	}
	return out
}

func TestRepairService_ReclassifyEventKind(t *testing.T) {
	t.Parallel()

	fx := newRepairFixture(nil, tournamentMatches(40, "ev-id"))
	ctx := context.Background()

	if err := fx.eventRepo.Create(ctx, event.Event{ID: "ev-id", Kind: event.KindTournament, Name: "Heartland Invitational"}); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if err := fx.registry.Register(ctx, registry.Mapping{
		SourceRef: registry.SourceRef{EntityType: registry.EntityTournament, SourcePlatform: "acme", SourceNativeID: "ev-77"},
		EntityID:  "ev-id",
	}); err != nil {
		t.Fatalf("seed mapping: %v", err)
	}

	input := ReclassifyEventInput{
		SourcePlatform: "acme",
		SourceEventID:  "ev-77",
		FromKind:       event.KindTournament,
		ToKind:         event.KindLeague,
	}

	// Without authorization the run only reports.
	preview, err := fx.repair.ReclassifyEventKind(ctx, input)
	if err != nil {
		t.Fatalf("dry-run error: %v", err)
	}
	if !preview.DryRun || preview.MatchesMoved != 40 {
		t.Fatalf("dry-run report = %+v, want 40 matches to move", preview)
	}
	if stillLinked, _ := fx.matchRepo.CountEventLinks(ctx, "ev-id", event.KindTournament); stillLinked != 40 {
		t.Fatalf("dry run moved matches: %d still linked, want 40", stillLinked)
	}

	input.Auth = pipeline.AuthorizeWrites("ops@pitchrank")
	report, err := fx.repair.ReclassifyEventKind(ctx, input)
	if err != nil {
		t.Fatalf("ReclassifyEventKind error: %v", err)
	}
	if report.MatchesMoved != 40 || report.MappingsUpdated != 1 || report.EntitiesDeleted != 1 {
		t.Fatalf("report = %+v, want 40 moved, 1 mapping, 1 delete", report)
	}

	asLeague, _ := fx.matchRepo.CountEventLinks(ctx, "ev-id", event.KindLeague)
	asTournament, _ := fx.matchRepo.CountEventLinks(ctx, "ev-id", event.KindTournament)
	if asLeague != 40 || asTournament != 0 {
		t.Fatalf("links after reclassify: league=%d tournament=%d, want 40/0", asLeague, asTournament)
	}

	if _, found, _ := fx.eventRepo.GetByID(ctx, event.KindLeague, "ev-id"); !found {
		t.Fatal("league row missing after reclassify")
	}
	if _, found, _ := fx.eventRepo.GetByID(ctx, event.KindTournament, "ev-id"); found {
		t.Fatal("tournament row survived reclassify")
	}

	mapped, err := fx.registry.Lookup(ctx, registry.SourceRef{
		EntityType: registry.EntityLeague, SourcePlatform: "acme", SourceNativeID: "ev-77",
	})
	if err != nil || mapped != "ev-id" {
		t.Fatalf("league mapping = %q err=%v, want ev-id", mapped, err)
	}

	// The finished reclassification re-run affects nothing.
	again, err := fx.repair.ReclassifyEventKind(ctx, input)
	if err != nil {
		t.Fatalf("re-run error: %v", err)
	}
	if again.MatchesMoved != 0 || again.MappingsUpdated != 0 || again.EntitiesDeleted != 0 {
		t.Fatalf("re-run report = %+v, want all zeros", again)
	}
}

func TestRepairService_RelinkMisassignedTeam(t *testing.T) {
	t.Parallel()

	teams := []team.Team{
		{ID: "wrong", Name: "Riverside", NormalizedName: "riverside", State: "KS", MatchesPlayed: 3},
		{ID: "correct", Name: "Riverside Red", NormalizedName: "riverside red", State: "KS", MatchesPlayed: 1},
	}
	matches := []match.Match{
		{ID: "m-1", MatchDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), HomeTeamID: "wrong", AwayTeamID: "x-1", SourcePlatform: "acme"},
		{ID: "m-2", MatchDate: time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), HomeTeamID: "x-2", AwayTeamID: "wrong", SourcePlatform: "acme"},
		{ID: "m-3", MatchDate: time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), HomeTeamID: "wrong", AwayTeamID: "x-3", SourcePlatform: "other"},
		{ID: "m-4", MatchDate: time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC), HomeTeamID: "correct", AwayTeamID: "x-4", SourcePlatform: "acme"},
	}
	fx := newRepairFixture(teams, matches)
	ctx := context.Background()
	auth := pipeline.AuthorizeWrites("ops@pitchrank")

	// Scoped to one provider: the match from the other platform stays, so the
	// wrong team survives this pass.
	scoped, err := fx.repair.RelinkMisassignedTeam(ctx, RelinkTeamInput{
		WrongTeamID: "wrong", CorrectTeamID: "correct", SourcePlatform: "acme", Auth: auth,
	})
	if err != nil {
		t.Fatalf("scoped relink error: %v", err)
	}
	if scoped.MatchesMoved != 2 || scoped.TeamsDeleted != 0 {
		t.Fatalf("scoped report = %+v, want 2 moved and no delete", scoped)
	}

	correct, found, err := fx.teamRepo.GetByID(ctx, "correct")
	if err != nil || !found {
		t.Fatalf("load correct team: found=%v err=%v", found, err)
	}
	if correct.MatchesPlayed != 3 {
		t.Fatalf("correct team matches played = %d, want 3", correct.MatchesPlayed)
	}

	// Unscoped pass drains the rest and removes the empty wrong team.
	full, err := fx.repair.RelinkMisassignedTeam(ctx, RelinkTeamInput{
		WrongTeamID: "wrong", CorrectTeamID: "correct", Auth: auth,
	})
	if err != nil {
		t.Fatalf("full relink error: %v", err)
	}
	if full.MatchesMoved != 1 || full.TeamsDeleted != 1 {
		t.Fatalf("full report = %+v, want 1 moved and the team deleted", full)
	}
	if _, found, _ := fx.teamRepo.GetByID(ctx, "wrong"); found {
		t.Fatal("wrong team survived a complete relink")
	}

	// Already repaired: a third run is a clean no-op.
	rerun, err := fx.repair.RelinkMisassignedTeam(ctx, RelinkTeamInput{
		WrongTeamID: "wrong", CorrectTeamID: "correct", Auth: auth,
	})
	if err != nil {
		t.Fatalf("re-run error: %v", err)
	}
	if rerun.MatchesMoved != 0 || rerun.TeamsDeleted != 0 {
		t.Fatalf("re-run report = %+v, want all zeros", rerun)
	}
}

func TestRepairService_RelinkMisassignedTeam_ResolvesCollisions(t *testing.T) {
	t.Parallel()

	teams := []team.Team{
		{ID: "wrong", Name: "Riverside", NormalizedName: "riverside", State: "KS", MatchesPlayed: 3},
		{ID: "correct", Name: "Riverside Red", NormalizedName: "riverside red", State: "KS", MatchesPlayed: 1},
	}
	sep14 := time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)
	matches := []match.Match{
		// Same opponent on the same date on both teams: the wrong team's row
		// becomes a duplicate once re-pointed.
		{ID: "m-1", MatchDate: sep14, HomeTeamID: "wrong", AwayTeamID: "opp", SourcePlatform: "acme"},
		{ID: "m-2", MatchDate: sep14, HomeTeamID: "correct", AwayTeamID: "opp", SourcePlatform: "acme"},
		// The two teams played each other: moving this row would be a
		// self-match.
		{ID: "m-3", MatchDate: sep14.AddDate(0, 0, 1), HomeTeamID: "wrong", AwayTeamID: "correct", SourcePlatform: "acme"},
		// A clean move.
		{ID: "m-4", MatchDate: sep14.AddDate(0, 0, 2), HomeTeamID: "wrong", AwayTeamID: "x-1", SourcePlatform: "acme"},
	}
	fx := newRepairFixture(teams, matches)
	ctx := context.Background()
	input := RelinkTeamInput{WrongTeamID: "wrong", CorrectTeamID: "correct"}

	preview, err := fx.repair.RelinkMisassignedTeam(ctx, input)
	if err != nil {
		t.Fatalf("dry-run error: %v", err)
	}
	if !preview.DryRun || preview.MatchesMoved != 1 || preview.MatchesDeleted != 1 || preview.Conflicts != 2 || preview.TeamsDeleted != 0 {
		t.Fatalf("dry-run report = %+v, want 1 move, 1 delete, 2 conflicts, no team delete", preview)
	}
	if m1, _, _ := fx.matchRepo.GetByID(ctx, "m-1"); m1.DeletedAt != nil {
		t.Fatal("dry run soft deleted a match")
	}

	input.Auth = pipeline.AuthorizeWrites("ops@pitchrank")
	report, err := fx.repair.RelinkMisassignedTeam(ctx, input)
	if err != nil {
		t.Fatalf("RelinkMisassignedTeam error: %v", err)
	}
	if report.MatchesMoved != 1 || report.MatchesDeleted != 1 || report.Conflicts != 2 || report.TeamsDeleted != 0 {
		t.Fatalf("report = %+v, want 1 move, 1 delete, 2 conflicts, no team delete", report)
	}

	// Exactly one live row keeps the colliding semantic key.
	if m1, _, _ := fx.matchRepo.GetByID(ctx, "m-1"); m1.DeletedAt == nil {
		t.Fatal("duplicate row survived the relink")
	}
	kept, found, err := fx.matchRepo.GetBySemanticKey(ctx, match.SemanticKey{
		MatchDate: sep14, HomeTeamID: "correct", AwayTeamID: "opp",
	})
	if err != nil || !found || kept.ID != "m-2" {
		t.Fatalf("surviving row = %+v found=%v err=%v, want m-2", kept, found, err)
	}

	// The head-to-head stays put instead of collapsing into a self-match.
	if m3, _, _ := fx.matchRepo.GetByID(ctx, "m-3"); m3.HomeTeamID != "wrong" || m3.AwayTeamID != "correct" {
		t.Fatalf("head-to-head row mutated: %+v", m3)
	}
	if m4, _, _ := fx.matchRepo.GetByID(ctx, "m-4"); m4.HomeTeamID != "correct" {
		t.Fatalf("clean move missed: %+v", m4)
	}

	// The head-to-head row still references the wrong team, so it survives.
	if _, found, _ := fx.teamRepo.GetByID(ctx, "wrong"); !found {
		t.Fatal("wrong team deleted while still referenced")
	}
	if correct, _, _ := fx.teamRepo.GetByID(ctx, "correct"); correct.MatchesPlayed != 3 {
		t.Fatalf("correct team matches played = %d, want 3", correct.MatchesPlayed)
	}
}

func TestRepairService_RecomputeTeamAggregates(t *testing.T) {
	t.Parallel()

	teams := []team.Team{
		{ID: "t-drifted", Name: "Riverside", NormalizedName: "riverside", State: "KS", MatchesPlayed: 9},
		{ID: "t-exact", Name: "Union", NormalizedName: "union kc", State: "KS", MatchesPlayed: 1},
	}
	matches := []match.Match{
		{ID: "m-1", MatchDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), HomeTeamID: "t-drifted", AwayTeamID: "t-exact"},
	}
	fx := newRepairFixture(teams, matches)
	ctx := context.Background()

	// Dry run reports the drift without writing.
	preview, err := fx.repair.RecomputeTeamAggregates(ctx, pipeline.ReadOnly())
	if err != nil {
		t.Fatalf("dry-run error: %v", err)
	}
	if preview.StatsRepaired != 1 {
		t.Fatalf("dry-run stats repaired = %d, want 1", preview.StatsRepaired)
	}
	if drifted, _, _ := fx.teamRepo.GetByID(ctx, "t-drifted"); drifted.MatchesPlayed != 9 {
		t.Fatalf("dry run wrote: matches played = %d, want 9", drifted.MatchesPlayed)
	}

	report, err := fx.repair.RecomputeTeamAggregates(ctx, pipeline.AuthorizeWrites("ops@pitchrank"))
	if err != nil {
		t.Fatalf("RecomputeTeamAggregates error: %v", err)
	}
	if report.StatsRepaired != 1 {
		t.Fatalf("stats repaired = %d, want 1", report.StatsRepaired)
	}
	if drifted, _, _ := fx.teamRepo.GetByID(ctx, "t-drifted"); drifted.MatchesPlayed != 1 {
		t.Fatalf("matches played = %d, want 1", drifted.MatchesPlayed)
	}

	again, err := fx.repair.RecomputeTeamAggregates(ctx, pipeline.AuthorizeWrites("ops@pitchrank"))
	if err != nil {
		t.Fatalf("re-run error: %v", err)
	}
	if again.StatsRepaired != 0 {
		t.Fatalf("re-run stats repaired = %d, want 0", again.StatsRepaired)
	}
}

func TestRepairService_BackfillFromLegacy(t *testing.T) {
	t.Parallel()

	teams := []team.Team{
		{ID: "team-1", Name: "Riverside", NormalizedName: "riverside", State: "KS"},
		{ID: "team-2", Name: "Union", NormalizedName: "union kc", State: "KS"},
	}
	fx := newRepairFixture(teams, nil)
	ctx := context.Background()

	// team-2's ref is already mapped elsewhere; the legacy link for it must
	// surface as a conflict, never overwrite.
	if err := fx.registry.Register(ctx, registry.Mapping{
		SourceRef: registry.SourceRef{EntityType: registry.EntityTeam, SourcePlatform: "acme", SourceNativeID: "n2"},
		EntityID:  "team-1",
	}); err != nil {
		t.Fatalf("seed mapping: %v", err)
	}

	fx.registryRepo.SetLegacyTeamLinks([]registry.Mapping{
		{SourceRef: registry.SourceRef{EntityType: registry.EntityTeam, SourcePlatform: "acme", SourceNativeID: "n1"}, EntityID: "team-1"},
		{SourceRef: registry.SourceRef{EntityType: registry.EntityTeam, SourcePlatform: "acme", SourceNativeID: "n2"}, EntityID: "team-2"},
		{SourceRef: registry.SourceRef{EntityType: registry.EntityTeam, SourcePlatform: "acme", SourceNativeID: "n3"}, EntityID: "team-gone"},
	})

	report, err := fx.repair.BackfillFromLegacy(ctx, pipeline.AuthorizeWrites("ops@pitchrank"))
	if err != nil {
		t.Fatalf("BackfillFromLegacy error: %v", err)
	}
	if report.MappingsUpdated != 1 || report.SkippedMissing != 1 || report.Conflicts != 1 {
		t.Fatalf("report = %+v, want 1 updated, 1 skipped, 1 conflict", report)
	}

	mapped, err := fx.registry.Lookup(ctx, registry.SourceRef{
		EntityType: registry.EntityTeam, SourcePlatform: "acme", SourceNativeID: "n1",
	})
	if err != nil || mapped != "team-1" {
		t.Fatalf("backfilled mapping = %q err=%v, want team-1", mapped, err)
	}

	// The conflicting ref keeps its current target.
	kept, err := fx.registry.Lookup(ctx, registry.SourceRef{
		EntityType: registry.EntityTeam, SourcePlatform: "acme", SourceNativeID: "n2",
	})
	if err != nil || kept != "team-1" {
		t.Fatalf("conflicted mapping = %q err=%v, want team-1", kept, err)
	}

	// Everything already settled: re-run changes nothing.
	again, err := fx.repair.BackfillFromLegacy(ctx, pipeline.AuthorizeWrites("ops@pitchrank"))
	if err != nil {
		t.Fatalf("re-run error: %v", err)
	}
	if again.MappingsUpdated != 0 {
		t.Fatalf("re-run updated %d mappings, want 0", again.MappingsUpdated)
	}
	if again.Conflicts != 1 || again.SkippedMissing != 1 {
		t.Fatalf("re-run report = %+v, want the same conflict and skip", again)
	}
}
