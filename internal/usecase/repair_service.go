package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pitchrank/pitchrank/internal/domain/event"
	"github.com/pitchrank/pitchrank/internal/domain/match"
	"github.com/pitchrank/pitchrank/internal/domain/pipeline"
	"github.com/pitchrank/pitchrank/internal/domain/registry"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
)

const repairSampleLimit = 5

// chunkLetters partitions bulk scans so each chunk stays a small, separate
// unit of work. Interrupting between chunks loses nothing: finished chunks
// are no-ops on the next run.
var chunkLetters = strings.Split("abcdefghijklmnopqrstuvwxyz0123456789", "")

// legacyLinkSource reads team source links out of the deprecated V2 schema
// generation.
type legacyLinkSource interface {
	ListLegacyTeamLinks(ctx context.Context) ([]registry.Mapping, error)
}

// RepairService hosts the explicit, idempotent maintenance operations.
// Every operation defaults to a dry run; mutations happen only under a
// granted write authorization, and each run reports counts plus samples.
type RepairService struct {
	matchRepo match.Repository
	teamRepo  team.Repository
	eventRepo event.Repository
	registry  *RegistryService
	legacy    legacyLinkSource
	logger    *logging.Logger
}

func NewRepairService(
	matchRepo match.Repository,
	teamRepo team.Repository,
	eventRepo event.Repository,
	registrySvc *RegistryService,
	legacy legacyLinkSource,
	logger *logging.Logger,
) *RepairService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RepairService{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		eventRepo: eventRepo,
		registry:  registrySvc,
		legacy:    legacy,
		logger:    logger,
	}
}

type RepairReport struct {
	Operation       string   `json:"operation"`
	DryRun          bool     `json:"dry_run"`
	MatchesMoved    int64    `json:"matches_moved"`
	MatchesDeleted  int64    `json:"matches_deleted"`
	MappingsUpdated int      `json:"mappings_updated"`
	EntitiesDeleted int      `json:"entities_deleted"`
	TeamsDeleted    int      `json:"teams_deleted"`
	StatsRepaired   int      `json:"stats_repaired"`
	SkippedMissing  int      `json:"skipped_missing"`
	Conflicts       int      `json:"conflicts"`
	Samples         []string `json:"samples,omitempty"`
}

func (r *RepairReport) sample(s string) {
	if len(r.Samples) < repairSampleLimit {
		r.Samples = append(r.Samples, s)
	}
}

type ReclassifyEventInput struct {
	SourcePlatform string
	SourceEventID  string
	FromKind       string
	ToKind         string
	Auth           pipeline.WriteAuthorization
}

// ReclassifyEventKind turns a tournament into a league or vice versa: the
// event row moves tables under the same id, every linked match swaps its
// link column, and the registry entry changes entity type. Re-running a
// finished reclassification affects zero rows.
func (s *RepairService) ReclassifyEventKind(ctx context.Context, input ReclassifyEventInput) (RepairReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RepairService.ReclassifyEventKind")
	defer span.End()

	report := RepairReport{Operation: "reclassify_event_kind", DryRun: !input.Auth.Granted()}

	if !event.ValidKind(input.FromKind) || !event.ValidKind(input.ToKind) || input.FromKind == input.ToKind {
		return report, fmt.Errorf("%w: reclassification needs two distinct event kinds", ErrInvalidInput)
	}

	fromRef := registry.SourceRef{
		EntityType:     input.FromKind,
		SourcePlatform: input.SourcePlatform,
		SourceNativeID: input.SourceEventID,
	}
	toRef := fromRef
	toRef.EntityType = input.ToKind

	entityID, err := s.registry.Lookup(ctx, fromRef)
	if errors.Is(err, ErrNotFound) {
		// Finished run or never existed; a mapping under the target kind
		// means the former.
		if _, lookupErr := s.registry.Lookup(ctx, toRef); lookupErr == nil {
			return report, nil
		}
		return report, err
	}
	if err != nil {
		return report, err
	}

	old, found, err := s.eventRepo.GetByID(ctx, input.FromKind, entityID)
	if err != nil {
		return report, fmt.Errorf("load event: %w", err)
	}
	if !found {
		return report, fmt.Errorf("%w: %s %s has no row", ErrNotFound, input.FromKind, entityID)
	}

	linked, err := s.matchRepo.CountEventLinks(ctx, entityID, input.FromKind)
	if err != nil {
		return report, fmt.Errorf("count linked matches: %w", err)
	}

	if report.DryRun {
		report.MatchesMoved = linked
		report.MappingsUpdated = 1
		report.EntitiesDeleted = 1
		report.sample(fmt.Sprintf("event %s (%s) would become %s with %d matches", entityID, old.Name, input.ToKind, linked))
		return report, nil
	}

	reclassified := old
	reclassified.Kind = input.ToKind
	if err := s.eventRepo.Create(ctx, reclassified); err != nil {
		return report, fmt.Errorf("create reclassified event: %w", err)
	}

	moved, err := s.matchRepo.MoveEventLink(ctx, entityID, input.FromKind, input.ToKind)
	if err != nil {
		return report, fmt.Errorf("move match links: %w", err)
	}
	report.MatchesMoved = moved

	if err := s.registry.Remove(ctx, fromRef); err != nil {
		return report, err
	}
	if err := s.registry.Register(ctx, registry.Mapping{SourceRef: toRef, EntityID: entityID}); err != nil && !errors.Is(err, ErrConflict) {
		return report, err
	}
	report.MappingsUpdated = 1

	if err := s.eventRepo.Delete(ctx, input.FromKind, entityID); err != nil {
		return report, fmt.Errorf("delete old event row: %w", err)
	}
	report.EntitiesDeleted = 1

	s.logger.InfoContext(ctx, "event reclassified",
		"event_id", entityID,
		"from_kind", input.FromKind,
		"to_kind", input.ToKind,
		"matches_moved", moved,
		"actor", input.Auth.Actor(),
	)
	return report, nil
}

type RelinkTeamInput struct {
	WrongTeamID   string
	CorrectTeamID string
	// SourcePlatform narrows the move to matches scraped from one provider.
	SourcePlatform string
	Auth           pipeline.WriteAuthorization
}

// RelinkMisassignedTeam re-points matches from a wrongly matched team onto
// the correct one, recomputes the correct team's cached match count, and
// removes the wrong team once nothing references it. Moves are decided per
// match: a row whose re-pointed semantic key already exists on the correct
// team is soft deleted as a duplicate, and a row where the wrong team
// played the correct team stays in place, since moving it would make a
// self-match.
func (s *RepairService) RelinkMisassignedTeam(ctx context.Context, input RelinkTeamInput) (RepairReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RepairService.RelinkMisassignedTeam")
	defer span.End()

	report := RepairReport{Operation: "relink_misassigned_team", DryRun: !input.Auth.Granted()}

	if input.WrongTeamID == "" || input.CorrectTeamID == "" || input.WrongTeamID == input.CorrectTeamID {
		return report, fmt.Errorf("%w: relink needs two distinct team ids", ErrInvalidInput)
	}

	wrong, found, err := s.teamRepo.GetByID(ctx, input.WrongTeamID)
	if err != nil {
		return report, fmt.Errorf("load wrong team: %w", err)
	}
	if !found {
		// Already repaired.
		return report, nil
	}
	correct, found, err := s.teamRepo.GetByID(ctx, input.CorrectTeamID)
	if err != nil {
		return report, fmt.Errorf("load correct team: %w", err)
	}
	if !found {
		return report, fmt.Errorf("%w: correct team %s does not exist", ErrNotFound, input.CorrectTeamID)
	}

	wrongMatches, err := s.matchRepo.ListByTeam(ctx, wrong.ID)
	if err != nil {
		return report, fmt.Errorf("list wrong team matches: %w", err)
	}

	leftInPlace := 0
	for _, m := range wrongMatches {
		if input.SourcePlatform != "" && m.SourcePlatform != input.SourcePlatform {
			leftInPlace++
			continue
		}

		relinked := m.SemanticKey()
		if relinked.HomeTeamID == wrong.ID {
			relinked.HomeTeamID = correct.ID
		}
		if relinked.AwayTeamID == wrong.ID {
			relinked.AwayTeamID = correct.ID
		}

		if relinked.HomeTeamID == relinked.AwayTeamID {
			report.Conflicts++
			report.sample(fmt.Sprintf("match %s on %s is against the correct team, left in place",
				m.ID, m.MatchDate.Format("2006-01-02")))
			leftInPlace++
			continue
		}

		existing, found, err := s.matchRepo.GetBySemanticKey(ctx, relinked)
		if err != nil {
			return report, fmt.Errorf("check relinked semantic key: %w", err)
		}
		if found && existing.ID != m.ID {
			report.Conflicts++
			report.MatchesDeleted++
			report.sample(fmt.Sprintf("match %s duplicates %s after relink, soft deleted", m.ID, existing.ID))
			if !report.DryRun {
				if err := s.matchRepo.SoftDelete(ctx, m.ID); err != nil {
					return report, fmt.Errorf("soft delete duplicate match: %w", err)
				}
			}
			continue
		}

		report.MatchesMoved++
		report.sample(fmt.Sprintf("match %s on %s", m.ID, m.MatchDate.Format("2006-01-02")))
		if !report.DryRun {
			if err := s.matchRepo.ReassignMatchTeam(ctx, m.ID, wrong.ID, correct.ID); err != nil {
				return report, fmt.Errorf("reassign match: %w", err)
			}
		}
	}

	if report.DryRun {
		if leftInPlace == 0 {
			report.TeamsDeleted = 1
		}
		return report, nil
	}

	correctMatches, err := s.matchRepo.ListByTeam(ctx, correct.ID)
	if err != nil {
		return report, fmt.Errorf("list correct team matches: %w", err)
	}
	if err := s.teamRepo.SetMatchesPlayed(ctx, correct.ID, len(correctMatches)); err != nil {
		return report, fmt.Errorf("recompute matches played: %w", err)
	}
	report.StatsRepaired = 1

	remaining, err := s.matchRepo.ListByTeam(ctx, wrong.ID)
	if err != nil {
		return report, fmt.Errorf("list remaining matches: %w", err)
	}
	if len(remaining) == 0 {
		if err := s.teamRepo.Delete(ctx, wrong.ID); err != nil {
			return report, fmt.Errorf("delete wrong team: %w", err)
		}
		report.TeamsDeleted = 1
	}

	s.logger.InfoContext(ctx, "team relinked",
		"wrong_team_id", wrong.ID,
		"correct_team_id", correct.ID,
		"matches_moved", report.MatchesMoved,
		"matches_deleted", report.MatchesDeleted,
		"conflicts", report.Conflicts,
		"team_deleted", report.TeamsDeleted == 1,
		"actor", input.Auth.Actor(),
	)
	return report, nil
}

// RecomputeTeamAggregates repairs cached matches_played drift against the
// ledger. The scan is chunked by first letter of the normalized name; each
// chunk stands alone, so the operation can be interrupted and resumed.
func (s *RepairService) RecomputeTeamAggregates(ctx context.Context, auth pipeline.WriteAuthorization) (RepairReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RepairService.RecomputeTeamAggregates")
	defer span.End()

	report := RepairReport{Operation: "recompute_team_aggregates", DryRun: !auth.Granted()}

	actual, err := s.matchRepo.CountByTeam(ctx)
	if err != nil {
		return report, fmt.Errorf("count matches per team: %w", err)
	}

	for _, letter := range chunkLetters {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		teams, err := s.teamRepo.ListByNamePrefix(ctx, letter)
		if err != nil {
			return report, fmt.Errorf("list teams for chunk %q: %w", letter, err)
		}
		for _, t := range teams {
			want := actual[t.ID]
			if t.MatchesPlayed == want {
				continue
			}
			report.sample(fmt.Sprintf("team %s cached %d actual %d", t.ID, t.MatchesPlayed, want))
			if report.DryRun {
				report.StatsRepaired++
				continue
			}
			if err := s.teamRepo.SetMatchesPlayed(ctx, t.ID, want); err != nil {
				return report, fmt.Errorf("repair matches played for %s: %w", t.ID, err)
			}
			report.StatsRepaired++
		}
	}

	return report, nil
}

// BackfillFromLegacy copies team source links from the deprecated V2 schema
// into the registry. Links whose team no longer exists are skipped; links
// already present are no-ops, so the backfill is re-runnable.
func (s *RepairService) BackfillFromLegacy(ctx context.Context, auth pipeline.WriteAuthorization) (RepairReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RepairService.BackfillFromLegacy")
	defer span.End()

	report := RepairReport{Operation: "backfill_from_legacy", DryRun: !auth.Granted()}
	if s.legacy == nil {
		return report, fmt.Errorf("%w: no legacy source configured", ErrDependencyUnavailable)
	}

	links, err := s.legacy.ListLegacyTeamLinks(ctx)
	if err != nil {
		return report, fmt.Errorf("list legacy team links: %w", err)
	}

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		_, exists, err := s.teamRepo.GetByID(ctx, link.EntityID)
		if err != nil {
			return report, fmt.Errorf("check legacy link target: %w", err)
		}
		if !exists {
			report.SkippedMissing++
			continue
		}

		link.EntityType = registry.EntityTeam
		mappedID, lookupErr := s.registry.Lookup(ctx, link.SourceRef)
		if lookupErr == nil {
			// Current registry wins over the legacy generation.
			if mappedID != link.EntityID {
				report.Conflicts++
			}
			continue
		}
		if !errors.Is(lookupErr, ErrNotFound) {
			return report, lookupErr
		}

		if report.DryRun {
			report.MappingsUpdated++
			report.sample(fmt.Sprintf("%s/%s -> %s", link.SourcePlatform, link.SourceNativeID, link.EntityID))
			continue
		}

		err = s.registry.Register(ctx, link)
		switch {
		case errors.Is(err, ErrConflict):
			report.Conflicts++
		case err != nil:
			return report, err
		default:
			report.MappingsUpdated++
		}
	}

	return report, nil
}
