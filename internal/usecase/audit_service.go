package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pitchrank/pitchrank/internal/domain/match"
	"github.com/pitchrank/pitchrank/internal/domain/registry"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// AuditService runs the read-only integrity scans. Findings are reported,
// never auto-corrected; fixing them is RepairService's job under an explicit
// write authorization.
type AuditService struct {
	registry  *RegistryService
	teamRepo  team.Repository
	matchRepo match.Repository
	logger    *logging.Logger
}

func NewAuditService(registrySvc *RegistryService, teamRepo team.Repository, matchRepo match.Repository, logger *logging.Logger) *AuditService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuditService{
		registry:  registrySvc,
		teamRepo:  teamRepo,
		matchRepo: matchRepo,
		logger:    logger,
	}
}

type TeamDrift struct {
	TeamID string `json:"team_id"`
	Cached int    `json:"cached"`
	Actual int    `json:"actual"`
}

type AuditReport struct {
	OrphanedMappings  []registry.Mapping  `json:"orphaned_mappings"`
	DuplicateTeamKeys []team.CanonicalKey `json:"duplicate_team_keys"`
	MatchCountDrift   []TeamDrift         `json:"match_count_drift"`
}

func (r AuditReport) Clean() bool {
	return len(r.OrphanedMappings) == 0 && len(r.DuplicateTeamKeys) == 0 && len(r.MatchCountDrift) == 0
}

// Run executes the three scans concurrently and merges their findings.
func (s *AuditService) Run(ctx context.Context) (AuditReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuditService.Run")
	defer span.End()

	var (
		mu     sync.Mutex
		report AuditReport
	)

	p := pool.New().WithErrors().WithContext(ctx)

	p.Go(func(ctx context.Context) error {
		for _, entityType := range []string{registry.EntityTeam, registry.EntityLeague, registry.EntityTournament} {
			orphans, err := s.registry.ListOrphans(ctx, entityType)
			if err != nil {
				return err
			}
			mu.Lock()
			report.OrphanedMappings = append(report.OrphanedMappings, orphans...)
			mu.Unlock()
		}
		return nil
	})

	p.Go(func(ctx context.Context) error {
		duplicates, err := s.teamRepo.ListDuplicateCanonicalKeys(ctx)
		if err != nil {
			return fmt.Errorf("scan duplicate canonical keys: %w", err)
		}
		mu.Lock()
		report.DuplicateTeamKeys = duplicates
		mu.Unlock()
		return nil
	})

	p.Go(func(ctx context.Context) error {
		drift, err := s.scanMatchCountDrift(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		report.MatchCountDrift = drift
		mu.Unlock()
		return nil
	})

	if err := p.Wait(); err != nil {
		return AuditReport{}, err
	}

	s.logger.InfoContext(ctx, "integrity audit finished",
		"orphaned_mappings", len(report.OrphanedMappings),
		"duplicate_team_keys", len(report.DuplicateTeamKeys),
		"match_count_drift", len(report.MatchCountDrift),
	)
	return report, nil
}

func (s *AuditService) scanMatchCountDrift(ctx context.Context) ([]TeamDrift, error) {
	cached, err := s.teamRepo.MatchesPlayedSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot cached match counts: %w", err)
	}
	actual, err := s.matchRepo.CountByTeam(ctx)
	if err != nil {
		return nil, fmt.Errorf("count ledger matches per team: %w", err)
	}

	var drift []TeamDrift
	for teamID, cachedCount := range cached {
		if actualCount := actual[teamID]; actualCount != cachedCount {
			drift = append(drift, TeamDrift{TeamID: teamID, Cached: cachedCount, Actual: actualCount})
		}
	}
	sort.Slice(drift, func(i, j int) bool { return drift[i].TeamID < drift[j].TeamID })
	return drift, nil
}
