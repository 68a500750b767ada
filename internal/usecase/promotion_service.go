package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pitchrank/pitchrank/internal/domain/event"
	"github.com/pitchrank/pitchrank/internal/domain/match"
	"github.com/pitchrank/pitchrank/internal/domain/registry"
	"github.com/pitchrank/pitchrank/internal/domain/season"
	"github.com/pitchrank/pitchrank/internal/domain/staging"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/platform/id"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
)

const (
	defaultPromoteBatchSize  = 500
	defaultPromoteMaxWorkers = 4
)

// PromotionService drains the staging ledger into the production match
// ledger. Promotion is single-writer: at most one run may be active at a
// time, which is what lets the read/decide/write sequence per record stay
// lock-free.
type PromotionService struct {
	stagingRepo staging.Repository
	matchRepo   match.Repository
	eventRepo   event.Repository
	teamRepo    team.Repository
	resolver    *TeamResolverService
	registry    *RegistryService
	idGen       id.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewPromotionService(
	stagingRepo staging.Repository,
	matchRepo match.Repository,
	eventRepo event.Repository,
	teamRepo team.Repository,
	resolver *TeamResolverService,
	registrySvc *RegistryService,
	idGen id.Generator,
	logger *logging.Logger,
) *PromotionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PromotionService{
		stagingRepo: stagingRepo,
		matchRepo:   matchRepo,
		eventRepo:   eventRepo,
		teamRepo:    teamRepo,
		resolver:    resolver,
		registry:    registrySvc,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

type PromoteInput struct {
	BatchSize  int
	MaxWorkers int
	// DryRun resolves and decides without touching the ledger, the staging
	// flags, or the team tables.
	DryRun bool
}

type PromoteResult struct {
	Fetched   int  `json:"fetched"`
	Inserted  int  `json:"inserted"`
	Updated   int  `json:"updated"`
	Skipped   int  `json:"skipped"`
	Rejected  int  `json:"rejected"`
	Unlinked  int  `json:"unlinked"`
	Transient int  `json:"transient"`
	DryRun    bool `json:"dry_run"`
	// WouldCreateTeams counts teams a dry run could not resolve but a real
	// run would create; those records preview as inserts, not rejections.
	WouldCreateTeams int                  `json:"would_create_teams"`
	Rejections       []PromotionRejection `json:"rejections,omitempty"`
}

type PromotionRejection struct {
	ObservationID int64  `json:"observation_id"`
	ReasonCode    string `json:"reason_code"`
	Detail        string `json:"detail,omitempty"`
}

// PromoteBatch promotes one batch of unprocessed observations. Each record's
// outcome is independent: a rejection or transient failure never aborts its
// siblings. Transiently failed records stay unprocessed for the next run.
func (s *PromotionService) PromoteBatch(ctx context.Context, input PromoteInput) (PromoteResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PromotionService.PromoteBatch")
	defer span.End()

	if input.BatchSize <= 0 {
		input.BatchSize = defaultPromoteBatchSize
	}
	if input.MaxWorkers <= 0 {
		input.MaxWorkers = defaultPromoteMaxWorkers
	}

	obs, err := s.stagingRepo.FetchUnprocessedMatches(ctx, input.BatchSize)
	if err != nil {
		return PromoteResult{}, fmt.Errorf("fetch unprocessed observations: %w", err)
	}

	result := PromoteResult{Fetched: len(obs), DryRun: input.DryRun}
	if len(obs) == 0 {
		return result, nil
	}

	s.warmResolutionCache(ctx, obs, input.MaxWorkers)

	processed := make([]int64, 0, len(obs))
	for i := range obs {
		outcome := s.promoteOne(ctx, obs[i], input.DryRun)
		switch outcome.kind {
		case promoteInserted:
			result.Inserted++
			processed = append(processed, obs[i].ID)
		case promoteUpdated:
			result.Updated++
			processed = append(processed, obs[i].ID)
		case promoteSkipped:
			result.Skipped++
			processed = append(processed, obs[i].ID)
		case promoteRejected:
			result.Rejected++
			result.Rejections = append(result.Rejections, PromotionRejection{
				ObservationID: obs[i].ID,
				ReasonCode:    outcome.reasonCode,
				Detail:        outcome.detail,
			})
			if !input.DryRun {
				if err := s.stagingRepo.RejectMatch(ctx, obs[i], outcome.reasonCode); err != nil {
					s.logger.ErrorContext(ctx, "move observation to rejected store",
						"observation_id", obs[i].ID, "error", err)
				}
			}
		case promoteTransient:
			result.Transient++
			s.logger.WarnContext(ctx, "observation left unprocessed after transient failure",
				"observation_id", obs[i].ID, "error", outcome.detail)
		}
		if outcome.unlinked {
			result.Unlinked++
		}
		result.WouldCreateTeams += outcome.wouldCreateTeams
	}

	if !input.DryRun && len(processed) > 0 {
		if err := s.stagingRepo.MarkMatchesProcessed(ctx, processed); err != nil {
			return result, fmt.Errorf("mark observations processed: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "promotion batch finished",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"rejected", result.Rejected,
		"unlinked", result.Unlinked,
		"transient", result.Transient,
		"dry_run", result.DryRun,
	)
	return result, nil
}

// warmResolutionCache runs read-only team resolution concurrently so the
// sequential promotion loop mostly hits the per-run cache. Misses and errors
// are fine here; the loop settles them one at a time.
func (s *PromotionService) warmResolutionCache(ctx context.Context, obs []staging.MatchObservation, maxWorkers int) {
	pool, err := ants.NewPool(maxWorkers)
	if err != nil {
		s.logger.WarnContext(ctx, "resolution warm pool unavailable", "error", err)
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range obs {
		o := obs[i]
		wg.Add(1)
		task := func() {
			defer wg.Done()
			for _, raw := range []string{o.HomeTeamRaw, o.AwayTeamRaw} {
				_, _ = s.resolver.ResolveTeam(ctx, s.resolveInput(o, raw, true))
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
		}
	}
	wg.Wait()
}

type promoteOutcomeKind int

const (
	promoteInserted promoteOutcomeKind = iota
	promoteUpdated
	promoteSkipped
	promoteRejected
	promoteTransient
)

type promoteOutcome struct {
	kind             promoteOutcomeKind
	reasonCode       string
	detail           string
	unlinked         bool
	wouldCreateTeams int
}

func (s *PromotionService) promoteOne(ctx context.Context, o staging.MatchObservation, dryRun bool) promoteOutcome {
	if o.MatchDate == nil || o.MatchDate.IsZero() {
		return promoteOutcome{kind: promoteRejected, reasonCode: staging.ReasonMissingDate}
	}

	wouldCreate := 0
	home, err := s.resolver.ResolveTeam(ctx, s.resolveInput(o, o.HomeTeamRaw, dryRun))
	homeMissing := dryRun && errors.Is(err, ErrNoResolution)
	if homeMissing {
		wouldCreate++
		err = nil
	}
	if outcome, failed := classifyResolution(err, o.HomeTeamRaw); failed {
		return outcome
	}
	away, err := s.resolver.ResolveTeam(ctx, s.resolveInput(o, o.AwayTeamRaw, dryRun))
	awayMissing := dryRun && errors.Is(err, ErrNoResolution)
	if awayMissing {
		wouldCreate++
		err = nil
	}
	if outcome, failed := classifyResolution(err, o.AwayTeamRaw); failed {
		return outcome
	}

	// A real run creates the missing side(s) and inserts; preview that
	// instead of reporting a rejection the run would never produce. Two
	// missing sides with the same canonical name would collapse into one
	// created team, which is still a self-match.
	if homeMissing || awayMissing {
		if homeMissing && awayMissing && s.sameCanonicalName(o.HomeTeamRaw, o.AwayTeamRaw) {
			return promoteOutcome{
				kind:       promoteRejected,
				reasonCode: staging.ReasonSameTeam,
				detail:     fmt.Sprintf("%q and %q resolve to the same new team", o.HomeTeamRaw, o.AwayTeamRaw),
			}
		}
		leagueID, tournamentID, err := s.resolveEventLink(ctx, o)
		if err != nil {
			return promoteOutcome{kind: promoteTransient, detail: err.Error()}
		}
		return promoteOutcome{
			kind:             promoteInserted,
			unlinked:         leagueID == "" && tournamentID == "",
			wouldCreateTeams: wouldCreate,
		}
	}

	if home.ID == away.ID {
		return promoteOutcome{
			kind:       promoteRejected,
			reasonCode: staging.ReasonSameTeam,
			detail:     fmt.Sprintf("%q and %q resolve to team %s", o.HomeTeamRaw, o.AwayTeamRaw, home.ID),
		}
	}

	leagueID, tournamentID, err := s.resolveEventLink(ctx, o)
	if err != nil {
		return promoteOutcome{kind: promoteTransient, detail: err.Error()}
	}
	unlinked := leagueID == "" && tournamentID == ""

	outcome := s.upsertMatch(ctx, o, home, away, leagueID, tournamentID, dryRun)
	outcome.unlinked = unlinked && outcome.kind == promoteInserted
	return outcome
}

func (s *PromotionService) upsertMatch(ctx context.Context, o staging.MatchObservation, home, away team.Team, leagueID, tournamentID string, dryRun bool) promoteOutcome {
	matchDate := o.MatchDate.UTC().Truncate(24 * time.Hour)
	key := match.SemanticKey{MatchDate: matchDate, HomeTeamID: home.ID, AwayTeamID: away.ID}

	existing, found, err := s.matchRepo.GetBySemanticKey(ctx, key)
	if err != nil {
		return promoteOutcome{kind: promoteTransient, detail: err.Error()}
	}
	if !found && o.SourceNativeMatchKey != "" {
		existing, found, err = s.matchRepo.GetBySourceKey(ctx, o.SourcePlatform, o.SourceNativeMatchKey)
		if err != nil {
			return promoteOutcome{kind: promoteTransient, detail: err.Error()}
		}
	}

	if found {
		if !match.ShouldReplaceScores(existing, o.HomeScore, o.AwayScore, o.ObservedAt) {
			return promoteOutcome{kind: promoteSkipped}
		}
		if dryRun {
			return promoteOutcome{kind: promoteUpdated}
		}
		if err := s.matchRepo.UpdateScores(ctx, existing.ID, o.HomeScore, o.AwayScore, o.ObservedAt); err != nil {
			return promoteOutcome{kind: promoteTransient, detail: err.Error()}
		}
		return promoteOutcome{kind: promoteUpdated}
	}

	if dryRun {
		return promoteOutcome{kind: promoteInserted}
	}

	newID, err := s.idGen.NewID()
	if err != nil {
		return promoteOutcome{kind: promoteTransient, detail: err.Error()}
	}

	seasonCode := ""
	if sea, err := season.Parse(o.Season); err == nil {
		seasonCode = sea.Code()
	}

	created := match.Match{
		ID:             newID,
		MatchDate:      matchDate,
		HomeTeamID:     home.ID,
		AwayTeamID:     away.ID,
		HomeScore:      o.HomeScore,
		AwayScore:      o.AwayScore,
		LeagueID:       leagueID,
		TournamentID:   tournamentID,
		SeasonCode:     seasonCode,
		SourcePlatform: o.SourcePlatform,
		SourceMatchKey: o.SourceNativeMatchKey,
		ObservedAt:     o.ObservedAt,
	}
	if err := created.Validate(); err != nil {
		return promoteOutcome{kind: promoteRejected, reasonCode: staging.ReasonInvalidPayload, detail: err.Error()}
	}
	if err := s.matchRepo.Insert(ctx, created); err != nil {
		return promoteOutcome{kind: promoteTransient, detail: err.Error()}
	}
	if err := s.teamRepo.IncrementMatchesPlayed(ctx, []string{home.ID, away.ID}, 1); err != nil {
		s.logger.ErrorContext(ctx, "bump matches played", "match_id", created.ID, "error", err)
	}
	return promoteOutcome{kind: promoteInserted}
}

// resolveEventLink maps the observation's source event id onto a league or
// tournament. A missing mapping leaves the match unlinked, never rejected; a
// later reconciliation pass can still claim it.
func (s *PromotionService) resolveEventLink(ctx context.Context, o staging.MatchObservation) (leagueID, tournamentID string, err error) {
	if o.SourceEventID == "" {
		return "", "", nil
	}

	for _, entityType := range []string{registry.EntityLeague, registry.EntityTournament} {
		entityID, lookupErr := s.registry.Lookup(ctx, registry.SourceRef{
			EntityType:     entityType,
			SourcePlatform: o.SourcePlatform,
			SourceNativeID: o.SourceEventID,
		})
		if errors.Is(lookupErr, ErrNotFound) {
			continue
		}
		if lookupErr != nil {
			return "", "", lookupErr
		}
		if entityType == registry.EntityLeague {
			return entityID, "", nil
		}
		return "", entityID, nil
	}
	return "", "", nil
}

func classifyResolution(err error, rawName string) (promoteOutcome, bool) {
	if err == nil {
		return promoteOutcome{}, false
	}
	if errors.Is(err, ErrNoResolution) || errors.Is(err, ErrInvalidInput) {
		return promoteOutcome{
			kind:       promoteRejected,
			reasonCode: staging.ReasonResolutionFailed,
			detail:     fmt.Sprintf("resolve %q: %v", rawName, err),
		}, true
	}
	return promoteOutcome{kind: promoteTransient, detail: err.Error()}, true
}

func (s *PromotionService) sameCanonicalName(a, b string) bool {
	tokens := s.resolver.Policy().StrippedTokens
	return team.ParseRawName(a, tokens).NormalizedName == team.ParseRawName(b, tokens).NormalizedName
}

func (s *PromotionService) resolveInput(o staging.MatchObservation, rawName string, dryRun bool) ResolveTeamInput {
	sea, _ := season.Parse(o.Season)
	return ResolveTeamInput{
		RawName:        rawName,
		SourcePlatform: o.SourcePlatform,
		State:          o.State,
		Season:         sea,
		DryRun:         dryRun,
	}
}

// PromoteStandings resolves staged standings rows onto canonical teams and
// replaces their cached record columns.
func (s *PromotionService) PromoteStandings(ctx context.Context, batchSize int, dryRun bool) (PromoteResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PromotionService.PromoteStandings")
	defer span.End()

	if batchSize <= 0 {
		batchSize = defaultPromoteBatchSize
	}

	obs, err := s.stagingRepo.FetchUnprocessedStandings(ctx, batchSize)
	if err != nil {
		return PromoteResult{}, fmt.Errorf("fetch unprocessed standings: %w", err)
	}

	result := PromoteResult{Fetched: len(obs), DryRun: dryRun}
	processed := make([]int64, 0, len(obs))
	for _, o := range obs {
		sea, _ := season.Parse(o.Season)
		resolved, err := s.resolver.ResolveTeam(ctx, ResolveTeamInput{
			RawName:        o.TeamRaw,
			SourcePlatform: o.SourcePlatform,
			State:          o.State,
			Season:         sea,
			DryRun:         dryRun,
		})
		if err != nil {
			if dryRun && errors.Is(err, ErrNoResolution) {
				// A real run would create the team and apply the record.
				result.WouldCreateTeams++
				result.Updated++
				continue
			}
			if errors.Is(err, ErrNoResolution) || errors.Is(err, ErrInvalidInput) {
				result.Rejected++
				result.Rejections = append(result.Rejections, PromotionRejection{
					ObservationID: o.ID,
					ReasonCode:    staging.ReasonResolutionFailed,
					Detail:        strings.TrimSpace(err.Error()),
				})
				processed = append(processed, o.ID)
				continue
			}
			result.Transient++
			continue
		}

		if !dryRun {
			agg := team.Aggregates{
				Wins:         o.Wins,
				Losses:       o.Losses,
				Ties:         o.Ties,
				GoalsFor:     o.GoalsFor,
				GoalsAgainst: o.GoalsAgainst,
				Points:       o.Points,
			}
			if err := s.teamRepo.UpdateAggregates(ctx, resolved.ID, agg); err != nil {
				result.Transient++
				continue
			}
		}
		result.Updated++
		processed = append(processed, o.ID)
	}

	if !dryRun && len(processed) > 0 {
		if err := s.stagingRepo.MarkStandingsProcessed(ctx, processed); err != nil {
			return result, fmt.Errorf("mark standings processed: %w", err)
		}
	}
	return result, nil
}
