package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pitchrank/pitchrank/internal/domain/registry"
	"github.com/pitchrank/pitchrank/internal/domain/season"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/platform/cache"
	"github.com/pitchrank/pitchrank/internal/platform/id"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
)

// MatchingPolicy is the one place fuzzy-matching knobs live.
type MatchingPolicy struct {
	SimilarityThreshold   float64
	StrippedTokens        []string
	RequireBirthYearMatch bool
}

func DefaultMatchingPolicy() MatchingPolicy {
	return MatchingPolicy{
		SimilarityThreshold:   team.DefaultSimilarityThreshold,
		StrippedTokens:        team.DefaultStrippedTokens,
		RequireBirthYearMatch: false,
	}
}

type ResolveTeamInput struct {
	RawName        string
	SourcePlatform string
	SourceNativeID string
	State          string
	Gender         string
	AgeGroup       string
	Season         season.Season
	// DryRun resolves against existing teams only and writes nothing: a miss
	// is ErrNoResolution instead of a create, and neither aliases nor
	// registry mappings are recorded.
	DryRun bool
}

// TeamResolverService maps raw provider team names onto canonical teams.
// Resolution order: registry fast path, exact canonical key, trigram fuzzy
// match within the state/age/gender partition, then create-on-miss.
type TeamResolverService struct {
	teamRepo team.Repository
	registry *RegistryService
	idGen    id.Generator
	cache    *cache.Store
	policy   MatchingPolicy
	logger   *logging.Logger
}

func NewTeamResolverService(
	teamRepo team.Repository,
	registrySvc *RegistryService,
	idGen id.Generator,
	resolutionCache *cache.Store,
	policy MatchingPolicy,
	logger *logging.Logger,
) *TeamResolverService {
	if policy.SimilarityThreshold <= 0 || policy.SimilarityThreshold > 1 {
		policy.SimilarityThreshold = team.DefaultSimilarityThreshold
	}
	if policy.StrippedTokens == nil {
		policy.StrippedTokens = team.DefaultStrippedTokens
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamResolverService{
		teamRepo: teamRepo,
		registry: registrySvc,
		idGen:    idGen,
		cache:    resolutionCache,
		policy:   policy,
		logger:   logger,
	}
}

func (s *TeamResolverService) Policy() MatchingPolicy {
	return s.policy
}

func (s *TeamResolverService) ResolveTeam(ctx context.Context, input ResolveTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamResolverService.ResolveTeam")
	defer span.End()

	rawName := strings.TrimSpace(input.RawName)
	if rawName == "" {
		return team.Team{}, fmt.Errorf("%w: raw team name is required", ErrInvalidInput)
	}
	input.SourcePlatform = strings.TrimSpace(strings.ToLower(input.SourcePlatform))
	input.SourceNativeID = strings.TrimSpace(input.SourceNativeID)

	if resolved, ok, err := s.resolveFromRegistry(ctx, input); err != nil {
		return team.Team{}, err
	} else if ok {
		return resolved, nil
	}

	attrs := team.ParseRawName(rawName, s.policy.StrippedTokens)
	if attrs.NormalizedName == "" {
		return team.Team{}, fmt.Errorf("%w: team name %q normalizes to nothing", ErrInvalidInput, rawName)
	}

	key := s.canonicalKey(input, attrs)
	birthYear := s.birthYear(input, attrs)

	resolved, err := s.resolveByKey(ctx, input, rawName, key, birthYear)
	if err != nil {
		return team.Team{}, err
	}

	if input.SourceNativeID != "" && !input.DryRun {
		err := s.registry.Register(ctx, registry.Mapping{
			SourceRef: registry.SourceRef{
				EntityType:     registry.EntityTeam,
				SourcePlatform: input.SourcePlatform,
				SourceNativeID: input.SourceNativeID,
			},
			EntityID: resolved.ID,
		})
		if errors.Is(err, ErrConflict) {
			s.logger.WarnContext(ctx, "team source id already mapped elsewhere",
				"source_platform", input.SourcePlatform,
				"source_native_id", input.SourceNativeID,
				"resolved_team_id", resolved.ID,
			)
		} else if err != nil {
			return team.Team{}, err
		}
	}

	return resolved, nil
}

func (s *TeamResolverService) resolveFromRegistry(ctx context.Context, input ResolveTeamInput) (team.Team, bool, error) {
	if input.SourceNativeID == "" || input.SourcePlatform == "" {
		return team.Team{}, false, nil
	}

	entityID, err := s.registry.Lookup(ctx, registry.SourceRef{
		EntityType:     registry.EntityTeam,
		SourcePlatform: input.SourcePlatform,
		SourceNativeID: input.SourceNativeID,
	})
	if errors.Is(err, ErrNotFound) {
		return team.Team{}, false, nil
	}
	if err != nil {
		return team.Team{}, false, err
	}

	resolved, found, err := s.teamRepo.GetByID(ctx, entityID)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("load mapped team: %w", err)
	}
	if !found {
		s.logger.WarnContext(ctx, "registry mapping points to missing team",
			"source_platform", input.SourcePlatform,
			"source_native_id", input.SourceNativeID,
			"team_id", entityID,
		)
		return team.Team{}, false, nil
	}
	return resolved, true, nil
}

func (s *TeamResolverService) resolveByKey(ctx context.Context, input ResolveTeamInput, rawName string, key team.CanonicalKey, birthYear int) (team.Team, error) {
	loader := func(ctx context.Context) (any, error) {
		return s.matchOrCreate(ctx, input, rawName, key, birthYear)
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return team.Team{}, err
		}
		return value.(team.Team), nil
	}

	value, err := s.cache.GetOrLoad(ctx, "team:"+key.String(), loader)
	if err != nil {
		return team.Team{}, err
	}
	return value.(team.Team), nil
}

func (s *TeamResolverService) matchOrCreate(ctx context.Context, input ResolveTeamInput, rawName string, key team.CanonicalKey, birthYear int) (team.Team, error) {
	if exact, found, err := s.exactMatch(ctx, key, birthYear); err != nil {
		return team.Team{}, err
	} else if found {
		if input.DryRun {
			return exact, nil
		}
		return s.recordAlias(ctx, exact, rawName)
	}

	if fuzzy, found, err := s.fuzzyMatch(ctx, key, birthYear); err != nil {
		return team.Team{}, err
	} else if found {
		if input.DryRun {
			return fuzzy, nil
		}
		return s.recordAlias(ctx, fuzzy, rawName)
	}

	if input.DryRun {
		return team.Team{}, fmt.Errorf("%w: no canonical team for %q", ErrNoResolution, rawName)
	}
	return s.createTeam(ctx, rawName, key, birthYear)
}

func (s *TeamResolverService) exactMatch(ctx context.Context, key team.CanonicalKey, birthYear int) (team.Team, bool, error) {
	candidate, found, err := s.teamRepo.GetByCanonicalKey(ctx, key)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("lookup canonical key: %w", err)
	}
	if !found {
		return team.Team{}, false, nil
	}
	if !s.birthYearCompatible(birthYear, candidate.BirthYear) {
		return team.Team{}, false, nil
	}
	return candidate, true, nil
}

func (s *TeamResolverService) fuzzyMatch(ctx context.Context, key team.CanonicalKey, birthYear int) (team.Team, bool, error) {
	candidates, err := s.teamRepo.ListPartition(ctx, key.Partition)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("list partition candidates: %w", err)
	}

	var best team.Team
	bestScore := 0.0
	found := false
	for _, candidate := range candidates {
		if !s.birthYearCompatible(birthYear, candidate.BirthYear) {
			continue
		}
		score := team.Similarity(key.NormalizedName, candidate.NormalizedName)
		if score < s.policy.SimilarityThreshold {
			continue
		}
		if !found || score > bestScore || (score == bestScore && betterTieBreak(candidate, best)) {
			best = candidate
			bestScore = score
			found = true
		}
	}
	return best, found, nil
}

// betterTieBreak prefers the candidate with more matches played; equal
// records fall back to the smaller id so ties resolve deterministically.
func betterTieBreak(candidate, current team.Team) bool {
	if candidate.MatchesPlayed != current.MatchesPlayed {
		return candidate.MatchesPlayed > current.MatchesPlayed
	}
	return candidate.ID < current.ID
}

func (s *TeamResolverService) birthYearCompatible(incoming int, existing *int) bool {
	if incoming == 0 || existing == nil {
		if s.policy.RequireBirthYearMatch {
			return incoming == 0 && existing == nil
		}
		return true
	}
	return incoming == *existing
}

func (s *TeamResolverService) createTeam(ctx context.Context, rawName string, key team.CanonicalKey, birthYear int) (team.Team, error) {
	newID, err := s.idGen.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	created := team.Team{
		ID:             newID,
		Name:           rawName,
		NormalizedName: key.NormalizedName,
		State:          key.State,
		AgeGroup:       key.AgeGroup,
		Gender:         key.Gender,
		Aliases:        []string{rawName},
		Rating:         team.DefaultRating,
	}
	if birthYear > 0 {
		year := birthYear
		created.BirthYear = &year
	}
	if err := created.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.teamRepo.Create(ctx, created); err != nil {
		return team.Team{}, fmt.Errorf("create canonical team: %w", err)
	}

	s.logger.InfoContext(ctx, "canonical team created",
		"team_id", created.ID,
		"normalized_name", created.NormalizedName,
		"state", created.State,
		"age_group", created.AgeGroup,
		"gender", created.Gender,
	)
	return created, nil
}

func (s *TeamResolverService) recordAlias(ctx context.Context, resolved team.Team, rawName string) (team.Team, error) {
	for _, alias := range resolved.Aliases {
		if alias == rawName {
			return resolved, nil
		}
	}
	if err := s.teamRepo.AddAlias(ctx, resolved.ID, rawName); err != nil {
		return team.Team{}, fmt.Errorf("record team alias: %w", err)
	}
	resolved.Aliases = append(resolved.Aliases, rawName)
	return resolved, nil
}

func (s *TeamResolverService) canonicalKey(input ResolveTeamInput, attrs team.Attributes) team.CanonicalKey {
	gender := strings.TrimSpace(strings.ToUpper(input.Gender))
	if gender == "" {
		gender = attrs.Gender
	}

	ageGroup := strings.TrimSpace(strings.ToUpper(input.AgeGroup))
	if ageGroup == "" && attrs.BirthYear > 0 && input.Season.Valid() {
		ageGroup = input.Season.AgeGroup(attrs.BirthYear)
	}

	return team.CanonicalKey{
		NormalizedName: attrs.NormalizedName,
		Partition: team.Partition{
			State:    strings.TrimSpace(strings.ToUpper(input.State)),
			AgeGroup: ageGroup,
			Gender:   gender,
		},
	}
}

func (s *TeamResolverService) birthYear(input ResolveTeamInput, attrs team.Attributes) int {
	if attrs.BirthYear > 0 {
		return attrs.BirthYear
	}
	if input.AgeGroup != "" && input.Season.Valid() {
		return input.Season.BirthYearFor(input.AgeGroup)
	}
	return 0
}
