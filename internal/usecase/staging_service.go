package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/staging"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
)

// StagingService is the write side of the staging ledger. Scraper output
// enters here and nowhere else.
type StagingService struct {
	repo   staging.Repository
	policy MatchingPolicy
	logger *logging.Logger
	now    func() time.Time
}

func NewStagingService(repo staging.Repository, policy MatchingPolicy, logger *logging.Logger) *StagingService {
	if policy.StrippedTokens == nil {
		policy.StrippedTokens = team.DefaultStrippedTokens
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StagingService{
		repo:   repo,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

type StageMatchesResult struct {
	Received          int `json:"received"`
	Staged            int `json:"staged"`
	Invalid           int `json:"invalid"`
	DuplicateInBatch  int `json:"duplicate_in_batch"`
	DuplicateInLedger int `json:"duplicate_in_ledger"`
}

// StageMatches appends raw match observations. Rows duplicated within the
// batch (same date, normalized team pair, and scores) are suppressed before
// insertion; rows whose provider key is already staged are skipped by the
// ledger itself.
func (s *StagingService) StageMatches(ctx context.Context, obs []staging.MatchObservation) (StageMatchesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StagingService.StageMatches")
	defer span.End()

	result := StageMatchesResult{Received: len(obs)}
	if len(obs) == 0 {
		return result, fmt.Errorf("%w: observations are required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(obs))
	deduped := make([]staging.MatchObservation, 0, len(obs))
	for _, o := range obs {
		o.SourcePlatform = strings.TrimSpace(strings.ToLower(o.SourcePlatform))
		o.SourceNativeMatchKey = strings.TrimSpace(o.SourceNativeMatchKey)
		o.SourceEventID = strings.TrimSpace(o.SourceEventID)
		o.HomeTeamRaw = strings.TrimSpace(o.HomeTeamRaw)
		o.AwayTeamRaw = strings.TrimSpace(o.AwayTeamRaw)
		o.State = strings.TrimSpace(strings.ToUpper(o.State))
		if o.ObservedAt.IsZero() {
			o.ObservedAt = s.now()
		}

		if err := o.Validate(); err != nil {
			result.Invalid++
			s.logger.WarnContext(ctx, "invalid match observation skipped", "error", err)
			continue
		}

		key := s.batchKey(o)
		if _, dup := seen[key]; dup {
			result.DuplicateInBatch++
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, o)
	}

	if len(deduped) == 0 {
		return result, nil
	}

	inserted, err := s.repo.InsertMatches(ctx, deduped)
	if err != nil {
		return result, fmt.Errorf("stage match observations: %w", err)
	}
	result.Staged = inserted
	result.DuplicateInLedger = len(deduped) - inserted

	s.logger.InfoContext(ctx, "match observations staged",
		"received", result.Received,
		"staged", result.Staged,
		"duplicate_in_batch", result.DuplicateInBatch,
		"duplicate_in_ledger", result.DuplicateInLedger,
		"invalid", result.Invalid,
	)
	return result, nil
}

type StageStandingsResult struct {
	Received  int `json:"received"`
	Staged    int `json:"staged"`
	Invalid   int `json:"invalid"`
	Duplicate int `json:"duplicate"`
}

func (s *StagingService) StageStandings(ctx context.Context, obs []staging.StandingObservation) (StageStandingsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StagingService.StageStandings")
	defer span.End()

	result := StageStandingsResult{Received: len(obs)}
	if len(obs) == 0 {
		return result, fmt.Errorf("%w: observations are required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(obs))
	deduped := make([]staging.StandingObservation, 0, len(obs))
	for _, o := range obs {
		o.SourcePlatform = strings.TrimSpace(strings.ToLower(o.SourcePlatform))
		o.SourceEventID = strings.TrimSpace(o.SourceEventID)
		o.TeamRaw = strings.TrimSpace(o.TeamRaw)
		o.State = strings.TrimSpace(strings.ToUpper(o.State))
		if o.ObservedAt.IsZero() {
			o.ObservedAt = s.now()
		}

		if err := o.Validate(); err != nil {
			result.Invalid++
			s.logger.WarnContext(ctx, "invalid standing observation skipped", "error", err)
			continue
		}

		key := strings.Join([]string{
			o.SourcePlatform,
			o.SourceEventID,
			o.Season,
			team.Normalize(o.TeamRaw, s.policy.StrippedTokens),
		}, "|")
		if _, dup := seen[key]; dup {
			result.Duplicate++
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, o)
	}

	if len(deduped) == 0 {
		return result, nil
	}

	inserted, err := s.repo.InsertStandings(ctx, deduped)
	if err != nil {
		return result, fmt.Errorf("stage standing observations: %w", err)
	}
	result.Staged = inserted
	result.Duplicate += len(deduped) - inserted
	return result, nil
}

// ListRejected returns the most recently rejected observations for triage.
func (s *StagingService) ListRejected(ctx context.Context, limit int) ([]staging.RejectedMatch, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StagingService.ListRejected")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	rejected, err := s.repo.ListRejected(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list rejected observations: %w", err)
	}
	return rejected, nil
}

func (s *StagingService) batchKey(o staging.MatchObservation) string {
	date := "-"
	if o.MatchDate != nil {
		date = o.MatchDate.Format("2006-01-02")
	}
	return strings.Join([]string{
		date,
		team.Normalize(o.HomeTeamRaw, s.policy.StrippedTokens),
		team.Normalize(o.AwayTeamRaw, s.policy.StrippedTokens),
		scoreToken(o.HomeScore),
		scoreToken(o.AwayScore),
	}, "|")
}

func scoreToken(score *int) string {
	if score == nil {
		return "-"
	}
	return strconv.Itoa(*score)
}
