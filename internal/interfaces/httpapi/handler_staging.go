package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/season"
	"github.com/pitchrank/pitchrank/internal/domain/staging"
	"github.com/pitchrank/pitchrank/internal/usecase"
)

type stageMatchPayload struct {
	SourcePlatform       string          `json:"source_platform" validate:"required"`
	SourceNativeMatchKey string          `json:"source_native_match_key"`
	SourceEventID        string          `json:"source_event_id"`
	Season               string          `json:"season"`
	MatchDate            string          `json:"match_date" validate:"omitempty,datetime=2006-01-02"`
	HomeTeamRaw          string          `json:"home_team_raw" validate:"required"`
	AwayTeamRaw          string          `json:"away_team_raw" validate:"required"`
	HomeScore            *int            `json:"home_score" validate:"omitempty,min=0"`
	AwayScore            *int            `json:"away_score" validate:"omitempty,min=0"`
	State                string          `json:"state"`
	Payload              json.RawMessage `json:"payload"`
}

type stageMatchesRequest struct {
	Observations []stageMatchPayload `json:"observations" validate:"required,min=1,max=1000,dive"`
}

func (p stageMatchPayload) toObservation() (staging.MatchObservation, error) {
	obs := staging.MatchObservation{
		SourcePlatform:       p.SourcePlatform,
		SourceNativeMatchKey: p.SourceNativeMatchKey,
		SourceEventID:        p.SourceEventID,
		Season:               p.Season,
		HomeTeamRaw:          p.HomeTeamRaw,
		AwayTeamRaw:          p.AwayTeamRaw,
		HomeScore:            p.HomeScore,
		AwayScore:            p.AwayScore,
		State:                p.State,
		Payload:              p.Payload,
	}
	if p.MatchDate != "" {
		date, err := time.Parse("2006-01-02", p.MatchDate)
		if err != nil {
			return staging.MatchObservation{}, fmt.Errorf("%w: match date %q", usecase.ErrInvalidInput, p.MatchDate)
		}
		obs.MatchDate = &date
	}
	return obs, nil
}

func (h *Handler) StageMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StageMatches")
	defer span.End()

	var payload stageMatchesRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	obs := make([]staging.MatchObservation, 0, len(payload.Observations))
	for _, p := range payload.Observations {
		o, err := p.toObservation()
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		obs = append(obs, o)
	}

	result, err := h.staging.StageMatches(ctx, obs)
	if err != nil {
		h.logger.WarnContext(ctx, "stage matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, result)
}

type stageStandingPayload struct {
	SourcePlatform string `json:"source_platform" validate:"required"`
	SourceEventID  string `json:"source_event_id"`
	Season         string `json:"season"`
	TeamRaw        string `json:"team_raw" validate:"required"`
	State          string `json:"state"`
	Wins           int    `json:"wins" validate:"min=0"`
	Losses         int    `json:"losses" validate:"min=0"`
	Ties           int    `json:"ties" validate:"min=0"`
	GoalsFor       int    `json:"goals_for" validate:"min=0"`
	GoalsAgainst   int    `json:"goals_against" validate:"min=0"`
	Points         int    `json:"points" validate:"min=0"`
}

type stageStandingsRequest struct {
	Standings []stageStandingPayload `json:"standings" validate:"required,min=1,max=1000,dive"`
}

func (h *Handler) StageStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StageStandings")
	defer span.End()

	var payload stageStandingsRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	obs := make([]staging.StandingObservation, 0, len(payload.Standings))
	for _, p := range payload.Standings {
		obs = append(obs, staging.StandingObservation{
			SourcePlatform: p.SourcePlatform,
			SourceEventID:  p.SourceEventID,
			Season:         p.Season,
			TeamRaw:        p.TeamRaw,
			State:          p.State,
			Wins:           p.Wins,
			Losses:         p.Losses,
			Ties:           p.Ties,
			GoalsFor:       p.GoalsFor,
			GoalsAgainst:   p.GoalsAgainst,
			Points:         p.Points,
		})
	}

	result, err := h.staging.StageStandings(ctx, obs)
	if err != nil {
		h.logger.WarnContext(ctx, "stage standings failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, result)
}

type rejectedMatchResponse struct {
	ObservationID  int64  `json:"observation_id"`
	SourcePlatform string `json:"source_platform"`
	SourceEventID  string `json:"source_event_id,omitempty"`
	MatchDate      string `json:"match_date,omitempty"`
	HomeTeamRaw    string `json:"home_team_raw"`
	AwayTeamRaw    string `json:"away_team_raw"`
	ReasonCode     string `json:"reason_code"`
	RejectedAt     string `json:"rejected_at"`
}

func (h *Handler) ListRejectedMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRejectedMatches")
	defer span.End()

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be between 1 and 1000", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	rejected, err := h.staging.ListRejected(ctx, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]rejectedMatchResponse, 0, len(rejected))
	for _, rej := range rejected {
		item := rejectedMatchResponse{
			ObservationID:  rej.ID,
			SourcePlatform: rej.SourcePlatform,
			SourceEventID:  rej.SourceEventID,
			HomeTeamRaw:    rej.HomeTeamRaw,
			AwayTeamRaw:    rej.AwayTeamRaw,
			ReasonCode:     rej.ReasonCode,
			RejectedAt:     rej.RejectedAt.UTC().Format(time.RFC3339),
		}
		if rej.MatchDate != nil {
			item.MatchDate = rej.MatchDate.Format("2006-01-02")
		}
		out = append(out, item)
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

type resolveTeamRequest struct {
	RawName        string `json:"raw_name" validate:"required"`
	SourcePlatform string `json:"source_platform" validate:"required"`
	SourceNativeID string `json:"source_native_id"`
	State          string `json:"state"`
	Gender         string `json:"gender" validate:"omitempty,oneof=B G"`
	AgeGroup       string `json:"age_group"`
	Season         string `json:"season"`
	DryRun         bool   `json:"dry_run"`
}

type resolveTeamResponse struct {
	TeamID         string   `json:"team_id"`
	Name           string   `json:"name"`
	NormalizedName string   `json:"normalized_name"`
	State          string   `json:"state,omitempty"`
	AgeGroup       string   `json:"age_group,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	BirthYear      *int     `json:"birth_year,omitempty"`
	Aliases        []string `json:"aliases,omitempty"`
	MatchesPlayed  int      `json:"matches_played"`
}

func (h *Handler) ResolveTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveTeam")
	defer span.End()

	var payload resolveTeamRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.ResolveTeamInput{
		RawName:        payload.RawName,
		SourcePlatform: payload.SourcePlatform,
		SourceNativeID: payload.SourceNativeID,
		State:          payload.State,
		Gender:         payload.Gender,
		AgeGroup:       payload.AgeGroup,
		DryRun:         payload.DryRun,
	}
	if payload.Season != "" {
		parsed, err := season.Parse(payload.Season)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
			return
		}
		input.Season = parsed
	}

	resolved, err := h.resolver.ResolveTeam(ctx, input)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resolveTeamResponse{
		TeamID:         resolved.ID,
		Name:           resolved.Name,
		NormalizedName: resolved.NormalizedName,
		State:          resolved.State,
		AgeGroup:       resolved.AgeGroup,
		Gender:         resolved.Gender,
		BirthYear:      resolved.BirthYear,
		Aliases:        resolved.Aliases,
		MatchesPlayed:  resolved.MatchesPlayed,
	})
}
