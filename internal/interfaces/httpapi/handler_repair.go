package httpapi

import (
	"net/http"

	"github.com/pitchrank/pitchrank/internal/usecase"
)

// Repair requests default to dry runs. A write needs both confirm=true and
// an actor to attribute the change to.

type reclassifyEventRequest struct {
	SourcePlatform string `json:"source_platform" validate:"required"`
	SourceEventID  string `json:"source_event_id" validate:"required"`
	FromKind       string `json:"from_kind" validate:"required,oneof=league tournament"`
	ToKind         string `json:"to_kind" validate:"required,oneof=league tournament"`
	Confirm        bool   `json:"confirm"`
	Actor          string `json:"actor" validate:"required_if=Confirm true"`
}

func (h *Handler) ReclassifyEventKind(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReclassifyEventKind")
	defer span.End()

	var payload reclassifyEventRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.repair.ReclassifyEventKind(ctx, usecase.ReclassifyEventInput{
		SourcePlatform: payload.SourcePlatform,
		SourceEventID:  payload.SourceEventID,
		FromKind:       payload.FromKind,
		ToKind:         payload.ToKind,
		Auth:           writeAuthorization(payload.Confirm, payload.Actor),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "reclassify event failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, report)
}

type relinkTeamRequest struct {
	WrongTeamID    string `json:"wrong_team_id" validate:"required"`
	CorrectTeamID  string `json:"correct_team_id" validate:"required"`
	SourcePlatform string `json:"source_platform"`
	Confirm        bool   `json:"confirm"`
	Actor          string `json:"actor" validate:"required_if=Confirm true"`
}

func (h *Handler) RelinkMisassignedTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RelinkMisassignedTeam")
	defer span.End()

	var payload relinkTeamRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.repair.RelinkMisassignedTeam(ctx, usecase.RelinkTeamInput{
		WrongTeamID:    payload.WrongTeamID,
		CorrectTeamID:  payload.CorrectTeamID,
		SourcePlatform: payload.SourcePlatform,
		Auth:           writeAuthorization(payload.Confirm, payload.Actor),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "relink team failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, report)
}

type confirmRequest struct {
	Confirm bool   `json:"confirm"`
	Actor   string `json:"actor" validate:"required_if=Confirm true"`
}

func (h *Handler) RecomputeTeamAggregates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeTeamAggregates")
	defer span.End()

	var payload confirmRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.repair.RecomputeTeamAggregates(ctx, writeAuthorization(payload.Confirm, payload.Actor))
	if err != nil {
		h.logger.ErrorContext(ctx, "recompute aggregates failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) BackfillFromLegacy(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BackfillFromLegacy")
	defer span.End()

	var payload confirmRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.repair.BackfillFromLegacy(ctx, writeAuthorization(payload.Confirm, payload.Actor))
	if err != nil {
		h.logger.ErrorContext(ctx, "legacy backfill failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, report)
}
