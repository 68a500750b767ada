package httpapi

import (
	"net/http"

	"github.com/pitchrank/pitchrank/internal/usecase"
)

type promoteJobRequest struct {
	BatchSize  int  `json:"batch_size" validate:"omitempty,min=1,max=5000"`
	MaxWorkers int  `json:"max_workers" validate:"omitempty,min=1,max=64"`
	DryRun     bool `json:"dry_run"`
}

// RunPromoteJob drains one batch of staged match observations into the
// production ledger. Scrapers keep staging while this runs; only this job
// writes matches.
func (h *Handler) RunPromoteJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPromoteJob")
	defer span.End()

	var payload promoteJobRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.promotion.PromoteBatch(ctx, usecase.PromoteInput{
		BatchSize:  payload.BatchSize,
		MaxWorkers: payload.MaxWorkers,
		DryRun:     payload.DryRun,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "promote job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "promote job finished",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"rejected", result.Rejected,
		"dry_run", result.DryRun,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunPromoteStandingsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPromoteStandingsJob")
	defer span.End()

	var payload promoteJobRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.promotion.PromoteStandings(ctx, payload.BatchSize, payload.DryRun)
	if err != nil {
		h.logger.ErrorContext(ctx, "promote standings job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "promote standings job finished",
		"fetched", result.Fetched,
		"updated", result.Updated,
		"rejected", result.Rejected,
		"dry_run", result.DryRun,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}

// RunAuditJob scans for referential drift and reports findings without
// mutating anything.
func (h *Handler) RunAuditJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAuditJob")
	defer span.End()

	report, err := h.audit.Run(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	if !report.Clean() {
		h.logger.WarnContext(ctx, "audit found inconsistencies",
			"orphaned_mappings", len(report.OrphanedMappings),
			"duplicate_team_keys", len(report.DuplicateTeamKeys),
			"match_count_drift", len(report.MatchCountDrift),
		)
	}
	writeSuccess(ctx, w, http.StatusOK, report)
}
