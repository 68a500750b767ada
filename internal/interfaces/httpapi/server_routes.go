package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /healthz", h.Healthz)
}

// Ingest routes are for scrapers. They share the job token because the
// scrapers run inside the same trust boundary as the scheduler.
func registerIngestRoutes(mux *http.ServeMux, h *Handler, token string) {
	guarded := func(handler http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(token, handler)
	}

	mux.Handle("POST /v1/staging/matches", guarded(h.StageMatches))
	mux.Handle("POST /v1/staging/standings", guarded(h.StageStandings))
	mux.Handle("GET /v1/staging/rejected", guarded(h.ListRejectedMatches))
}

func registerJobRoutes(mux *http.ServeMux, h *Handler, token string) {
	guarded := func(handler http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(token, handler)
	}

	mux.Handle("POST /v1/internal/jobs/promote", guarded(h.RunPromoteJob))
	mux.Handle("POST /v1/internal/jobs/promote-standings", guarded(h.RunPromoteStandingsJob))
	mux.Handle("GET /v1/internal/jobs/audit", guarded(h.RunAuditJob))

	mux.Handle("POST /v1/internal/repairs/reclassify-event", guarded(h.ReclassifyEventKind))
	mux.Handle("POST /v1/internal/repairs/relink-team", guarded(h.RelinkMisassignedTeam))
	mux.Handle("POST /v1/internal/repairs/recompute-aggregates", guarded(h.RecomputeTeamAggregates))
	mux.Handle("POST /v1/internal/repairs/backfill-legacy", guarded(h.BackfillFromLegacy))

	mux.Handle("POST /v1/internal/teams/resolve", guarded(h.ResolveTeam))

	mux.Handle("POST /v1/internal/registry/mappings", guarded(h.RegisterMapping))
	mux.Handle("POST /v1/internal/registry/mappings/reassign", guarded(h.ReassignMapping))
	mux.Handle("GET /v1/internal/registry/mappings/{entityType}/{platform}/{nativeID}", guarded(h.LookupMapping))
	mux.Handle("GET /v1/internal/registry/orphans", guarded(h.ListOrphanedMappings))
}
