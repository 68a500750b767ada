package httpapi

import (
	"fmt"
	"net/http"

	"github.com/pitchrank/pitchrank/internal/domain/registry"
	"github.com/pitchrank/pitchrank/internal/usecase"
)

type registerMappingRequest struct {
	EntityType     string `json:"entity_type" validate:"required,oneof=team league tournament"`
	SourcePlatform string `json:"source_platform" validate:"required"`
	SourceNativeID string `json:"source_native_id" validate:"required"`
	EntityID       string `json:"entity_id" validate:"required"`
}

func (h *Handler) RegisterMapping(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterMapping")
	defer span.End()

	var payload registerMappingRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	mapping := registry.Mapping{
		SourceRef: registry.SourceRef{
			EntityType:     payload.EntityType,
			SourcePlatform: payload.SourcePlatform,
			SourceNativeID: payload.SourceNativeID,
		},
		EntityID: payload.EntityID,
	}
	if err := h.registry.Register(ctx, mapping); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, mappingResponseFrom(mapping))
}

func (h *Handler) ReassignMapping(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReassignMapping")
	defer span.End()

	var payload registerMappingRequest
	if err := h.decodeAndValidate(ctx, r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	ref := registry.SourceRef{
		EntityType:     payload.EntityType,
		SourcePlatform: payload.SourcePlatform,
		SourceNativeID: payload.SourceNativeID,
	}
	if err := h.registry.Reassign(ctx, ref, payload.EntityID); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, mappingResponseFrom(registry.Mapping{
		SourceRef: ref,
		EntityID:  payload.EntityID,
	}))
}

type mappingResponse struct {
	EntityType     string `json:"entity_type"`
	SourcePlatform string `json:"source_platform"`
	SourceNativeID string `json:"source_native_id"`
	EntityID       string `json:"entity_id"`
}

func mappingResponseFrom(m registry.Mapping) mappingResponse {
	return mappingResponse{
		EntityType:     m.EntityType,
		SourcePlatform: m.SourcePlatform,
		SourceNativeID: m.SourceNativeID,
		EntityID:       m.EntityID,
	}
}

// LookupMapping resolves one provider-native reference from path values.
func (h *Handler) LookupMapping(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LookupMapping")
	defer span.End()

	ref := registry.SourceRef{
		EntityType:     r.PathValue("entityType"),
		SourcePlatform: r.PathValue("platform"),
		SourceNativeID: r.PathValue("nativeID"),
	}

	entityID, err := h.registry.Lookup(ctx, ref)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, mappingResponseFrom(registry.Mapping{
		SourceRef: ref,
		EntityID:  entityID,
	}))
}

func (h *Handler) ListOrphanedMappings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListOrphanedMappings")
	defer span.End()

	entityType := r.URL.Query().Get("entity_type")
	if !registry.ValidEntityType(entityType) {
		writeError(ctx, w, fmt.Errorf("%w: unknown entity type %q", usecase.ErrInvalidInput, entityType))
		return
	}

	orphans, err := h.registry.ListOrphans(ctx, entityType)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]mappingResponse, 0, len(orphans))
	for _, m := range orphans {
		out = append(out, mappingResponseFrom(m))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
