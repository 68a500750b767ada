package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitchrank/pitchrank/internal/domain/registry"
	"github.com/pitchrank/pitchrank/internal/platform/logging"
)

// RegistryService owns the source-id to canonical-id mapping. Registration
// is idempotent; pointing an already-mapped source ref at a different entity
// is a conflict that requires an explicit Reassign.
type RegistryService struct {
	repo   registry.Repository
	logger *logging.Logger
}

func NewRegistryService(repo registry.Repository, logger *logging.Logger) *RegistryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RegistryService{repo: repo, logger: logger}
}

func (s *RegistryService) Lookup(ctx context.Context, ref registry.SourceRef) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.Lookup")
	defer span.End()

	ref = cleanSourceRef(ref)
	if err := ref.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	mapping, found, err := s.repo.Get(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("lookup registry mapping: %w", err)
	}
	if !found {
		return "", fmt.Errorf("%w: no mapping for %s/%s/%s", ErrNotFound, ref.EntityType, ref.SourcePlatform, ref.SourceNativeID)
	}
	return mapping.EntityID, nil
}

// Register binds a source ref to an entity. Re-registering the same binding
// is a no-op; a different target returns ErrConflict.
func (s *RegistryService) Register(ctx context.Context, m registry.Mapping) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.Register")
	defer span.End()

	m.SourceRef = cleanSourceRef(m.SourceRef)
	m.EntityID = strings.TrimSpace(m.EntityID)
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, found, err := s.repo.Get(ctx, m.SourceRef)
	if err != nil {
		return fmt.Errorf("check registry mapping: %w", err)
	}
	if found {
		if existing.EntityID == m.EntityID {
			return nil
		}
		return fmt.Errorf("%w: %s/%s/%s already maps to %s", ErrConflict,
			m.EntityType, m.SourcePlatform, m.SourceNativeID, existing.EntityID)
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return fmt.Errorf("create registry mapping: %w", err)
	}
	return nil
}

func (s *RegistryService) Reassign(ctx context.Context, ref registry.SourceRef, entityID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.Reassign")
	defer span.End()

	ref = cleanSourceRef(ref)
	entityID = strings.TrimSpace(entityID)
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if entityID == "" {
		return fmt.Errorf("%w: entity id is required", ErrInvalidInput)
	}

	_, found, err := s.repo.Get(ctx, ref)
	if err != nil {
		return fmt.Errorf("check registry mapping: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: no mapping for %s/%s/%s", ErrNotFound, ref.EntityType, ref.SourcePlatform, ref.SourceNativeID)
	}

	if err := s.repo.Reassign(ctx, ref, entityID); err != nil {
		return fmt.Errorf("reassign registry mapping: %w", err)
	}

	s.logger.InfoContext(ctx, "registry mapping reassigned",
		"entity_type", ref.EntityType,
		"source_platform", ref.SourcePlatform,
		"source_native_id", ref.SourceNativeID,
		"entity_id", entityID,
	)
	return nil
}

func (s *RegistryService) Remove(ctx context.Context, ref registry.SourceRef) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.Remove")
	defer span.End()

	ref = cleanSourceRef(ref)
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.Delete(ctx, ref); err != nil {
		return fmt.Errorf("delete registry mapping: %w", err)
	}
	return nil
}

// ListOrphans enumerates mappings whose canonical entity no longer exists.
func (s *RegistryService) ListOrphans(ctx context.Context, entityType string) ([]registry.Mapping, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.ListOrphans")
	defer span.End()

	entityType = strings.TrimSpace(strings.ToLower(entityType))
	if !registry.ValidEntityType(entityType) {
		return nil, fmt.Errorf("%w: entity type %q is invalid", ErrInvalidInput, entityType)
	}

	orphans, err := s.repo.ListOrphans(ctx, entityType)
	if err != nil {
		return nil, fmt.Errorf("list orphaned mappings: %w", err)
	}
	return orphans, nil
}

func cleanSourceRef(ref registry.SourceRef) registry.SourceRef {
	ref.EntityType = strings.TrimSpace(strings.ToLower(ref.EntityType))
	ref.SourcePlatform = strings.TrimSpace(strings.ToLower(ref.SourcePlatform))
	ref.SourceNativeID = strings.TrimSpace(ref.SourceNativeID)
	return ref
}
