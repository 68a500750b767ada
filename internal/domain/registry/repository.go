package registry

import "context"

// Repository describes registry persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context, ref SourceRef) (Mapping, bool, error)
	// Create fails when the source ref is already mapped, regardless of
	// target. Idempotency decisions live in the use case.
	Create(ctx context.Context, m Mapping) error
	Reassign(ctx context.Context, ref SourceRef, entityID string) error
	Delete(ctx context.Context, ref SourceRef) error
	// ListOrphans returns mappings whose canonical entity no longer exists,
	// in one scan over the mapping table.
	ListOrphans(ctx context.Context, entityType string) ([]Mapping, error)
}
