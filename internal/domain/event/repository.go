package event

import "context"

// Repository describes event persistence needs from use cases. Leagues and
// tournaments live in separate stores, so lookups are kind-scoped.
type Repository interface {
	GetByID(ctx context.Context, kind, id string) (Event, bool, error)
	Create(ctx context.Context, e Event) error
	// Delete removes an event row outright. Reclassification calls this on
	// the old kind once no match references it anymore.
	Delete(ctx context.Context, kind, id string) error
}
