package memory

import (
	"context"
	"sync"

	"github.com/pitchrank/pitchrank/internal/domain/event"
)

type eventKey struct {
	kind string
	id   string
}

type EventRepository struct {
	mu     sync.RWMutex
	events map[eventKey]event.Event
}

func NewEventRepository(events []event.Event) *EventRepository {
	byKey := make(map[eventKey]event.Event, len(events))
	for _, item := range events {
		byKey[eventKey{kind: item.Kind, id: item.ID}] = item
	}

	return &EventRepository{events: byKey}
}

func (r *EventRepository) GetByID(_ context.Context, kind, id string) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.events[eventKey{kind: kind, id: id}]
	return item, ok, nil
}

// Create is a no-op when the same (kind, id) row already exists, matching
// the Postgres ON CONFLICT DO NOTHING insert reclassification leans on.
func (r *EventRepository) Create(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := eventKey{kind: e.Kind, id: e.ID}
	if _, exists := r.events[key]; exists {
		return nil
	}
	r.events[key] = e
	return nil
}

func (r *EventRepository) Delete(_ context.Context, kind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.events, eventKey{kind: kind, id: id})
	return nil
}

// Exists reports whether any kind holds the id. The registry repository
// uses it for orphan scans.
func (r *EventRepository) Exists(kind, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.events[eventKey{kind: kind, id: id}]
	return ok
}
