package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pitchrank/pitchrank/internal/domain/registry"
)

type RegistryRepository struct {
	mu          sync.RWMutex
	mappings    map[registry.SourceRef]string
	legacyLinks []registry.Mapping

	teams  *TeamRepository
	events *EventRepository
}

func NewRegistryRepository(teams *TeamRepository, events *EventRepository) *RegistryRepository {
	return &RegistryRepository{
		mappings: make(map[registry.SourceRef]string),
		teams:    teams,
		events:   events,
	}
}

func (r *RegistryRepository) Get(_ context.Context, ref registry.SourceRef) (registry.Mapping, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entityID, ok := r.mappings[ref]
	if !ok {
		return registry.Mapping{}, false, nil
	}
	return registry.Mapping{SourceRef: ref, EntityID: entityID}, true, nil
}

func (r *RegistryRepository) Create(_ context.Context, m registry.Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mappings[m.SourceRef]; exists {
		return fmt.Errorf("mapping for %s/%s/%s already exists", m.EntityType, m.SourcePlatform, m.SourceNativeID)
	}
	r.mappings[m.SourceRef] = m.EntityID
	return nil
}

func (r *RegistryRepository) Reassign(_ context.Context, ref registry.SourceRef, entityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mappings[ref]; !exists {
		return fmt.Errorf("mapping for %s/%s/%s does not exist", ref.EntityType, ref.SourcePlatform, ref.SourceNativeID)
	}
	r.mappings[ref] = entityID
	return nil
}

func (r *RegistryRepository) Delete(_ context.Context, ref registry.SourceRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.mappings, ref)
	return nil
}

func (r *RegistryRepository) ListOrphans(ctx context.Context, entityType string) ([]registry.Mapping, error) {
	r.mu.RLock()
	snapshot := make([]registry.Mapping, 0, len(r.mappings))
	for ref, entityID := range r.mappings {
		if ref.EntityType == entityType {
			snapshot = append(snapshot, registry.Mapping{SourceRef: ref, EntityID: entityID})
		}
	}
	r.mu.RUnlock()

	var out []registry.Mapping
	for _, m := range snapshot {
		exists, err := r.entityExists(ctx, m)
		if err != nil {
			return nil, err
		}
		if !exists {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceNativeID < out[j].SourceNativeID })
	return out, nil
}

func (r *RegistryRepository) entityExists(ctx context.Context, m registry.Mapping) (bool, error) {
	switch m.EntityType {
	case registry.EntityTeam:
		if r.teams == nil {
			return false, nil
		}
		_, found, err := r.teams.GetByID(ctx, m.EntityID)
		return found, err
	case registry.EntityLeague, registry.EntityTournament:
		if r.events == nil {
			return false, nil
		}
		return r.events.Exists(m.EntityType, m.EntityID), nil
	default:
		return false, fmt.Errorf("unknown entity type %q", m.EntityType)
	}
}

// SetLegacyTeamLinks seeds the deprecated-generation links BackfillFromLegacy reads.
func (r *RegistryRepository) SetLegacyTeamLinks(links []registry.Mapping) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.legacyLinks = append([]registry.Mapping(nil), links...)
}

func (r *RegistryRepository) ListLegacyTeamLinks(_ context.Context) ([]registry.Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]registry.Mapping(nil), r.legacyLinks...), nil
}
