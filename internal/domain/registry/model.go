package registry

import (
	"fmt"
	"strings"
)

const (
	EntityTeam       = "team"
	EntityLeague     = "league"
	EntityTournament = "tournament"
)

// SourceRef identifies an entity as one provider knows it.
type SourceRef struct {
	EntityType     string
	SourcePlatform string
	SourceNativeID string
}

// Mapping binds a provider-native identifier to a canonical entity. The
// registry is the only place provider IDs appear; everything downstream
// works with the canonical EntityID.
type Mapping struct {
	SourceRef
	EntityID string
}

func ValidEntityType(t string) bool {
	switch t {
	case EntityTeam, EntityLeague, EntityTournament:
		return true
	default:
		return false
	}
}

func (r SourceRef) Validate() error {
	if !ValidEntityType(r.EntityType) {
		return fmt.Errorf("entity type %q is invalid", r.EntityType)
	}
	if strings.TrimSpace(r.SourcePlatform) == "" {
		return fmt.Errorf("source platform is required")
	}
	if strings.TrimSpace(r.SourceNativeID) == "" {
		return fmt.Errorf("source native id is required")
	}

	return nil
}

func (m Mapping) Validate() error {
	if err := m.SourceRef.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(m.EntityID) == "" {
		return fmt.Errorf("entity id is required")
	}

	return nil
}
