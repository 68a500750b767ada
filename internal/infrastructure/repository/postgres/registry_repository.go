package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pitchrank/pitchrank/internal/domain/registry"
	qb "github.com/pitchrank/pitchrank/internal/platform/querybuilder"
)

// RegistryRepository persists the source-id to canonical-id mapping in
// source_entity_map, keyed by (entity_type, source_platform,
// source_native_id).
type RegistryRepository struct {
	db *sqlx.DB
}

func NewRegistryRepository(db *sqlx.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

type registryTableModel struct {
	EntityType     string `db:"entity_type"`
	SourcePlatform string `db:"source_platform"`
	SourceNativeID string `db:"source_native_id"`
	EntityID       string `db:"entity_id"`
}

type registryInsertModel struct {
	EntityType     string `db:"entity_type"`
	SourcePlatform string `db:"source_platform"`
	SourceNativeID string `db:"source_native_id"`
	EntityID       string `db:"entity_id"`
}

func (row registryTableModel) toDomain() registry.Mapping {
	return registry.Mapping{
		SourceRef: registry.SourceRef{
			EntityType:     row.EntityType,
			SourcePlatform: row.SourcePlatform,
			SourceNativeID: row.SourceNativeID,
		},
		EntityID: row.EntityID,
	}
}

func refConditions(ref registry.SourceRef) []qb.Condition {
	return []qb.Condition{
		qb.Eq("entity_type", ref.EntityType),
		qb.Eq("source_platform", ref.SourcePlatform),
		qb.Eq("source_native_id", ref.SourceNativeID),
	}
}

func (r *RegistryRepository) Get(ctx context.Context, ref registry.SourceRef) (registry.Mapping, bool, error) {
	query, args, err := qb.Select("entity_type", "source_platform", "source_native_id", "entity_id").
		From("source_entity_map").
		Where(refConditions(ref)...).
		ToSQL()
	if err != nil {
		return registry.Mapping{}, false, fmt.Errorf("build select mapping query: %w", err)
	}

	var row registryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return registry.Mapping{}, false, nil
		}
		return registry.Mapping{}, false, fmt.Errorf("select mapping %s/%s/%s: %w",
			ref.EntityType, ref.SourcePlatform, ref.SourceNativeID, err)
	}
	return row.toDomain(), true, nil
}

func (r *RegistryRepository) Create(ctx context.Context, m registry.Mapping) error {
	model := registryInsertModel{
		EntityType:     m.EntityType,
		SourcePlatform: m.SourcePlatform,
		SourceNativeID: m.SourceNativeID,
		EntityID:       m.EntityID,
	}
	query, args, err := qb.InsertModel("source_entity_map", model, "")
	if err != nil {
		return fmt.Errorf("build insert mapping query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("mapping for %s/%s/%s already exists: %w",
				m.EntityType, m.SourcePlatform, m.SourceNativeID, err)
		}
		return fmt.Errorf("insert mapping %s/%s/%s: %w",
			m.EntityType, m.SourcePlatform, m.SourceNativeID, err)
	}
	return nil
}

func (r *RegistryRepository) Reassign(ctx context.Context, ref registry.SourceRef, entityID string) error {
	query, args, err := qb.Update("source_entity_map").
		Set("entity_id", entityID).
		SetExpr("updated_at", "NOW()").
		Where(refConditions(ref)...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reassign mapping query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("reassign mapping %s/%s/%s: %w",
			ref.EntityType, ref.SourcePlatform, ref.SourceNativeID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("mapping for %s/%s/%s does not exist",
			ref.EntityType, ref.SourcePlatform, ref.SourceNativeID)
	}
	return nil
}

func (r *RegistryRepository) Delete(ctx context.Context, ref registry.SourceRef) error {
	query, args, err := qb.DeleteFrom("source_entity_map").
		Where(refConditions(ref)...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete mapping query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete mapping %s/%s/%s: %w",
			ref.EntityType, ref.SourcePlatform, ref.SourceNativeID, err)
	}
	return nil
}

// ListOrphans scans the mapping table once, anti-joined against the entity
// table for the given type.
func (r *RegistryRepository) ListOrphans(ctx context.Context, entityType string) ([]registry.Mapping, error) {
	entityTable, err := entityTableForType(entityType)
	if err != nil {
		return nil, err
	}

	query, args, err := qb.Select("entity_type", "source_platform", "source_native_id", "entity_id").
		From("source_entity_map").
		Where(
			qb.Eq("entity_type", entityType),
			qb.Expr("NOT EXISTS (SELECT 1 FROM "+entityTable+" e WHERE e.id = source_entity_map.entity_id)"),
		).
		OrderBy("source_native_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build orphan scan query: %w", err)
	}

	var rows []registryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scan orphaned %s mappings: %w", entityType, err)
	}

	out := make([]registry.Mapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ListLegacyTeamLinks reads the deprecated V2 generation's team links for the
// registry backfill.
func (r *RegistryRepository) ListLegacyTeamLinks(ctx context.Context) ([]registry.Mapping, error) {
	query, args, err := qb.Select("source_platform", "source_native_id", "team_id").
		From("legacy_team_source_links").
		OrderBy("source_platform", "source_native_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build legacy links query: %w", err)
	}

	var rows []struct {
		SourcePlatform string `db:"source_platform"`
		SourceNativeID string `db:"source_native_id"`
		TeamID         string `db:"team_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select legacy team links: %w", err)
	}

	out := make([]registry.Mapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, registry.Mapping{
			SourceRef: registry.SourceRef{
				EntityType:     registry.EntityTeam,
				SourcePlatform: row.SourcePlatform,
				SourceNativeID: row.SourceNativeID,
			},
			EntityID: row.TeamID,
		})
	}
	return out, nil
}

func entityTableForType(entityType string) (string, error) {
	switch entityType {
	case registry.EntityTeam:
		return "teams", nil
	case registry.EntityLeague:
		return "leagues", nil
	case registry.EntityTournament:
		return "tournaments", nil
	default:
		return "", fmt.Errorf("unknown entity type %q", entityType)
	}
}
