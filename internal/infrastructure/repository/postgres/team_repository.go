package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pitchrank/pitchrank/internal/domain/team"
	qb "github.com/pitchrank/pitchrank/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team %s: %w", id, err)
	}
	return row.toDomain(), true, nil
}

func (r *TeamRepository) GetByCanonicalKey(ctx context.Context, key team.CanonicalKey) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("normalized_name", key.NormalizedName),
			qb.Eq("state", key.State),
			qb.Eq("age_group", key.AgeGroup),
			qb.Eq("gender", key.Gender),
		).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by key query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team by key %s: %w", key, err)
	}
	return row.toDomain(), true, nil
}

func (r *TeamRepository) ListPartition(ctx context.Context, p team.Partition) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("state", p.State),
			qb.Eq("age_group", p.AgeGroup),
			qb.Eq("gender", p.Gender),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select partition query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams in partition: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TeamRepository) ListByNamePrefix(ctx context.Context, prefix string) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Expr("normalized_name LIKE ? || '%'", prefix)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by prefix query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by prefix %q: %w", prefix, err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TeamRepository) ListDuplicateCanonicalKeys(ctx context.Context) ([]team.CanonicalKey, error) {
	query, args, err := qb.Select("normalized_name", "state", "age_group", "gender").
		From("teams").
		GroupBy("normalized_name", "state", "age_group", "gender").
		Having("COUNT(*) > 1").
		OrderBy("normalized_name", "state", "age_group", "gender").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build duplicate key scan query: %w", err)
	}

	var rows []struct {
		NormalizedName string `db:"normalized_name"`
		State          string `db:"state"`
		AgeGroup       string `db:"age_group"`
		Gender         string `db:"gender"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scan duplicate canonical keys: %w", err)
	}

	out := make([]team.CanonicalKey, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.CanonicalKey{
			NormalizedName: row.NormalizedName,
			Partition: team.Partition{
				State:    row.State,
				AgeGroup: row.AgeGroup,
				Gender:   row.Gender,
			},
		})
	}
	return out, nil
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) error {
	query, args, err := qb.InsertModel("teams", teamToInsertModel(t), "")
	if err != nil {
		return fmt.Errorf("build insert team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("team %s already exists: %w", t.ID, err)
		}
		return fmt.Errorf("insert team %s: %w", t.ID, err)
	}
	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, id string) error {
	query, args, err := qb.DeleteFrom("teams").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete team %s: %w", id, err)
	}
	return nil
}

func (r *TeamRepository) AddAlias(ctx context.Context, id, alias string) error {
	// A duplicate alias leaves the row untouched.
	query, args, err := qb.Update("teams").
		SetExpr("aliases", "array_append(aliases, ?)", alias).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Expr("NOT (? = ANY(aliases))", alias),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add alias query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add alias to team %s: %w", id, err)
	}
	return nil
}

func (r *TeamRepository) UpdateAggregates(ctx context.Context, id string, agg team.Aggregates) error {
	query, args, err := qb.Update("teams").
		Set("wins", agg.Wins).
		Set("losses", agg.Losses).
		Set("ties", agg.Ties).
		Set("goals_for", agg.GoalsFor).
		Set("goals_against", agg.GoalsAgainst).
		Set("points", agg.Points).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update aggregates query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update aggregates for team %s: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("team %s does not exist", id)
	}
	return nil
}

func (r *TeamRepository) IncrementMatchesPlayed(ctx context.Context, ids []string, delta int) error {
	if len(ids) == 0 {
		return nil
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}

	query, args, err := qb.Update("teams").
		SetExpr("matches_played", "matches_played + ?", delta).
		SetExpr("updated_at", "NOW()").
		Where(qb.In("id", values)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build increment matches played query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment matches played: %w", err)
	}
	return nil
}

func (r *TeamRepository) SetMatchesPlayed(ctx context.Context, id string, count int) error {
	query, args, err := qb.Update("teams").
		Set("matches_played", count).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set matches played query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set matches played for team %s: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("team %s does not exist", id)
	}
	return nil
}

func (r *TeamRepository) MatchesPlayedSnapshot(ctx context.Context) (map[string]int, error) {
	query, args, err := qb.Select("id", "matches_played").From("teams").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build matches played snapshot query: %w", err)
	}

	var rows []struct {
		ID            string `db:"id"`
		MatchesPlayed int    `db:"matches_played"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("snapshot matches played: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.ID] = row.MatchesPlayed
	}
	return out, nil
}
