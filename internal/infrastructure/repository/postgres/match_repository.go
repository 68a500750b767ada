package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pitchrank/pitchrank/internal/domain/event"
	"github.com/pitchrank/pitchrank/internal/domain/match"
	"github.com/pitchrank/pitchrank/internal/platform/pgtx"
	qb "github.com/pitchrank/pitchrank/internal/platform/querybuilder"
)

// countByTeamQuery flattens home and away references before grouping, so a
// team's count covers both sides it played on.
const countByTeamQuery = `SELECT team_id, COUNT(*) AS played
FROM (
    SELECT home_team_id AS team_id FROM matches WHERE deleted_at IS NULL
    UNION ALL
    SELECT away_team_id FROM matches WHERE deleted_at IS NULL
) refs
GROUP BY team_id`

type MatchRepository struct {
	db     *sqlx.DB
	runner *pgtx.Runner
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db, runner: pgtx.New(db)}
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *MatchRepository) GetBySemanticKey(ctx context.Context, key match.SemanticKey) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("match_date", key.MatchDate),
			qb.Eq("home_team_id", key.HomeTeamID),
			qb.Eq("away_team_id", key.AwayTeamID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by key query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *MatchRepository) GetBySourceKey(ctx context.Context, platform, sourceKey string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("source_platform", platform),
			qb.Eq("source_match_key", sourceKey),
			qb.Ne("source_match_key", ""),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by source key query: %w", err)
	}
	return r.getOne(ctx, query, args)
}

func (r *MatchRepository) getOne(ctx context.Context, query string, args []any) (match.Match, bool, error) {
	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *MatchRepository) Insert(ctx context.Context, m match.Match) error {
	query, args, err := qb.InsertModel("matches", matchToInsertModel(m), "")
	if err != nil {
		return fmt.Errorf("build insert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("match for %s between %s and %s already exists: %w",
				m.MatchDate.Format("2006-01-02"), m.HomeTeamID, m.AwayTeamID, err)
		}
		return fmt.Errorf("insert match %s: %w", m.ID, err)
	}
	return nil
}

func (r *MatchRepository) UpdateScores(ctx context.Context, id string, homeScore, awayScore *int, observedAt time.Time) error {
	query, args, err := qb.Update("matches").
		Set("home_score", nullableInt(homeScore)).
		Set("away_score", nullableInt(awayScore)).
		Set("observed_at", observedAt).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update scores query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update scores for match %s: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("match %s does not exist", id)
	}
	return nil
}

func (r *MatchRepository) SoftDelete(ctx context.Context, id string) error {
	query, args, err := qb.Update("matches").
		SetExpr("deleted_at", "NOW()").
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build soft delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("soft delete match %s: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("match %s does not exist", id)
	}
	return nil
}

// reassignMatchTeamQuery rewrites whichever side references the old team.
// Both sides go through the same statement so a match where the team
// appears home in one run and away in another needs no branching here.
const reassignMatchTeamQuery = `UPDATE matches
SET home_team_id = CASE WHEN home_team_id = $1 THEN $2 ELSE home_team_id END,
    away_team_id = CASE WHEN away_team_id = $1 THEN $2 ELSE away_team_id END,
    updated_at = NOW()
WHERE id = $3 AND deleted_at IS NULL
  AND (home_team_id = $1 OR away_team_id = $1)`

func (r *MatchRepository) ReassignMatchTeam(ctx context.Context, matchID, fromTeamID, toTeamID string) error {
	return r.runner.Run(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, reassignMatchTeamQuery, fromTeamID, toTeamID, matchID)
		if err != nil {
			return fmt.Errorf("reassign match %s from %s to %s: %w", matchID, fromTeamID, toTeamID, err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return fmt.Errorf("match %s does not reference team %s", matchID, fromTeamID)
		}
		return nil
	})
}

func (r *MatchRepository) MoveEventLink(ctx context.Context, eventID, fromKind, toKind string) (int64, error) {
	fromColumn, err := linkColumnForKind(fromKind)
	if err != nil {
		return 0, err
	}
	toColumn, err := linkColumnForKind(toKind)
	if err != nil {
		return 0, err
	}
	if fromColumn == toColumn {
		return 0, fmt.Errorf("link move needs two distinct event kinds")
	}

	query, args, err := qb.Update("matches").
		Set(fromColumn, nil).
		Set(toColumn, eventID).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq(fromColumn, eventID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build move event link query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("move %s links for event %s: %w", fromKind, eventID, err)
	}
	moved, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count moved links: %w", err)
	}
	return moved, nil
}

func (r *MatchRepository) CountEventLinks(ctx context.Context, eventID, kind string) (int64, error) {
	column, err := linkColumnForKind(kind)
	if err != nil {
		return 0, err
	}

	query, args, err := qb.Select("COUNT(*)").From("matches").
		Where(qb.Eq(column, eventID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count event links query: %w", err)
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count %s links for event %s: %w", kind, eventID, err)
	}
	return count, nil
}

func (r *MatchRepository) ListByTeam(ctx context.Context, teamID string) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Expr("(home_team_id = ? OR away_team_id = ?)", teamID, teamID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("match_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches by team query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches for team %s: %w", teamID, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) CountByTeam(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		TeamID string `db:"team_id"`
		Played int    `db:"played"`
	}
	if err := r.db.SelectContext(ctx, &rows, countByTeamQuery); err != nil {
		return nil, fmt.Errorf("count matches per team: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.TeamID] = row.Played
	}
	return out, nil
}

func linkColumnForKind(kind string) (string, error) {
	switch kind {
	case event.KindLeague:
		return "league_id", nil
	case event.KindTournament:
		return "tournament_id", nil
	default:
		return "", fmt.Errorf("unknown event kind %q", kind)
	}
}
