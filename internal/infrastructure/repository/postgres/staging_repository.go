package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pitchrank/pitchrank/internal/domain/staging"
	"github.com/pitchrank/pitchrank/internal/platform/pgtx"
	qb "github.com/pitchrank/pitchrank/internal/platform/querybuilder"
)

const stagingMatchUpsertSuffix = `ON CONFLICT (source_platform, source_native_match_key) WHERE source_native_match_key <> ''
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    payload = EXCLUDED.payload,
    observed_at = EXCLUDED.observed_at,
    processed = false
WHERE staging_matches.home_score IS DISTINCT FROM EXCLUDED.home_score
   OR staging_matches.away_score IS DISTINCT FROM EXCLUDED.away_score
RETURNING (xmax = 0) AS inserted`

const stagingStandingUpsertSuffix = `ON CONFLICT (source_platform, source_event_id, season, team_raw)
DO UPDATE SET
    wins = EXCLUDED.wins,
    losses = EXCLUDED.losses,
    ties = EXCLUDED.ties,
    goals_for = EXCLUDED.goals_for,
    goals_against = EXCLUDED.goals_against,
    points = EXCLUDED.points,
    observed_at = EXCLUDED.observed_at,
    processed = false
WHERE (staging_standings.wins, staging_standings.losses, staging_standings.ties,
       staging_standings.goals_for, staging_standings.goals_against, staging_standings.points)
   IS DISTINCT FROM
      (EXCLUDED.wins, EXCLUDED.losses, EXCLUDED.ties,
       EXCLUDED.goals_for, EXCLUDED.goals_against, EXCLUDED.points)
RETURNING (xmax = 0) AS inserted`

type StagingRepository struct {
	db     *sqlx.DB
	runner *pgtx.Runner
}

func NewStagingRepository(db *sqlx.DB) *StagingRepository {
	return &StagingRepository{db: db, runner: pgtx.New(db)}
}

// InsertMatches appends observations inside one transaction. A row whose
// provider key is already staged refreshes the existing row and re-opens it
// for promotion when its scores changed, and is skipped otherwise; neither
// case counts as a new row.
func (r *StagingRepository) InsertMatches(ctx context.Context, obs []staging.MatchObservation) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	var inserted int
	err := r.runner.Run(ctx, func(tx *sqlx.Tx) error {
		inserted = 0
		for _, o := range obs {
			suffix := stagingMatchUpsertSuffix
			if o.SourceNativeMatchKey == "" {
				suffix = "RETURNING true AS inserted"
			}

			query, args, err := qb.InsertModel("staging_matches", stagingMatchToInsertModel(o), suffix)
			if err != nil {
				return fmt.Errorf("build insert observation query: %w", err)
			}

			var wasInsert bool
			err = tx.GetContext(ctx, &wasInsert, query, args...)
			if errors.Is(err, sql.ErrNoRows) {
				// Known key with unchanged scores.
				continue
			}
			if err != nil {
				return fmt.Errorf("insert observation %s/%s: %w", o.SourcePlatform, o.SourceNativeMatchKey, err)
			}
			if wasInsert {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *StagingRepository) FetchUnprocessedMatches(ctx context.Context, limit int) ([]staging.MatchObservation, error) {
	query, args, err := qb.Select("*").From("staging_matches").
		Where(qb.Eq("processed", false)).
		OrderBy("id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build fetch unprocessed query: %w", err)
	}

	var rows []stagingMatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select unprocessed observations: %w", err)
	}

	out := make([]staging.MatchObservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *StagingRepository) MarkMatchesProcessed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}

	query, args, err := qb.Update("staging_matches").
		Set("processed", true).
		Where(qb.In("id", values)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark processed query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark observations processed: %w", err)
	}
	return nil
}

// RejectMatch moves the observation out of the staging ledger and into the
// rejected store in one transaction.
func (r *StagingRepository) RejectMatch(ctx context.Context, obs staging.MatchObservation, reasonCode string) error {
	return r.runner.Run(ctx, func(tx *sqlx.Tx) error {
		deleteQuery, deleteArgs, err := qb.DeleteFrom("staging_matches").
			Where(qb.Eq("id", obs.ID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build delete staged observation query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return fmt.Errorf("delete staged observation %d: %w", obs.ID, err)
		}

		model := rejectedMatchInsertModel{
			SourcePlatform:       obs.SourcePlatform,
			SourceNativeMatchKey: obs.SourceNativeMatchKey,
			SourceEventID:        obs.SourceEventID,
			Season:               obs.Season,
			MatchDate:            obs.MatchDate,
			HomeTeamRaw:          obs.HomeTeamRaw,
			AwayTeamRaw:          obs.AwayTeamRaw,
			HomeScore:            nullableInt(obs.HomeScore),
			AwayScore:            nullableInt(obs.AwayScore),
			State:                obs.State,
			Payload:              obs.Payload,
			ObservedAt:           obs.ObservedAt,
			ReasonCode:           reasonCode,
		}
		insertQuery, insertArgs, err := qb.InsertModel("rejected_matches", model, "")
		if err != nil {
			return fmt.Errorf("build insert rejected observation query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("insert rejected observation %d: %w", obs.ID, err)
		}
		return nil
	})
}

func (r *StagingRepository) ListRejected(ctx context.Context, limit int) ([]staging.RejectedMatch, error) {
	query, args, err := qb.Select("*").From("rejected_matches").
		OrderBy("id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rejected query: %w", err)
	}

	var rows []rejectedMatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select rejected observations: %w", err)
	}

	out := make([]staging.RejectedMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, staging.RejectedMatch{
			MatchObservation: staging.MatchObservation{
				ID:                   row.ID,
				SourcePlatform:       row.SourcePlatform,
				SourceNativeMatchKey: row.SourceNativeMatchKey,
				SourceEventID:        row.SourceEventID,
				Season:               row.Season,
				MatchDate:            row.MatchDate,
				HomeTeamRaw:          row.HomeTeamRaw,
				AwayTeamRaw:          row.AwayTeamRaw,
				HomeScore:            intPtrFromNull(row.HomeScore),
				AwayScore:            intPtrFromNull(row.AwayScore),
				State:                row.State,
				Payload:              row.Payload,
				ObservedAt:           row.ObservedAt,
			},
			ReasonCode: row.ReasonCode,
			RejectedAt: row.RejectedAt,
		})
	}
	return out, nil
}

func (r *StagingRepository) InsertStandings(ctx context.Context, obs []staging.StandingObservation) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	var inserted int
	err := r.runner.Run(ctx, func(tx *sqlx.Tx) error {
		inserted = 0
		for _, o := range obs {
			model := stagingStandingInsertModel{
				SourcePlatform: o.SourcePlatform,
				SourceEventID:  o.SourceEventID,
				Season:         o.Season,
				TeamRaw:        o.TeamRaw,
				State:          o.State,
				Wins:           o.Wins,
				Losses:         o.Losses,
				Ties:           o.Ties,
				GoalsFor:       o.GoalsFor,
				GoalsAgainst:   o.GoalsAgainst,
				Points:         o.Points,
				ObservedAt:     o.ObservedAt,
			}
			query, args, err := qb.InsertModel("staging_standings", model, stagingStandingUpsertSuffix)
			if err != nil {
				return fmt.Errorf("build insert standing query: %w", err)
			}

			var wasInsert bool
			err = tx.GetContext(ctx, &wasInsert, query, args...)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return fmt.Errorf("insert standing %s/%s/%s: %w", o.SourcePlatform, o.SourceEventID, o.TeamRaw, err)
			}
			if wasInsert {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *StagingRepository) FetchUnprocessedStandings(ctx context.Context, limit int) ([]staging.StandingObservation, error) {
	query, args, err := qb.Select("*").From("staging_standings").
		Where(qb.Eq("processed", false)).
		OrderBy("id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build fetch unprocessed standings query: %w", err)
	}

	var rows []stagingStandingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select unprocessed standings: %w", err)
	}

	out := make([]staging.StandingObservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *StagingRepository) MarkStandingsProcessed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}

	query, args, err := qb.Update("staging_standings").
		Set("processed", true).
		Where(qb.In("id", values)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark standings processed query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark standings processed: %w", err)
	}
	return nil
}
