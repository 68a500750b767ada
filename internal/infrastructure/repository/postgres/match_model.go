package postgres

import (
	"database/sql"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/match"
)

type matchTableModel struct {
	ID             string         `db:"id"`
	MatchDate      time.Time      `db:"match_date"`
	HomeTeamID     string         `db:"home_team_id"`
	AwayTeamID     string         `db:"away_team_id"`
	HomeScore      sql.NullInt64  `db:"home_score"`
	AwayScore      sql.NullInt64  `db:"away_score"`
	LeagueID       sql.NullString `db:"league_id"`
	TournamentID   sql.NullString `db:"tournament_id"`
	SeasonCode     string         `db:"season_code"`
	SourcePlatform string         `db:"source_platform"`
	SourceMatchKey string         `db:"source_match_key"`
	ObservedAt     time.Time      `db:"observed_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	DeletedAt      *time.Time     `db:"deleted_at"`
}

type matchInsertModel struct {
	ID             string        `db:"id"`
	MatchDate      time.Time     `db:"match_date"`
	HomeTeamID     string        `db:"home_team_id"`
	AwayTeamID     string        `db:"away_team_id"`
	HomeScore      sql.NullInt64 `db:"home_score"`
	AwayScore      sql.NullInt64 `db:"away_score"`
	LeagueID       *string       `db:"league_id"`
	TournamentID   *string       `db:"tournament_id"`
	SeasonCode     string        `db:"season_code"`
	SourcePlatform string        `db:"source_platform"`
	SourceMatchKey string        `db:"source_match_key"`
	ObservedAt     time.Time     `db:"observed_at"`
}

func (row matchTableModel) toDomain() match.Match {
	return match.Match{
		ID:             row.ID,
		MatchDate:      row.MatchDate,
		HomeTeamID:     row.HomeTeamID,
		AwayTeamID:     row.AwayTeamID,
		HomeScore:      intPtrFromNull(row.HomeScore),
		AwayScore:      intPtrFromNull(row.AwayScore),
		LeagueID:       stringFromNull(row.LeagueID),
		TournamentID:   stringFromNull(row.TournamentID),
		SeasonCode:     row.SeasonCode,
		SourcePlatform: row.SourcePlatform,
		SourceMatchKey: row.SourceMatchKey,
		ObservedAt:     row.ObservedAt,
		DeletedAt:      row.DeletedAt,
	}
}

func matchToInsertModel(m match.Match) matchInsertModel {
	return matchInsertModel{
		ID:             m.ID,
		MatchDate:      m.MatchDate,
		HomeTeamID:     m.HomeTeamID,
		AwayTeamID:     m.AwayTeamID,
		HomeScore:      nullableInt(m.HomeScore),
		AwayScore:      nullableInt(m.AwayScore),
		LeagueID:       nullableString(m.LeagueID),
		TournamentID:   nullableString(m.TournamentID),
		SeasonCode:     m.SeasonCode,
		SourcePlatform: m.SourcePlatform,
		SourceMatchKey: m.SourceMatchKey,
		ObservedAt:     m.ObservedAt,
	}
}
