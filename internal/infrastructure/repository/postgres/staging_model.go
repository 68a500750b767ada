package postgres

import (
	"database/sql"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/staging"
)

type stagingMatchTableModel struct {
	ID                   int64         `db:"id"`
	SourcePlatform       string        `db:"source_platform"`
	SourceNativeMatchKey string        `db:"source_native_match_key"`
	SourceEventID        string        `db:"source_event_id"`
	Season               string        `db:"season"`
	MatchDate            *time.Time    `db:"match_date"`
	HomeTeamRaw          string        `db:"home_team_raw"`
	AwayTeamRaw          string        `db:"away_team_raw"`
	HomeScore            sql.NullInt64 `db:"home_score"`
	AwayScore            sql.NullInt64 `db:"away_score"`
	State                string        `db:"state"`
	Payload              []byte        `db:"payload"`
	ObservedAt           time.Time     `db:"observed_at"`
	Processed            bool          `db:"processed"`
}

type stagingMatchInsertModel struct {
	SourcePlatform       string        `db:"source_platform"`
	SourceNativeMatchKey string        `db:"source_native_match_key"`
	SourceEventID        string        `db:"source_event_id"`
	Season               string        `db:"season"`
	MatchDate            *time.Time    `db:"match_date"`
	HomeTeamRaw          string        `db:"home_team_raw"`
	AwayTeamRaw          string        `db:"away_team_raw"`
	HomeScore            sql.NullInt64 `db:"home_score"`
	AwayScore            sql.NullInt64 `db:"away_score"`
	State                string        `db:"state"`
	Payload              []byte        `db:"payload"`
	ObservedAt           time.Time     `db:"observed_at"`
}

type rejectedMatchInsertModel struct {
	SourcePlatform       string        `db:"source_platform"`
	SourceNativeMatchKey string        `db:"source_native_match_key"`
	SourceEventID        string        `db:"source_event_id"`
	Season               string        `db:"season"`
	MatchDate            *time.Time    `db:"match_date"`
	HomeTeamRaw          string        `db:"home_team_raw"`
	AwayTeamRaw          string        `db:"away_team_raw"`
	HomeScore            sql.NullInt64 `db:"home_score"`
	AwayScore            sql.NullInt64 `db:"away_score"`
	State                string        `db:"state"`
	Payload              []byte        `db:"payload"`
	ObservedAt           time.Time     `db:"observed_at"`
	ReasonCode           string        `db:"reason_code"`
}

type rejectedMatchTableModel struct {
	ID int64 `db:"id"`
	rejectedMatchInsertModel
	RejectedAt time.Time `db:"rejected_at"`
}

type stagingStandingTableModel struct {
	ID             int64     `db:"id"`
	SourcePlatform string    `db:"source_platform"`
	SourceEventID  string    `db:"source_event_id"`
	Season         string    `db:"season"`
	TeamRaw        string    `db:"team_raw"`
	State          string    `db:"state"`
	Wins           int       `db:"wins"`
	Losses         int       `db:"losses"`
	Ties           int       `db:"ties"`
	GoalsFor       int       `db:"goals_for"`
	GoalsAgainst   int       `db:"goals_against"`
	Points         int       `db:"points"`
	ObservedAt     time.Time `db:"observed_at"`
	Processed      bool      `db:"processed"`
}

type stagingStandingInsertModel struct {
	SourcePlatform string    `db:"source_platform"`
	SourceEventID  string    `db:"source_event_id"`
	Season         string    `db:"season"`
	TeamRaw        string    `db:"team_raw"`
	State          string    `db:"state"`
	Wins           int       `db:"wins"`
	Losses         int       `db:"losses"`
	Ties           int       `db:"ties"`
	GoalsFor       int       `db:"goals_for"`
	GoalsAgainst   int       `db:"goals_against"`
	Points         int       `db:"points"`
	ObservedAt     time.Time `db:"observed_at"`
}

func (row stagingMatchTableModel) toDomain() staging.MatchObservation {
	return staging.MatchObservation{
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
		Processed:            row.Processed,
	}
}

func stagingMatchToInsertModel(o staging.MatchObservation) stagingMatchInsertModel {
	return stagingMatchInsertModel{
		SourcePlatform:       o.SourcePlatform,
		SourceNativeMatchKey: o.SourceNativeMatchKey,
		SourceEventID:        o.SourceEventID,
		Season:               o.Season,
		MatchDate:            o.MatchDate,
		HomeTeamRaw:          o.HomeTeamRaw,
		AwayTeamRaw:          o.AwayTeamRaw,
		HomeScore:            nullableInt(o.HomeScore),
		AwayScore:            nullableInt(o.AwayScore),
		State:                o.State,
		Payload:              o.Payload,
		ObservedAt:           o.ObservedAt,
	}
}

func (row stagingStandingTableModel) toDomain() staging.StandingObservation {
	return staging.StandingObservation{
		ID:             row.ID,
		SourcePlatform: row.SourcePlatform,
		SourceEventID:  row.SourceEventID,
		Season:         row.Season,
		TeamRaw:        row.TeamRaw,
		State:          row.State,
		Wins:           row.Wins,
		Losses:         row.Losses,
		Ties:           row.Ties,
		GoalsFor:       row.GoalsFor,
		GoalsAgainst:   row.GoalsAgainst,
		Points:         row.Points,
		ObservedAt:     row.ObservedAt,
		Processed:      row.Processed,
	}
}
