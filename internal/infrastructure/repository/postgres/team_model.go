package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pitchrank/pitchrank/internal/domain/team"
)

type teamTableModel struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	NormalizedName string         `db:"normalized_name"`
	State          string         `db:"state"`
	AgeGroup       string         `db:"age_group"`
	Gender         string         `db:"gender"`
	BirthYear      sql.NullInt64  `db:"birth_year"`
	Aliases        pq.StringArray `db:"aliases"`
	Rating         float64        `db:"rating"`
	MatchesPlayed  int            `db:"matches_played"`
	Wins           int            `db:"wins"`
	Losses         int            `db:"losses"`
	Ties           int            `db:"ties"`
	GoalsFor       int            `db:"goals_for"`
	GoalsAgainst   int            `db:"goals_against"`
	Points         int            `db:"points"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type teamInsertModel struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	NormalizedName string         `db:"normalized_name"`
	State          string         `db:"state"`
	AgeGroup       string         `db:"age_group"`
	Gender         string         `db:"gender"`
	BirthYear      sql.NullInt64  `db:"birth_year"`
	Aliases        pq.StringArray `db:"aliases"`
	Rating         float64        `db:"rating"`
	MatchesPlayed  int            `db:"matches_played"`
	Wins           int            `db:"wins"`
	Losses         int            `db:"losses"`
	Ties           int            `db:"ties"`
	GoalsFor       int            `db:"goals_for"`
	GoalsAgainst   int            `db:"goals_against"`
	Points         int            `db:"points"`
}

func (row teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:             row.ID,
		Name:           row.Name,
		NormalizedName: row.NormalizedName,
		State:          row.State,
		AgeGroup:       row.AgeGroup,
		Gender:         row.Gender,
		BirthYear:      intPtrFromNull(row.BirthYear),
		Aliases:        append([]string(nil), row.Aliases...),
		Rating:         row.Rating,
		MatchesPlayed:  row.MatchesPlayed,
		Wins:           row.Wins,
		Losses:         row.Losses,
		Ties:           row.Ties,
		GoalsFor:       row.GoalsFor,
		GoalsAgainst:   row.GoalsAgainst,
		Points:         row.Points,
	}
}

func teamToInsertModel(t team.Team) teamInsertModel {
	aliases := t.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	return teamInsertModel{
		ID:             t.ID,
		Name:           t.Name,
		NormalizedName: t.NormalizedName,
		State:          t.State,
		AgeGroup:       t.AgeGroup,
		Gender:         t.Gender,
		BirthYear:      nullableInt(t.BirthYear),
		Aliases:        pq.StringArray(aliases),
		Rating:         t.Rating,
		MatchesPlayed:  t.MatchesPlayed,
		Wins:           t.Wins,
		Losses:         t.Losses,
		Ties:           t.Ties,
		GoalsFor:       t.GoalsFor,
		GoalsAgainst:   t.GoalsAgainst,
		Points:         t.Points,
	}
}
