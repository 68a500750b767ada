package querybuilder

import "testing"

func TestInsertModel(t *testing.T) {
	type teamRow struct {
		ID     string `db:"id"`
		Name   string `db:"name"`
		Rating float64
		hidden string `db:"hidden"`
	}

	query, args, err := InsertModel("teams", teamRow{ID: "team-1", Name: "Riverside FC"}, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO teams (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "team-1" || args[1] != "Riverside FC" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModelFlattensEmbedded(t *testing.T) {
	type base struct {
		Season string `db:"season"`
		State  string `db:"state"`
	}
	type row struct {
		base
		ReasonCode string `db:"reason_code"`
	}

	query, args, err := InsertModel("rejected_matches", &row{
		base:       base{Season: "2025_fall", State: "KS"},
		ReasonCode: "SAME_TEAM_MATCH",
	}, "")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO rejected_matches (season, state, reason_code) VALUES ($1, $2, $3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != "SAME_TEAM_MATCH" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModelRejectsNonStruct(t *testing.T) {
	if _, _, err := InsertModel("teams", 42, ""); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
	var nilRow *struct {
		ID string `db:"id"`
	}
	if _, _, err := InsertModel("teams", nilRow, ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
}
