package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pitchrank/pitchrank/internal/domain/event"
	qb "github.com/pitchrank/pitchrank/internal/platform/querybuilder"
)

// EventRepository reads and writes leagues and tournaments. The two kinds
// live in separate tables with identical shapes; reclassification moves a
// row between them under the same id.
type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

type eventTableModel struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	SeasonCode string    `db:"season_code"`
	State      string    `db:"state"`
	CreatedAt  time.Time `db:"created_at"`
}

type eventInsertModel struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	SeasonCode string `db:"season_code"`
	State      string `db:"state"`
}

func tableForKind(kind string) (string, error) {
	switch kind {
	case event.KindLeague:
		return "leagues", nil
	case event.KindTournament:
		return "tournaments", nil
	default:
		return "", fmt.Errorf("unknown event kind %q", kind)
	}
}

func (r *EventRepository) GetByID(ctx context.Context, kind, id string) (event.Event, bool, error) {
	table, err := tableForKind(kind)
	if err != nil {
		return event.Event{}, false, err
	}

	query, args, err := qb.Select("*").From(table).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build select event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("select %s %s: %w", kind, id, err)
	}

	return event.Event{
		ID:         row.ID,
		Kind:       kind,
		Name:       row.Name,
		SeasonCode: row.SeasonCode,
		State:      row.State,
	}, true, nil
}

// Create inserts the event into its kind's table. An existing row under the
// same id is left as is, which keeps reclassification re-runnable.
func (r *EventRepository) Create(ctx context.Context, e event.Event) error {
	table, err := tableForKind(e.Kind)
	if err != nil {
		return err
	}

	model := eventInsertModel{
		ID:         e.ID,
		Name:       e.Name,
		SeasonCode: e.SeasonCode,
		State:      e.State,
	}
	query, args, err := qb.InsertModel(table, model, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s %s: %w", e.Kind, e.ID, err)
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, kind, id string) error {
	table, err := tableForKind(kind)
	if err != nil {
		return err
	}

	query, args, err := qb.DeleteFrom(table).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	return nil
}
