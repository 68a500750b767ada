package match

import (
	"context"
	"time"
)

// Repository describes production-ledger persistence needs from use cases.
// Uniqueness of the semantic key among non-deleted rows is enforced by the
// store; callers treat a duplicate insert as a conflict.
type Repository interface {
	GetByID(ctx context.Context, id string) (Match, bool, error)
	GetBySemanticKey(ctx context.Context, key SemanticKey) (Match, bool, error)
	GetBySourceKey(ctx context.Context, platform, sourceKey string) (Match, bool, error)
	Insert(ctx context.Context, m Match) error
	UpdateScores(ctx context.Context, id string, homeScore, awayScore *int, observedAt time.Time) error
	SoftDelete(ctx context.Context, id string) error

	// ReassignMatchTeam re-points one non-deleted match from one team to
	// another, on whichever side the team appears. The caller is responsible
	// for checking that the move does not collide with an existing semantic
	// key or produce a self-match.
	ReassignMatchTeam(ctx context.Context, matchID, fromTeamID, toTeamID string) error
	// MoveEventLink swaps an event's matches between the league and
	// tournament link columns. Returns affected rows.
	MoveEventLink(ctx context.Context, eventID, fromKind, toKind string) (int64, error)
	// CountEventLinks counts non-deleted matches linked to an event through
	// the given kind's column.
	CountEventLinks(ctx context.Context, eventID, kind string) (int64, error)

	ListByTeam(ctx context.Context, teamID string) ([]Match, error)
	// CountByTeam returns played-match counts per team over non-deleted
	// rows, for drift checks against the cached team aggregates.
	CountByTeam(ctx context.Context) (map[string]int, error)
}
