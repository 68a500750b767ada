package staging

import "context"

// Repository describes staging-ledger persistence needs from use cases.
type Repository interface {
	// InsertMatches appends observations. A row whose (source_platform,
	// source_native_match_key) is already staged is not duplicated: when its
	// scores changed the existing row is refreshed and re-opened for
	// promotion, otherwise it is skipped. Returns how many new rows were
	// written.
	InsertMatches(ctx context.Context, obs []MatchObservation) (int, error)
	FetchUnprocessedMatches(ctx context.Context, limit int) ([]MatchObservation, error)
	MarkMatchesProcessed(ctx context.Context, ids []int64) error
	// RejectMatch moves one observation to the rejected store.
	RejectMatch(ctx context.Context, obs MatchObservation, reasonCode string) error
	ListRejected(ctx context.Context, limit int) ([]RejectedMatch, error)

	InsertStandings(ctx context.Context, obs []StandingObservation) (int, error)
	FetchUnprocessedStandings(ctx context.Context, limit int) ([]StandingObservation, error)
	MarkStandingsProcessed(ctx context.Context, ids []int64) error
}
