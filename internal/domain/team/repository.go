package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Team, bool, error)
	GetByCanonicalKey(ctx context.Context, key CanonicalKey) (Team, bool, error)
	// ListPartition returns every team in one state/age/gender pool; the
	// resolver scores these for a fuzzy match.
	ListPartition(ctx context.Context, p Partition) ([]Team, error)
	ListByNamePrefix(ctx context.Context, prefix string) ([]Team, error)
	ListDuplicateCanonicalKeys(ctx context.Context) ([]CanonicalKey, error)
	Create(ctx context.Context, t Team) error
	Delete(ctx context.Context, id string) error
	AddAlias(ctx context.Context, id, alias string) error
	UpdateAggregates(ctx context.Context, id string, agg Aggregates) error
	IncrementMatchesPlayed(ctx context.Context, ids []string, delta int) error
	SetMatchesPlayed(ctx context.Context, id string, count int) error
	// MatchesPlayedSnapshot returns the cached matches_played column for
	// every team, keyed by team id.
	MatchesPlayedSnapshot(ctx context.Context) (map[string]int, error)
}
