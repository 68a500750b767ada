package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/staging"
)

type sourceKey struct {
	platform string
	key      string
}

type StagingRepository struct {
	mu             sync.Mutex
	nextID         int64
	matches        []staging.MatchObservation
	matchKeys      map[sourceKey]struct{}
	rejected       []staging.RejectedMatch
	standings      []staging.StandingObservation
	nextStandingID int64
}

func NewStagingRepository() *StagingRepository {
	return &StagingRepository{matchKeys: make(map[sourceKey]struct{})}
}

func (r *StagingRepository) InsertMatches(_ context.Context, obs []staging.MatchObservation) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, o := range obs {
		if o.SourceNativeMatchKey != "" {
			key := sourceKey{platform: o.SourcePlatform, key: o.SourceNativeMatchKey}
			if _, dup := r.matchKeys[key]; dup {
				r.refreshMatch(o)
				continue
			}
			r.matchKeys[key] = struct{}{}
		}
		r.nextID++
		o.ID = r.nextID
		r.matches = append(r.matches, o)
		inserted++
	}
	return inserted, nil
}

// refreshMatch re-opens the staged row for a provider key seen before. A
// re-scrape with fresher scores flows through promotion again instead of
// being dropped at the door.
func (r *StagingRepository) refreshMatch(o staging.MatchObservation) {
	for i := range r.matches {
		m := &r.matches[i]
		if m.SourcePlatform != o.SourcePlatform || m.SourceNativeMatchKey != o.SourceNativeMatchKey {
			continue
		}
		if sameScores(m.HomeScore, o.HomeScore) && sameScores(m.AwayScore, o.AwayScore) {
			return
		}
		m.HomeScore = o.HomeScore
		m.AwayScore = o.AwayScore
		m.ObservedAt = o.ObservedAt
		m.Payload = o.Payload
		m.Processed = false
		return
	}
}

func sameScores(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r *StagingRepository) FetchUnprocessedMatches(_ context.Context, limit int) ([]staging.MatchObservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []staging.MatchObservation
	for _, o := range r.matches {
		if o.Processed {
			continue
		}
		out = append(out, o)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *StagingRepository) MarkMatchesProcessed(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for i := range r.matches {
		if _, ok := wanted[r.matches[i].ID]; ok {
			r.matches[i].Processed = true
		}
	}
	return nil
}

func (r *StagingRepository) RejectMatch(_ context.Context, obs staging.MatchObservation, reasonCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.matches {
		if r.matches[i].ID == obs.ID {
			r.matches = append(r.matches[:i], r.matches[i+1:]...)
			break
		}
	}
	r.rejected = append(r.rejected, staging.RejectedMatch{
		MatchObservation: obs,
		ReasonCode:       reasonCode,
		RejectedAt:       time.Now(),
	})
	return nil
}

func (r *StagingRepository) ListRejected(_ context.Context, limit int) ([]staging.RejectedMatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]staging.RejectedMatch(nil), r.rejected...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *StagingRepository) InsertStandings(_ context.Context, obs []staging.StandingObservation) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range obs {
		r.nextStandingID++
		obs[i].ID = r.nextStandingID
		r.standings = append(r.standings, obs[i])
	}
	return len(obs), nil
}

func (r *StagingRepository) FetchUnprocessedStandings(_ context.Context, limit int) ([]staging.StandingObservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []staging.StandingObservation
	for _, o := range r.standings {
		if o.Processed {
			continue
		}
		out = append(out, o)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *StagingRepository) MarkStandingsProcessed(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for i := range r.standings {
		if _, ok := wanted[r.standings[i].ID]; ok {
			r.standings[i].Processed = true
		}
	}
	return nil
}
