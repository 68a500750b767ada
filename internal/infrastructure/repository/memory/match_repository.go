package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pitchrank/pitchrank/internal/domain/event"
	"github.com/pitchrank/pitchrank/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]match.Match
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	byID := make(map[string]match.Match, len(matches))
	for _, item := range matches {
		byID[item.ID] = cloneMatch(item)
	}

	return &MatchRepository{matches: byID}
}

func (r *MatchRepository) GetByID(_ context.Context, id string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.matches[id]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(item), true, nil
}

func (r *MatchRepository) GetBySemanticKey(_ context.Context, key match.SemanticKey) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.matches {
		if item.DeletedAt != nil {
			continue
		}
		if item.SemanticKey() == key {
			return cloneMatch(item), true, nil
		}
	}
	return match.Match{}, false, nil
}

func (r *MatchRepository) GetBySourceKey(_ context.Context, platform, sourceKey string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.matches {
		if item.DeletedAt != nil || item.SourceMatchKey == "" {
			continue
		}
		if item.SourcePlatform == platform && item.SourceMatchKey == sourceKey {
			return cloneMatch(item), true, nil
		}
	}
	return match.Match{}, false, nil
}

func (r *MatchRepository) Insert(_ context.Context, m match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.matches[m.ID]; exists {
		return fmt.Errorf("match %s already exists", m.ID)
	}
	for _, item := range r.matches {
		if item.DeletedAt == nil && item.SemanticKey() == m.SemanticKey() {
			return fmt.Errorf("match for %s between %s and %s already exists",
				m.MatchDate.Format("2006-01-02"), m.HomeTeamID, m.AwayTeamID)
		}
	}
	r.matches[m.ID] = cloneMatch(m)
	return nil
}

func (r *MatchRepository) UpdateScores(_ context.Context, id string, homeScore, awayScore *int, observedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.matches[id]
	if !ok {
		return fmt.Errorf("match %s does not exist", id)
	}
	item.HomeScore = cloneScore(homeScore)
	item.AwayScore = cloneScore(awayScore)
	item.ObservedAt = observedAt
	r.matches[id] = item
	return nil
}

func (r *MatchRepository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.matches[id]
	if !ok {
		return fmt.Errorf("match %s does not exist", id)
	}
	now := time.Now()
	item.DeletedAt = &now
	r.matches[id] = item
	return nil
}

func (r *MatchRepository) ReassignMatchTeam(_ context.Context, matchID, fromTeamID, toTeamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.matches[matchID]
	if !ok || item.DeletedAt != nil {
		return fmt.Errorf("match %s does not exist", matchID)
	}
	changed := false
	if item.HomeTeamID == fromTeamID {
		item.HomeTeamID = toTeamID
		changed = true
	}
	if item.AwayTeamID == fromTeamID {
		item.AwayTeamID = toTeamID
		changed = true
	}
	if !changed {
		return fmt.Errorf("match %s does not reference team %s", matchID, fromTeamID)
	}
	r.matches[matchID] = item
	return nil
}

func (r *MatchRepository) MoveEventLink(_ context.Context, eventID, fromKind, toKind string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var moved int64
	for id, item := range r.matches {
		if item.DeletedAt != nil {
			continue
		}
		if fromKind == event.KindTournament && item.TournamentID == eventID && toKind == event.KindLeague {
			item.TournamentID = ""
			item.LeagueID = eventID
			r.matches[id] = item
			moved++
		}
		if fromKind == event.KindLeague && item.LeagueID == eventID && toKind == event.KindTournament {
			item.LeagueID = ""
			item.TournamentID = eventID
			r.matches[id] = item
			moved++
		}
	}
	return moved, nil
}

func (r *MatchRepository) CountEventLinks(_ context.Context, eventID, kind string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, item := range r.matches {
		if item.DeletedAt != nil {
			continue
		}
		if (kind == event.KindLeague && item.LeagueID == eventID) ||
			(kind == event.KindTournament && item.TournamentID == eventID) {
			count++
		}
	}
	return count, nil
}

func (r *MatchRepository) ListByTeam(_ context.Context, teamID string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []match.Match
	for _, item := range r.matches {
		if item.DeletedAt != nil {
			continue
		}
		if item.HomeTeamID == teamID || item.AwayTeamID == teamID {
			out = append(out, cloneMatch(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MatchRepository) CountByTeam(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int)
	for _, item := range r.matches {
		if item.DeletedAt != nil {
			continue
		}
		out[item.HomeTeamID]++
		out[item.AwayTeamID]++
	}
	return out, nil
}

func cloneMatch(m match.Match) match.Match {
	out := m
	out.HomeScore = cloneScore(m.HomeScore)
	out.AwayScore = cloneScore(m.AwayScore)
	if m.DeletedAt != nil {
		deleted := *m.DeletedAt
		out.DeletedAt = &deleted
	}
	return out
}

func cloneScore(score *int) *int {
	if score == nil {
		return nil
	}
	value := *score
	return &value
}
