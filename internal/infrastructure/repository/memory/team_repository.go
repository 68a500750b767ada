package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pitchrank/pitchrank/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	byID := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		byID[item.ID] = cloneTeam(item)
	}

	return &TeamRepository{teams: byID}
}

func (r *TeamRepository) GetByID(_ context.Context, id string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[id]
	if !ok {
		return team.Team{}, false, nil
	}
	return cloneTeam(item), true, nil
}

func (r *TeamRepository) GetByCanonicalKey(_ context.Context, key team.CanonicalKey) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.teams {
		if item.CanonicalKey() == key {
			return cloneTeam(item), true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) ListPartition(_ context.Context, p team.Partition) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []team.Team
	for _, item := range r.teams {
		if item.CanonicalKey().Partition == p {
			out = append(out, cloneTeam(item))
		}
	}
	sortTeams(out)
	return out, nil
}

func (r *TeamRepository) ListByNamePrefix(_ context.Context, prefix string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []team.Team
	for _, item := range r.teams {
		if strings.HasPrefix(item.NormalizedName, prefix) {
			out = append(out, cloneTeam(item))
		}
	}
	sortTeams(out)
	return out, nil
}

func (r *TeamRepository) ListDuplicateCanonicalKeys(_ context.Context) ([]team.CanonicalKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[team.CanonicalKey]int)
	for _, item := range r.teams {
		counts[item.CanonicalKey()]++
	}

	var out []team.CanonicalKey
	for key, count := range counts {
		if count > 1 {
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (r *TeamRepository) Create(_ context.Context, t team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.teams[t.ID]; exists {
		return fmt.Errorf("team %s already exists", t.ID)
	}
	r.teams[t.ID] = cloneTeam(t)
	return nil
}

func (r *TeamRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.teams, id)
	return nil
}

func (r *TeamRepository) AddAlias(_ context.Context, id, alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[id]
	if !ok {
		return fmt.Errorf("team %s does not exist", id)
	}
	for _, existing := range item.Aliases {
		if existing == alias {
			return nil
		}
	}
	item.Aliases = append(item.Aliases, alias)
	r.teams[id] = item
	return nil
}

func (r *TeamRepository) UpdateAggregates(_ context.Context, id string, agg team.Aggregates) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[id]
	if !ok {
		return fmt.Errorf("team %s does not exist", id)
	}
	item.Wins = agg.Wins
	item.Losses = agg.Losses
	item.Ties = agg.Ties
	item.GoalsFor = agg.GoalsFor
	item.GoalsAgainst = agg.GoalsAgainst
	item.Points = agg.Points
	r.teams[id] = item
	return nil
}

func (r *TeamRepository) IncrementMatchesPlayed(_ context.Context, ids []string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		item, ok := r.teams[id]
		if !ok {
			continue
		}
		item.MatchesPlayed += delta
		r.teams[id] = item
	}
	return nil
}

func (r *TeamRepository) SetMatchesPlayed(_ context.Context, id string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[id]
	if !ok {
		return fmt.Errorf("team %s does not exist", id)
	}
	item.MatchesPlayed = count
	r.teams[id] = item
	return nil
}

func (r *TeamRepository) MatchesPlayedSnapshot(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]int, len(r.teams))
	for id, item := range r.teams {
		out[id] = item.MatchesPlayed
	}
	return out, nil
}

func cloneTeam(t team.Team) team.Team {
	out := t
	if t.BirthYear != nil {
		year := *t.BirthYear
		out.BirthYear = &year
	}
	out.Aliases = append([]string(nil), t.Aliases...)
	return out
}

func sortTeams(teams []team.Team) {
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
}
