package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gridironhq/gridiron/internal/domain/league"
)

type LeagueRepository struct {
	mu    sync.RWMutex
	items map[string]league.League
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{items: make(map[string]league.League)}
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.items))
	for _, item := range r.items {
		if !item.Visible {
			continue
		}
		out = append(out, cloneLeague(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}
	return cloneLeague(item), true, nil
}

func (r *LeagueRepository) GetByJoinCode(_ context.Context, joinCode string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.JoinCode == joinCode {
			return cloneLeague(item), true, nil
		}
	}
	return league.League{}, false, nil
}

func (r *LeagueRepository) Create(_ context.Context, item league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("league %s already exists", item.ID)
	}
	for _, existing := range r.items {
		if existing.JoinCode == item.JoinCode {
			return fmt.Errorf("join code %s already taken", item.JoinCode)
		}
	}

	r.items[item.ID] = cloneLeague(item)
	return nil
}

func (r *LeagueRepository) AddMember(_ context.Context, leagueID string, member league.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[leagueID]
	if !ok {
		return fmt.Errorf("league %s not found", leagueID)
	}
	if item.HasMember(member.UserID) {
		return fmt.Errorf("user %s already a member of league %s", member.UserID, leagueID)
	}

	item.Members = append(item.Members, member)
	r.items[leagueID] = item
	return nil
}

func cloneLeague(item league.League) league.League {
	out := item
	out.Members = append([]league.Member(nil), item.Members...)
	return out
}
