package memory

import (
	"context"
	"sync"

	"github.com/gridironhq/gridiron/internal/domain/stats"
)

type StatsRepository struct {
	mu          sync.RWMutex
	playerStats map[string]stats.PlayerGameStat
	teamStats   map[string]stats.TeamGameStat
}

func NewStatsRepository() *StatsRepository {
	return &StatsRepository{
		playerStats: make(map[string]stats.PlayerGameStat),
		teamStats:   make(map[string]stats.TeamGameStat),
	}
}

func (r *StatsRepository) UpsertPlayerGameStats(_ context.Context, items []stats.PlayerGameStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.playerStats[item.Line.PlayerID+"::"+item.Line.GameID] = item
	}
	return nil
}

func (r *StatsRepository) UpsertTeamGameStats(_ context.Context, items []stats.TeamGameStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.teamStats[item.TeamID+"::"+item.GameID] = item
	}
	return nil
}

func (r *StatsRepository) PlayerPointsByWeek(_ context.Context, season, week int) (map[string]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]float64)
	for _, item := range r.playerStats {
		if item.Line.Season == season && item.Line.Week == week {
			out[item.Line.PlayerID] += item.FantasyPoints
		}
	}
	return out, nil
}

func (r *StatsRepository) TeamUnitPointsByWeek(_ context.Context, season, week int) (map[string]stats.TeamUnitPoints, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]stats.TeamUnitPoints)
	for _, item := range r.teamStats {
		if item.Season != season || item.Week != week {
			continue
		}
		unit := out[item.TeamID]
		unit.Passing += item.PassingPoints
		unit.Rushing += item.RushingPoints
		unit.Defense += item.DefensePoints
		unit.SpecialTeams += item.SpecialTeamsPoints
		out[item.TeamID] = unit
	}
	return out, nil
}
