package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gridironhq/gridiron/internal/domain/schedule"
)

type ScheduleRepository struct {
	mu    sync.RWMutex
	games map[string]schedule.Game
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{games: make(map[string]schedule.Game)}
}

func (r *ScheduleRepository) GetWeek(_ context.Context, season, week int) (schedule.WeeklySchedule, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var games []schedule.Game
	for _, game := range r.games {
		if game.Season == season && game.Week == week {
			games = append(games, game)
		}
	}
	if len(games) == 0 {
		return schedule.WeeklySchedule{}, false, nil
	}

	sort.Slice(games, func(i, j int) bool {
		if !games[i].KickoffAt.Equal(games[j].KickoffAt) {
			return games[i].KickoffAt.Before(games[j].KickoffAt)
		}
		return games[i].GameID < games[j].GameID
	})

	return schedule.WeeklySchedule{Season: season, Week: week, Games: games}, true, nil
}

func (r *ScheduleRepository) UpsertGames(_ context.Context, games []schedule.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, game := range games {
		if game.GameID == "" {
			return fmt.Errorf("game without id")
		}
		game.Status = schedule.NormalizeStatus(game.Status)
		r.games[game.GameID] = game
	}
	return nil
}
