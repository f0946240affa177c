package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gridironhq/gridiron/internal/domain/lineup"
)

// LineupStore implements lineup.Store with a single mutex standing in for
// the postgres transaction: the cap check, the counter increments, and the
// lineup write happen under one critical section.
type LineupStore struct {
	mu      sync.Mutex
	lineups map[string]lineup.WeeklyLineup
	usage   map[string]int
}

func NewLineupStore() *LineupStore {
	return &LineupStore{
		lineups: make(map[string]lineup.WeeklyLineup),
		usage:   make(map[string]int),
	}
}

func (s *LineupStore) SaveLineup(_ context.Context, item lineup.WeeklyLineup, refs []lineup.EntityRef, maxUses int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ref := range refs {
		if s.usage[usageKey(item.LeagueID, item.Season, item.UserID, ref)] >= maxUses {
			return fmt.Errorf("entity %s: %w", ref.Key(), lineup.ErrUsageCapExceeded)
		}
	}
	for _, ref := range refs {
		s.usage[usageKey(item.LeagueID, item.Season, item.UserID, ref)]++
	}

	item.TotalPoints = nil
	s.lineups[lineupKey(item.UserID, item.LeagueID, item.Season, item.Week)] = cloneLineup(item)
	return nil
}

func (s *LineupStore) GetByKey(_ context.Context, userID, leagueID string, season, week int) (lineup.WeeklyLineup, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.lineups[lineupKey(userID, leagueID, season, week)]
	if !ok {
		return lineup.WeeklyLineup{}, false, nil
	}
	return cloneLineup(item), true, nil
}

func (s *LineupStore) ListByWeek(_ context.Context, season, week int, leagueID string) ([]lineup.WeeklyLineup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []lineup.WeeklyLineup
	for _, item := range s.lineups {
		if item.Season != season || item.Week != week {
			continue
		}
		if leagueID != "" && item.LeagueID != leagueID {
			continue
		}
		out = append(out, cloneLineup(item))
	}
	return out, nil
}

func (s *LineupStore) UpdateTotalPoints(_ context.Context, userID, leagueID string, season, week int, points float64, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := lineupKey(userID, leagueID, season, week)
	item, ok := s.lineups[key]
	if !ok {
		return fmt.Errorf("lineup user=%s league=%s season=%d week=%d not found", userID, leagueID, season, week)
	}

	item.TotalPoints = &points
	item.UpdatedAt = updatedAt
	s.lineups[key] = item
	return nil
}

func (s *LineupStore) GetUsage(_ context.Context, leagueID string, season int, userID string, ref lineup.EntityRef) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.usage[usageKey(leagueID, season, userID, ref)], nil
}

func lineupKey(userID, leagueID string, season, week int) string {
	return fmt.Sprintf("%s::%s::%d::%d", userID, leagueID, season, week)
}

func usageKey(leagueID string, season int, userID string, ref lineup.EntityRef) string {
	return fmt.Sprintf("%s::%d::%s::%s", leagueID, season, userID, ref.Key())
}

func cloneLineup(item lineup.WeeklyLineup) lineup.WeeklyLineup {
	out := item
	if item.Picks != nil {
		out.Picks = make(map[lineup.Slot]lineup.Pick, len(item.Picks))
		for slot, pick := range item.Picks {
			out.Picks[slot] = pick
		}
	}
	if item.TotalPoints != nil {
		points := *item.TotalPoints
		out.TotalPoints = &points
	}
	return out
}
