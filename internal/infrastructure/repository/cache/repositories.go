package cache

import (
	"context"
	"strconv"

	"github.com/gridironhq/gridiron/internal/domain/league"
	"github.com/gridironhq/gridiron/internal/domain/schedule"
	basecache "github.com/gridironhq/gridiron/internal/platform/cache"
)

// ScheduleRepository caches weekly schedules in front of the persistent
// repository. The deadline guard reads the schedule on every lineup save, so
// the hot path stays off the database between sync runs.
type ScheduleRepository struct {
	next  schedule.Repository
	cache *basecache.Store
}

func NewScheduleRepository(next schedule.Repository, cache *basecache.Store) *ScheduleRepository {
	return &ScheduleRepository{next: next, cache: cache}
}

func (r *ScheduleRepository) GetWeek(ctx context.Context, season, week int) (schedule.WeeklySchedule, bool, error) {
	key := weekKey(season, week)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetWeek(ctx, season, week)
		if err != nil {
			return nil, err
		}
		return cachedWeek{value: cloneWeek(item), exists: exists}, nil
	})
	if err != nil {
		return schedule.WeeklySchedule{}, false, err
	}

	cached, _ := v.(cachedWeek)
	return cloneWeek(cached.value), cached.exists, nil
}

func (r *ScheduleRepository) UpsertGames(ctx context.Context, games []schedule.Game) error {
	if err := r.next.UpsertGames(ctx, games); err != nil {
		return err
	}
	for _, game := range games {
		r.cache.Delete(ctx, weekKey(game.Season, game.Week))
	}
	return nil
}

type cachedWeek struct {
	value  schedule.WeeklySchedule
	exists bool
}

func cloneWeek(item schedule.WeeklySchedule) schedule.WeeklySchedule {
	out := item
	out.Games = append([]schedule.Game(nil), item.Games...)
	return out
}

func weekKey(season, week int) string {
	return "schedule:week:" + strconv.Itoa(season) + ":" + strconv.Itoa(week)
}

// LeagueRepository caches league reads; membership checks run on every
// lineup save.
type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	v, err := r.cache.GetOrLoad(ctx, "league:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]league.League, 0, len(items))
		for _, item := range items {
			out = append(out, cloneLeague(item))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]league.League)
	out := make([]league.League, 0, len(items))
	for _, item := range items {
		out = append(out, cloneLeague(item))
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, leagueIDKey(leagueID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return cachedLeague{value: cloneLeague(item), exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeague)
	return cloneLeague(cached.value), cached.exists, nil
}

func (r *LeagueRepository) GetByJoinCode(ctx context.Context, joinCode string) (league.League, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "league:code:"+joinCode, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByJoinCode(ctx, joinCode)
		if err != nil {
			return nil, err
		}
		return cachedLeague{value: cloneLeague(item), exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeague)
	return cloneLeague(cached.value), cached.exists, nil
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, "league:list")
	r.cache.Delete(ctx, leagueIDKey(item.ID))
	r.cache.Delete(ctx, "league:code:"+item.JoinCode)
	return nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, leagueID string, member league.Member) error {
	if err := r.next.AddMember(ctx, leagueID, member); err != nil {
		return err
	}
	r.cache.Delete(ctx, "league:list")
	r.cache.Delete(ctx, leagueIDKey(leagueID))
	r.cache.DeletePrefix(ctx, "league:code:")
	return nil
}

type cachedLeague struct {
	value  league.League
	exists bool
}

func cloneLeague(item league.League) league.League {
	out := item
	out.Members = append([]league.Member(nil), item.Members...)
	return out
}

func leagueIDKey(leagueID string) string {
	return "league:id:" + leagueID
}
