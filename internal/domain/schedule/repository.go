package schedule

import "context"

// Repository describes schedule persistence needs from use cases.
type Repository interface {
	GetWeek(ctx context.Context, season, week int) (WeeklySchedule, bool, error)
	UpsertGames(ctx context.Context, games []Game) error
}
