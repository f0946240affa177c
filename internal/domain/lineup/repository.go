package lineup

import (
	"context"
	"time"
)

// Store persists weekly lineups together with their usage counters.
//
// SaveLineup is the transactional core of the platform: it must check every
// implied entity's usage count against maxUses, upsert the lineup (wholesale
// pick replacement, total points reset), and increment every counter by one,
// all inside a single atomic unit. A cap violation fails the whole save with
// ErrUsageCapExceeded and leaves no partial state behind.
type Store interface {
	SaveLineup(ctx context.Context, item WeeklyLineup, refs []EntityRef, maxUses int) error
	GetByKey(ctx context.Context, userID, leagueID string, season, week int) (WeeklyLineup, bool, error)
	ListByWeek(ctx context.Context, season, week int, leagueID string) ([]WeeklyLineup, error)
	UpdateTotalPoints(ctx context.Context, userID, leagueID string, season, week int, points float64, updatedAt time.Time) error
	GetUsage(ctx context.Context, leagueID string, season int, userID string, ref EntityRef) (int, error)
}
