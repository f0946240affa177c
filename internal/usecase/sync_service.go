package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/gridironhq/gridiron/internal/domain/schedule"
	"github.com/gridironhq/gridiron/internal/domain/stats"
	"github.com/gridironhq/gridiron/internal/platform/logging"
)

// StatsFeed is the opaque external provider of schedules and raw game
// statistics. Implementations live under external/; the core only sees
// these shapes.
type StatsFeed interface {
	FetchWeekSchedule(ctx context.Context, season, week int) ([]schedule.Game, error)
	FetchGameStats(ctx context.Context, gameID string) (FeedGameStats, error)
}

// FeedGameStats is one finished game's raw statistics as delivered by the
// stats feed.
type FeedGameStats struct {
	PlayerLines  []stats.PlayerLine
	DefenseLines []stats.TeamDefenseLine
}

type SyncWeekResult struct {
	Season        int   `json:"season"`
	Week          int   `json:"week"`
	GameCount     int   `json:"game_count"`
	IngestedGames int   `json:"ingested_games"`
	FailedGames   int   `json:"failed_games"`
	DurationMs    int64 `json:"duration_ms"`
}

// SyncService pulls the weekly schedule and finished-game statistics from
// the external feed and drives ingestion. It is the upstream writer of the
// schedule and game-stat rows the lineup and reconcile services consume.
type SyncService struct {
	feed         StatsFeed
	scheduleRepo schedule.Repository
	ingestion    *IngestionService
	logger       *logging.Logger
	now          func() time.Time
}

func NewSyncService(feed StatsFeed, scheduleRepo schedule.Repository, ingestion *IngestionService, logger *logging.Logger) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{
		feed:         feed,
		scheduleRepo: scheduleRepo,
		ingestion:    ingestion,
		logger:       logger,
		now:          time.Now,
	}
}

// SyncWeek refreshes the week's schedule and ingests stats for every game
// the feed reports as final. Per-game ingestion failures are isolated.
func (s *SyncService) SyncWeek(ctx context.Context, season, week int) (SyncWeekResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncWeek")
	defer span.End()

	if season <= 0 || week <= 0 {
		return SyncWeekResult{}, fmt.Errorf("%w: season and week are required", ErrInvalidInput)
	}
	if s.feed == nil {
		return SyncWeekResult{}, fmt.Errorf("%w: stats feed is not configured", ErrDependencyUnavailable)
	}

	start := s.now()

	games, err := s.feed.FetchWeekSchedule(ctx, season, week)
	if err != nil {
		return SyncWeekResult{}, fmt.Errorf("%w: fetch week schedule season=%d week=%d: %v", ErrDependencyUnavailable, season, week, err)
	}
	if err := s.scheduleRepo.UpsertGames(ctx, games); err != nil {
		return SyncWeekResult{}, fmt.Errorf("upsert weekly schedule season=%d week=%d: %w", season, week, err)
	}

	result := SyncWeekResult{Season: season, Week: week, GameCount: len(games)}

	for _, game := range games {
		if ctx.Err() != nil {
			break
		}
		if !schedule.IsFinalStatus(game.Status) {
			continue
		}

		feedStats, err := s.feed.FetchGameStats(ctx, game.GameID)
		if err != nil {
			result.FailedGames++
			s.logger.WarnContext(ctx, "fetch game stats failed", "game_id", game.GameID, "error", err)
			continue
		}

		if _, err := s.ingestion.IngestGame(ctx, IngestGameInput{
			Game:         game,
			PlayerLines:  feedStats.PlayerLines,
			DefenseLines: feedStats.DefenseLines,
		}); err != nil {
			result.FailedGames++
			s.logger.WarnContext(ctx, "ingest game failed", "game_id", game.GameID, "error", err)
			continue
		}
		result.IngestedGames++
	}

	result.DurationMs = time.Since(start).Milliseconds()

	s.logger.InfoContext(ctx, "week sync finished",
		"season", season,
		"week", week,
		"games", result.GameCount,
		"ingested", result.IngestedGames,
		"failed", result.FailedGames,
	)

	return result, nil
}
