package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/gridironhq/gridiron/internal/domain/lineup"
	"github.com/gridironhq/gridiron/internal/domain/scoring"
	"github.com/gridironhq/gridiron/internal/domain/stats"
	"github.com/gridironhq/gridiron/internal/platform/logging"
)

const defaultReconcileWorkers = 128

type ReconcileInput struct {
	Season int
	Week   int
	// LeagueID narrows the run to one league; empty reconciles every league.
	LeagueID   string
	MaxWorkers int
}

type ReconcileResult struct {
	Season           int    `json:"season"`
	Week             int    `json:"week"`
	LeagueID         string `json:"league_id,omitempty"`
	LineupCount      int    `json:"lineup_count"`
	ScoredCount      int    `json:"scored_count"`
	FailedCount      int    `json:"failed_count"`
	MissingStatCount int    `json:"missing_stat_count"`
	WorkerCount      int    `json:"worker_count"`
	DurationMs       int64  `json:"duration_ms"`
}

// ReconcileService joins persisted lineups to persisted per-entity fantasy
// points and writes back lineup totals. Runs are idempotent: totals are
// overwritten, so a failed lineup is retried by rerunning the week.
type ReconcileService struct {
	store      lineup.Store
	statsRepo  stats.Repository
	logger     *logging.Logger
	maxWorkers int
	now        func() time.Time
}

func NewReconcileService(store lineup.Store, statsRepo stats.Repository, logger *logging.Logger) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{
		store:      store,
		statsRepo:  statsRepo,
		logger:     logger,
		maxWorkers: defaultReconcileWorkers,
		now:        time.Now,
	}
}

func (s *ReconcileService) SetMaxWorkers(count int) {
	if count > 0 {
		s.maxWorkers = count
	}
}

// Reconcile scores every lineup for (season, week), optionally scoped to one
// league. One lineup's failure never aborts the rest of the batch.
func (s *ReconcileService) Reconcile(ctx context.Context, input ReconcileInput) (ReconcileResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.Reconcile")
	defer span.End()

	if input.Season <= 0 {
		return ReconcileResult{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if input.Week <= 0 {
		return ReconcileResult{}, fmt.Errorf("%w: week must be greater than zero", ErrInvalidInput)
	}

	start := s.now()
	leagueID := strings.TrimSpace(input.LeagueID)

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = s.maxWorkers
	}

	result := ReconcileResult{
		Season:      input.Season,
		Week:        input.Week,
		LeagueID:    leagueID,
		WorkerCount: workerCount,
	}

	lineups, err := s.store.ListByWeek(ctx, input.Season, input.Week, leagueID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("list lineups for reconciliation: %w", err)
	}
	result.LineupCount = len(lineups)
	if len(lineups) == 0 {
		result.DurationMs = time.Since(start).Milliseconds()
		return result, nil
	}

	playerPoints, unitPoints, err := s.prefetchWeekPoints(ctx, input.Season, input.Week)
	if err != nil {
		return ReconcileResult{}, err
	}

	var scoredCount atomic.Int32
	var failedCount atomic.Int32
	var missingCount atomic.Int32

	workers, err := ants.NewPool(workerCount)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("create reconcile worker pool: %w", err)
	}
	defer workers.Release()

	var wg sync.WaitGroup
	for _, item := range lineups {
		if ctx.Err() != nil {
			break
		}

		item := item
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			total, missing := s.scoreLineup(ctx, item, playerPoints, unitPoints)
			missingCount.Add(int32(missing))

			if err := s.store.UpdateTotalPoints(ctx, item.UserID, item.LeagueID, item.Season, item.Week, total, s.now().UTC()); err != nil {
				failedCount.Add(1)
				s.logger.ErrorContext(ctx, "write lineup total failed",
					"user_id", item.UserID,
					"league_id", item.LeagueID,
					"season", item.Season,
					"week", item.Week,
					"error", err,
				)
				return
			}
			scoredCount.Add(1)
		}); err != nil {
			wg.Done()
			return ReconcileResult{}, fmt.Errorf("submit lineup to worker pool: %w", err)
		}
	}

	wg.Wait()

	result.ScoredCount = int(scoredCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.MissingStatCount = int(missingCount.Load())
	result.DurationMs = time.Since(start).Milliseconds()

	s.logger.InfoContext(ctx, "reconciliation finished",
		"season", input.Season,
		"week", input.Week,
		"league_id", leagueID,
		"lineups", result.LineupCount,
		"scored", result.ScoredCount,
		"failed", result.FailedCount,
		"missing_stats", result.MissingStatCount,
	)

	return result, nil
}

// prefetchWeekPoints loads the player and team-unit point maps for the week
// concurrently; every slot lookup afterwards is an in-memory read.
func (s *ReconcileService) prefetchWeekPoints(ctx context.Context, season, week int) (map[string]float64, map[string]stats.TeamUnitPoints, error) {
	var playerPoints map[string]float64
	var unitPoints map[string]stats.TeamUnitPoints

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		m, err := s.statsRepo.PlayerPointsByWeek(ctx, season, week)
		if err != nil {
			return fmt.Errorf("load player points season=%d week=%d: %w", season, week, err)
		}
		playerPoints = m
		return nil
	})
	p.Go(func(ctx context.Context) error {
		m, err := s.statsRepo.TeamUnitPointsByWeek(ctx, season, week)
		if err != nil {
			return fmt.Errorf("load team unit points season=%d week=%d: %w", season, week, err)
		}
		unitPoints = m
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, nil, err
	}

	return playerPoints, unitPoints, nil
}

// scoreLineup sums the lineup's slot contributions. A pick with no stat row
// contributes zero and is logged as a gap rather than failing the lineup.
func (s *ReconcileService) scoreLineup(
	ctx context.Context,
	item lineup.WeeklyLineup,
	playerPoints map[string]float64,
	unitPoints map[string]stats.TeamUnitPoints,
) (float64, int) {
	total := 0.0
	missing := 0

	for slot, pick := range item.Picks {
		points, ok := lookupPickPoints(slot, pick, playerPoints, unitPoints)
		if !ok {
			missing++
			s.logger.WarnContext(ctx, "missing game stat for pick",
				"user_id", item.UserID,
				"league_id", item.LeagueID,
				"season", item.Season,
				"week", item.Week,
				"slot", string(slot),
				"entity", pick.Ref().Key(),
			)
			continue
		}
		total += points
	}

	return scoring.Round2(total), missing
}

func lookupPickPoints(
	slot lineup.Slot,
	pick lineup.Pick,
	playerPoints map[string]float64,
	unitPoints map[string]stats.TeamUnitPoints,
) (float64, bool) {
	if pick.Kind == lineup.KindPlayer {
		points, ok := playerPoints[pick.EntityID]
		return points, ok
	}

	units, ok := unitPoints[pick.EntityID]
	if !ok {
		return 0, false
	}
	switch slot {
	case lineup.SlotPassingOffense:
		return units.Passing, true
	case lineup.SlotRushingOffense:
		return units.Rushing, true
	case lineup.SlotDefense:
		return units.Defense, true
	case lineup.SlotSpecialTeams:
		return units.SpecialTeams, true
	default:
		return 0, false
	}
}
