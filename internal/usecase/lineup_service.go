package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gridironhq/gridiron/internal/domain/league"
	"github.com/gridironhq/gridiron/internal/domain/lineup"
	"github.com/gridironhq/gridiron/internal/domain/schedule"
	"github.com/gridironhq/gridiron/internal/platform/logging"
)

const (
	defaultSeasonWeeks = 18
	defaultUsageCap    = 5
)

// PickInput is one slot assignment as submitted by the caller. Slot and Kind
// arrive as raw strings and are parsed before anything is written.
type PickInput struct {
	Slot     string
	EntityID string
	Kind     string
}

type SaveLineupInput struct {
	UserID   string
	LeagueID string
	Season   int
	Week     int
	Picks    []PickInput
}

// LineupService gates weekly lineup saves behind validation, the kickoff
// deadline, and the per-entity usage cap, and delegates the atomic write to
// the lineup store.
type LineupService struct {
	leagueRepo   league.Repository
	scheduleRepo schedule.Repository
	store        lineup.Store
	logger       *logging.Logger
	seasonWeeks  int
	usageCap     int
	now          func() time.Time
}

func NewLineupService(
	leagueRepo league.Repository,
	scheduleRepo schedule.Repository,
	store lineup.Store,
	logger *logging.Logger,
) *LineupService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LineupService{
		leagueRepo:   leagueRepo,
		scheduleRepo: scheduleRepo,
		store:        store,
		logger:       logger,
		seasonWeeks:  defaultSeasonWeeks,
		usageCap:     defaultUsageCap,
		now:          time.Now,
	}
}

// SetLimits overrides the regular-season week count and the usage cap.
func (s *LineupService) SetLimits(seasonWeeks, usageCap int) {
	if seasonWeeks > 0 {
		s.seasonWeeks = seasonWeeks
	}
	if usageCap > 0 {
		s.usageCap = usageCap
	}
}

func (s *LineupService) GetByKey(ctx context.Context, userID, leagueID string, season, week int) (lineup.WeeklyLineup, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.GetByKey")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" || leagueID == "" {
		return lineup.WeeklyLineup{}, false, fmt.Errorf("%w: user_id and league_id are required", ErrInvalidInput)
	}

	item, exists, err := s.store.GetByKey(ctx, userID, leagueID, season, week)
	if err != nil {
		return lineup.WeeklyLineup{}, false, fmt.Errorf("get lineup by key: %w", err)
	}
	return item, exists, nil
}

// Save validates the submission, enforces the deadline, and persists the
// lineup together with its usage counter increments in one atomic write.
// A rejected save changes nothing: not the lineup, not a single counter.
func (s *LineupService) Save(ctx context.Context, input SaveLineupInput) (lineup.WeeklyLineup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.Save")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.LeagueID = strings.TrimSpace(input.LeagueID)

	if input.UserID == "" {
		return lineup.WeeklyLineup{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if input.LeagueID == "" {
		return lineup.WeeklyLineup{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}
	if input.Week < 1 || input.Week > s.seasonWeeks {
		return lineup.WeeklyLineup{}, fmt.Errorf("%w: week must be between 1 and %d", ErrInvalidInput, s.seasonWeeks)
	}
	if input.Season <= 0 {
		return lineup.WeeklyLineup{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}
	if len(input.Picks) == 0 {
		return lineup.WeeklyLineup{}, fmt.Errorf("%w: picks cannot be empty", ErrInvalidInput)
	}

	now := s.now().UTC()
	picks, err := parsePicks(input.Picks, now)
	if err != nil {
		return lineup.WeeklyLineup{}, err
	}

	if err := s.validateLeague(ctx, input.LeagueID, input.UserID); err != nil {
		return lineup.WeeklyLineup{}, err
	}
	if err := s.checkDeadline(ctx, input.Season, input.Week, now); err != nil {
		return lineup.WeeklyLineup{}, err
	}

	item := lineup.WeeklyLineup{
		UserID:    input.UserID,
		LeagueID:  input.LeagueID,
		Season:    input.Season,
		Week:      input.Week,
		Picks:     picks,
		UpdatedAt: now,
	}
	item.RecomputeComplete()

	refs := item.EntityRefs()
	sort.Slice(refs, func(i, j int) bool { return refs[i].Key() < refs[j].Key() })

	if err := s.store.SaveLineup(ctx, item, refs, s.usageCap); err != nil {
		return lineup.WeeklyLineup{}, fmt.Errorf("save lineup: %w", err)
	}

	s.logger.InfoContext(ctx, "lineup saved",
		"user_id", input.UserID,
		"league_id", input.LeagueID,
		"season", input.Season,
		"week", input.Week,
		"picks", len(picks),
		"complete", item.Complete,
	)

	return item, nil
}

// checkDeadline fails closed: a missing schedule or a week without usable
// kickoffs must never be treated as an open submission window.
func (s *LineupService) checkDeadline(ctx context.Context, season, week int, now time.Time) error {
	weekSchedule, exists, err := s.scheduleRepo.GetWeek(ctx, season, week)
	if err != nil {
		return fmt.Errorf("get weekly schedule: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: season=%d week=%d", ErrScheduleUnavailable, season, week)
	}

	lock, ok := weekSchedule.LockTime()
	if !ok {
		return fmt.Errorf("%w: cannot determine deadline for season=%d week=%d", ErrScheduleUnavailable, season, week)
	}
	if !now.Before(lock) {
		return fmt.Errorf("%w: locked at %s", ErrDeadlinePassed, lock.UTC().Format(time.RFC3339))
	}

	return nil
}

func (s *LineupService) validateLeague(ctx context.Context, leagueID, userID string) error {
	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("get league by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	if err := item.ValidateBasic(); err != nil {
		return fmt.Errorf("%w: league=%s: %v", ErrDataIntegrity, leagueID, err)
	}
	if !item.HasMember(userID) {
		return fmt.Errorf("%w: user=%s is not a member of league=%s", ErrUnauthorized, userID, leagueID)
	}

	return nil
}

// parsePicks rejects the whole submission on any unknown slot, unknown kind,
// kind/slot mismatch, duplicate slot, or empty id. No partial acceptance.
func parsePicks(inputs []PickInput, now time.Time) (map[lineup.Slot]lineup.Pick, error) {
	picks := make(map[lineup.Slot]lineup.Pick, len(inputs))
	for _, in := range inputs {
		slot, err := lineup.ParseSlot(in.Slot)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, ok := picks[slot]; ok {
			return nil, fmt.Errorf("%w: duplicate slot %s", ErrInvalidInput, slot)
		}

		kind, err := lineup.ParseEntityKind(in.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: slot %s: %v", ErrInvalidInput, slot, err)
		}
		if lineup.AllSlots[slot] != kind {
			return nil, fmt.Errorf("%w: slot %s requires kind %s", ErrInvalidInput, slot, lineup.AllSlots[slot])
		}

		entityID := strings.TrimSpace(in.EntityID)
		if entityID == "" {
			return nil, fmt.Errorf("%w: slot %s has empty entity id", ErrInvalidInput, slot)
		}

		picks[slot] = lineup.Pick{
			EntityID: entityID,
			Kind:     kind,
			PickedAt: now,
		}
	}

	return picks, nil
}
