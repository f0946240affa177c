package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gridironhq/gridiron/internal/domain/league"
	"github.com/gridironhq/gridiron/internal/domain/lineup"
	"github.com/gridironhq/gridiron/internal/domain/schedule"
	"github.com/gridironhq/gridiron/internal/infrastructure/repository/memory"
	"github.com/gridironhq/gridiron/internal/platform/logging"
)

const (
	testLeagueID = "league-1"
	testUserID   = "user-1"
	testSeason   = 2025
)

// week-1 lock instant used across the lineup tests.
var week1Lock = time.Date(2025, time.September, 7, 17, 0, 0, 0, time.UTC)

func newLineupServiceFixture(t *testing.T) (*LineupService, *memory.LineupStore) {
	t.Helper()
	ctx := context.Background()

	leagueRepo := memory.NewLeagueRepository()
	if err := leagueRepo.Create(ctx, league.League{
		ID:          testLeagueID,
		Name:        "Test League",
		AdminUserID: testUserID,
		JoinCode:    "123456",
		Visible:     true,
		Members: []league.Member{
			{UserID: testUserID, TeamName: "Ones", JoinedAt: week1Lock.Add(-30 * 24 * time.Hour)},
			{UserID: "user-2", TeamName: "Twos", JoinedAt: week1Lock.Add(-29 * 24 * time.Hour)},
		},
		CreatedAt: week1Lock.Add(-30 * 24 * time.Hour),
		UpdatedAt: week1Lock.Add(-30 * 24 * time.Hour),
	}); err != nil {
		t.Fatalf("seed league: %v", err)
	}

	scheduleRepo := memory.NewScheduleRepository()
	if err := scheduleRepo.UpsertGames(ctx, []schedule.Game{
		{GameID: "g-1", Season: testSeason, Week: 1, HomeTeamID: "PHI", AwayTeamID: "DAL", KickoffAt: week1Lock, Status: schedule.StatusScheduled},
		{GameID: "g-2", Season: testSeason, Week: 1, HomeTeamID: "BUF", AwayTeamID: "KC", KickoffAt: week1Lock.Add(3 * time.Hour), Status: schedule.StatusScheduled},
		{GameID: "g-3", Season: testSeason, Week: 2, HomeTeamID: "SEA", AwayTeamID: "SF", KickoffAt: week1Lock.Add(7 * 24 * time.Hour), Status: schedule.StatusScheduled},
	}); err != nil {
		t.Fatalf("seed games: %v", err)
	}

	store := memory.NewLineupStore()
	svc := NewLineupService(leagueRepo, scheduleRepo, store, logging.NewNop())
	svc.now = func() time.Time { return week1Lock.Add(-10 * time.Minute) }

	return svc, store
}

func saveInput(week int, picks ...PickInput) SaveLineupInput {
	return SaveLineupInput{
		UserID:   testUserID,
		LeagueID: testLeagueID,
		Season:   testSeason,
		Week:     week,
		Picks:    picks,
	}
}

func usageOf(t *testing.T, store *memory.LineupStore, kind lineup.EntityKind, entityID string) int {
	t.Helper()
	uses, err := store.GetUsage(context.Background(), testLeagueID, testSeason, testUserID, lineup.EntityRef{Kind: kind, EntityID: entityID})
	if err != nil {
		t.Fatalf("get usage: %v", err)
	}
	return uses
}

func TestLineupSave_BeforeDeadline(t *testing.T) {
	svc, store := newLineupServiceFixture(t)

	item, err := svc.Save(context.Background(), saveInput(1,
		PickInput{Slot: "QB", EntityID: "p-qb", Kind: "player"},
		PickInput{Slot: "DEF", EntityID: "team-phi", Kind: "team_unit"},
	))
	if err != nil {
		t.Fatalf("save lineup: %v", err)
	}
	if item.Complete {
		t.Fatalf("two of eight slots must not be complete")
	}
	if item.TotalPoints != nil {
		t.Fatalf("fresh lineup must have nil total points")
	}

	stored, exists, err := store.GetByKey(context.Background(), testUserID, testLeagueID, testSeason, 1)
	if err != nil || !exists {
		t.Fatalf("read back lineup: exists=%t err=%v", exists, err)
	}
	if stored.Picks[lineup.SlotQB].EntityID != "p-qb" {
		t.Fatalf("unexpected QB pick: %+v", stored.Picks[lineup.SlotQB])
	}
	if got := usageOf(t, store, lineup.KindPlayer, "p-qb"); got != 1 {
		t.Fatalf("expected QB usage 1, got %d", got)
	}
	if got := usageOf(t, store, lineup.KindTeamUnit, "team-phi"); got != 1 {
		t.Fatalf("expected DEF usage 1, got %d", got)
	}
}

func TestLineupSave_FullLineupIsComplete(t *testing.T) {
	svc, _ := newLineupServiceFixture(t)

	item, err := svc.Save(context.Background(), saveInput(1,
		PickInput{Slot: "QB", EntityID: "p-1", Kind: "player"},
		PickInput{Slot: "RB", EntityID: "p-2", Kind: "player"},
		PickInput{Slot: "WR", EntityID: "p-3", Kind: "player"},
		PickInput{Slot: "TE", EntityID: "p-4", Kind: "player"},
		PickInput{Slot: "PASS_OFF", EntityID: "team-a", Kind: "team_unit"},
		PickInput{Slot: "RUSH_OFF", EntityID: "team-b", Kind: "team_unit"},
		PickInput{Slot: "DEF", EntityID: "team-c", Kind: "team_unit"},
		PickInput{Slot: "ST", EntityID: "team-d", Kind: "team_unit"},
	))
	if err != nil {
		t.Fatalf("save full lineup: %v", err)
	}
	if !item.Complete {
		t.Fatalf("all eight slots filled must be complete")
	}
}

func TestLineupSave_ResubmitReplacesWholesaleAndKeepsCounting(t *testing.T) {
	svc, store := newLineupServiceFixture(t)
	ctx := context.Background()

	if _, err := svc.Save(ctx, saveInput(1, PickInput{Slot: "QB", EntityID: "p-first", Kind: "player"})); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := svc.Save(ctx, saveInput(1,
		PickInput{Slot: "QB", EntityID: "p-second", Kind: "player"},
		PickInput{Slot: "RB", EntityID: "p-rb", Kind: "player"},
	)); err != nil {
		t.Fatalf("resubmit: %v", err)
	}

	stored, _, err := store.GetByKey(ctx, testUserID, testLeagueID, testSeason, 1)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(stored.Picks) != 2 {
		t.Fatalf("resubmit must replace picks wholesale, got %d picks", len(stored.Picks))
	}
	if stored.Picks[lineup.SlotQB].EntityID != "p-second" {
		t.Fatalf("expected replaced QB pick, got %+v", stored.Picks[lineup.SlotQB])
	}

	// Counters never decrement: the dropped pick keeps its consumed use.
	if got := usageOf(t, store, lineup.KindPlayer, "p-first"); got != 1 {
		t.Fatalf("dropped pick usage must stay at 1, got %d", got)
	}
	if got := usageOf(t, store, lineup.KindPlayer, "p-second"); got != 1 {
		t.Fatalf("expected new pick usage 1, got %d", got)
	}

	// A third save re-listing the same entity consumes another use.
	if _, err := svc.Save(ctx, saveInput(1, PickInput{Slot: "QB", EntityID: "p-second", Kind: "player"})); err != nil {
		t.Fatalf("third save: %v", err)
	}
	if got := usageOf(t, store, lineup.KindPlayer, "p-second"); got != 2 {
		t.Fatalf("expected usage 2 after re-listing, got %d", got)
	}
}

func TestLineupSave_RejectsAtLockInstant(t *testing.T) {
	svc, store := newLineupServiceFixture(t)
	svc.now = func() time.Time { return week1Lock }

	_, err := svc.Save(context.Background(), saveInput(1, PickInput{Slot: "QB", EntityID: "p-late", Kind: "player"}))
	if !errors.Is(err, ErrDeadlinePassed) {
		t.Fatalf("expected ErrDeadlinePassed at the lock instant, got %v", err)
	}

	if got := usageOf(t, store, lineup.KindPlayer, "p-late"); got != 0 {
		t.Fatalf("rejected save must not touch counters, got usage %d", got)
	}
	if _, exists, _ := store.GetByKey(context.Background(), testUserID, testLeagueID, testSeason, 1); exists {
		t.Fatalf("rejected save must not persist a lineup")
	}
}

func TestLineupSave_UsageCapRejectionIsAtomic(t *testing.T) {
	svc, store := newLineupServiceFixture(t)
	svc.SetLimits(18, 1)
	ctx := context.Background()

	if _, err := svc.Save(ctx, saveInput(1, PickInput{Slot: "QB", EntityID: "p-star", Kind: "player"})); err != nil {
		t.Fatalf("week 1 save: %v", err)
	}

	_, err := svc.Save(ctx, saveInput(2,
		PickInput{Slot: "QB", EntityID: "p-star", Kind: "player"},
		PickInput{Slot: "DEF", EntityID: "team-fresh", Kind: "team_unit"},
	))
	if !errors.Is(err, lineup.ErrUsageCapExceeded) {
		t.Fatalf("expected ErrUsageCapExceeded, got %v", err)
	}

	// The whole submission failed: the capped entity stays at 1 use and the
	// entity that was under the cap gains nothing.
	if got := usageOf(t, store, lineup.KindPlayer, "p-star"); got != 1 {
		t.Fatalf("capped entity usage must stay at 1, got %d", got)
	}
	if got := usageOf(t, store, lineup.KindTeamUnit, "team-fresh"); got != 0 {
		t.Fatalf("sibling pick must not consume a use on rejection, got %d", got)
	}
	if _, exists, _ := store.GetByKey(ctx, testUserID, testLeagueID, testSeason, 2); exists {
		t.Fatalf("rejected save must not persist a week-2 lineup")
	}
}

func TestLineupSave_FailsClosedWithoutSchedule(t *testing.T) {
	svc, _ := newLineupServiceFixture(t)

	_, err := svc.Save(context.Background(), saveInput(3, PickInput{Slot: "QB", EntityID: "p-1", Kind: "player"}))
	if !errors.Is(err, ErrScheduleUnavailable) {
		t.Fatalf("expected ErrScheduleUnavailable for a week without games, got %v", err)
	}
}

func TestLineupSave_InputValidation(t *testing.T) {
	svc, _ := newLineupServiceFixture(t)
	ctx := context.Background()

	validPick := PickInput{Slot: "QB", EntityID: "p-1", Kind: "player"}

	cases := []struct {
		name    string
		input   SaveLineupInput
		wantErr error
	}{
		{"missing user", SaveLineupInput{LeagueID: testLeagueID, Season: testSeason, Week: 1, Picks: []PickInput{validPick}}, ErrInvalidInput},
		{"missing league", SaveLineupInput{UserID: testUserID, Season: testSeason, Week: 1, Picks: []PickInput{validPick}}, ErrInvalidInput},
		{"week zero", saveInput(0, validPick), ErrInvalidInput},
		{"week beyond season", saveInput(19, validPick), ErrInvalidInput},
		{"no picks", saveInput(1), ErrInvalidInput},
		{"unknown slot", saveInput(1, PickInput{Slot: "K", EntityID: "p-1", Kind: "player"}), ErrInvalidInput},
		{"kind mismatch", saveInput(1, PickInput{Slot: "QB", EntityID: "team-a", Kind: "team_unit"}), ErrInvalidInput},
		{"duplicate slot", saveInput(1, validPick, PickInput{Slot: "QB", EntityID: "p-2", Kind: "player"}), ErrInvalidInput},
		{"empty entity id", saveInput(1, PickInput{Slot: "QB", EntityID: "  ", Kind: "player"}), ErrInvalidInput},
		{"unknown league", SaveLineupInput{UserID: testUserID, LeagueID: "nope", Season: testSeason, Week: 1, Picks: []PickInput{validPick}}, ErrNotFound},
		{"non-member user", SaveLineupInput{UserID: "user-stranger", LeagueID: testLeagueID, Season: testSeason, Week: 1, Picks: []PickInput{validPick}}, ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Save(ctx, tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLineupGetByKey_RequiresIdentity(t *testing.T) {
	svc, _ := newLineupServiceFixture(t)

	if _, _, err := svc.GetByKey(context.Background(), " ", testLeagueID, testSeason, 1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank user id, got %v", err)
	}

	_, exists, err := svc.GetByKey(context.Background(), testUserID, testLeagueID, testSeason, 1)
	if err != nil {
		t.Fatalf("get by key: %v", err)
	}
	if exists {
		t.Fatalf("expected no lineup before any save")
	}
}
