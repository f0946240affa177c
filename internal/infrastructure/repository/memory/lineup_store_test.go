package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gridironhq/gridiron/internal/domain/lineup"
)

func testLineup(userID string, week int) lineup.WeeklyLineup {
	return lineup.WeeklyLineup{
		UserID:   userID,
		LeagueID: "lg-1",
		Season:   2025,
		Week:     week,
		Picks: map[lineup.Slot]lineup.Pick{
			lineup.SlotQB: {EntityID: "p-qb", Kind: lineup.KindPlayer, PickedAt: time.Now()},
		},
		UpdatedAt: time.Now(),
	}
}

func TestSaveLineupEnforcesCapUnderConcurrency(t *testing.T) {
	store := NewLineupStore()
	ctx := context.Background()

	ref := lineup.EntityRef{Kind: lineup.KindPlayer, EntityID: "p-qb"}
	const maxUses = 5
	const attempts = 20

	var saved atomic.Int32
	var rejected atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(week int) {
			defer wg.Done()
			<-start
			item := testLineup("user-1", week)
			err := store.SaveLineup(ctx, item, item.EntityRefs(), maxUses)
			switch {
			case err == nil:
				saved.Add(1)
			case errors.Is(err, lineup.ErrUsageCapExceeded):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i + 1)
	}

	close(start)
	wg.Wait()

	if got := saved.Load(); got != maxUses {
		t.Fatalf("saved = %d, want %d", got, maxUses)
	}
	if got := rejected.Load(); got != attempts-maxUses {
		t.Fatalf("rejected = %d, want %d", got, attempts-maxUses)
	}

	uses, err := store.GetUsage(ctx, "lg-1", 2025, "user-1", ref)
	if err != nil {
		t.Fatalf("GetUsage: %v", err)
	}
	if uses != maxUses {
		t.Fatalf("uses = %d, want %d", uses, maxUses)
	}
}

func TestSaveLineupRejectionLeavesNoTrace(t *testing.T) {
	store := NewLineupStore()
	ctx := context.Background()

	item := testLineup("user-1", 1)
	refs := item.EntityRefs()

	for i := 0; i < 5; i++ {
		if err := store.SaveLineup(ctx, item, refs, 5); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	rejectedWeek := testLineup("user-1", 6)
	err := store.SaveLineup(ctx, rejectedWeek, rejectedWeek.EntityRefs(), 5)
	if !errors.Is(err, lineup.ErrUsageCapExceeded) {
		t.Fatalf("err = %v, want ErrUsageCapExceeded", err)
	}

	if _, exists, _ := store.GetByKey(ctx, "user-1", "lg-1", 2025, 6); exists {
		t.Fatal("rejected save must not persist a lineup")
	}
	uses, _ := store.GetUsage(ctx, "lg-1", 2025, "user-1", lineup.EntityRef{Kind: lineup.KindPlayer, EntityID: "p-qb"})
	if uses != 5 {
		t.Fatalf("uses = %d, want 5 after rejection", uses)
	}
}

func TestSaveLineupResetsTotalPoints(t *testing.T) {
	store := NewLineupStore()
	ctx := context.Background()

	item := testLineup("user-1", 1)
	if err := store.SaveLineup(ctx, item, item.EntityRefs(), 5); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.UpdateTotalPoints(ctx, "user-1", "lg-1", 2025, 1, 99.5, time.Now()); err != nil {
		t.Fatalf("UpdateTotalPoints: %v", err)
	}

	if err := store.SaveLineup(ctx, item, item.EntityRefs(), 5); err != nil {
		t.Fatalf("resave: %v", err)
	}

	saved, exists, err := store.GetByKey(ctx, "user-1", "lg-1", 2025, 1)
	if err != nil || !exists {
		t.Fatalf("GetByKey: exists=%v err=%v", exists, err)
	}
	if saved.TotalPoints != nil {
		t.Fatalf("TotalPoints = %v, want nil after resubmission", *saved.TotalPoints)
	}
}
