package lineup

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// EntityKind distinguishes the two id spaces a slot can reference. A player
// id and a team id may collide numerically, so identity is always carried as
// a kind-qualified pair.
type EntityKind string

const (
	KindPlayer   EntityKind = "player"
	KindTeamUnit EntityKind = "team_unit"
)

func ParseEntityKind(value string) (EntityKind, error) {
	switch EntityKind(strings.ToLower(strings.TrimSpace(value))) {
	case KindPlayer:
		return KindPlayer, nil
	case KindTeamUnit:
		return KindTeamUnit, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityKind, value)
	}
}

// Slot is one of the eight fixed roles a weekly lineup fills.
type Slot string

const (
	SlotQB             Slot = "QB"
	SlotRB             Slot = "RB"
	SlotWR             Slot = "WR"
	SlotTE             Slot = "TE"
	SlotPassingOffense Slot = "PASS_OFF"
	SlotRushingOffense Slot = "RUSH_OFF"
	SlotDefense        Slot = "DEF"
	SlotSpecialTeams   Slot = "ST"
)

// AllSlots maps each valid slot to the entity kind it accepts.
var AllSlots = map[Slot]EntityKind{
	SlotQB:             KindPlayer,
	SlotRB:             KindPlayer,
	SlotWR:             KindPlayer,
	SlotTE:             KindPlayer,
	SlotPassingOffense: KindTeamUnit,
	SlotRushingOffense: KindTeamUnit,
	SlotDefense:        KindTeamUnit,
	SlotSpecialTeams:   KindTeamUnit,
}

const SlotCount = 8

var (
	ErrUnknownSlot       = errors.New("unknown lineup slot")
	ErrUnknownEntityKind = errors.New("unknown entity kind")
	ErrSlotKindMismatch  = errors.New("entity kind does not match slot")
	ErrUsageCapExceeded  = errors.New("usage cap exceeded")
)

func ParseSlot(value string) (Slot, error) {
	slot := Slot(strings.ToUpper(strings.TrimSpace(value)))
	if _, ok := AllSlots[slot]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, value)
	}
	return slot, nil
}

// EntityRef is the kind-qualified identity of a player or team unit.
type EntityRef struct {
	Kind     EntityKind
	EntityID string
}

// Key returns the composite identity used for usage accounting.
func (r EntityRef) Key() string {
	return string(r.Kind) + ":" + r.EntityID
}

// Pick is one slot assignment inside a weekly lineup.
type Pick struct {
	EntityID string
	Kind     EntityKind
	PickedAt time.Time
}

func (p Pick) Ref() EntityRef {
	return EntityRef{Kind: p.Kind, EntityID: p.EntityID}
}

// WeeklyLineup stores one user's picks for a league week. TotalPoints stays
// nil until reconciliation writes it back.
type WeeklyLineup struct {
	UserID      string
	LeagueID    string
	Season      int
	Week        int
	Picks       map[Slot]Pick
	Complete    bool
	TotalPoints *float64
	UpdatedAt   time.Time
}

// RecomputeComplete sets the completeness flag: true iff all slots are filled.
func (l *WeeklyLineup) RecomputeComplete() {
	l.Complete = len(l.Picks) == SlotCount
}

// EntityRefs returns the deduplicated set of entities implied by the picks.
func (l WeeklyLineup) EntityRefs() []EntityRef {
	seen := make(map[string]struct{}, len(l.Picks))
	refs := make([]EntityRef, 0, len(l.Picks))
	for _, pick := range l.Picks {
		ref := pick.Ref()
		if _, ok := seen[ref.Key()]; ok {
			continue
		}
		seen[ref.Key()] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

// UsageCount tracks how many weeks one user has selected one entity within a
// league season. Increment-only: overwriting a lineup before the deadline
// still consumes one use per saved pick.
type UsageCount struct {
	LeagueID string
	Season   int
	UserID   string
	Entity   EntityRef
	Uses     int
}
