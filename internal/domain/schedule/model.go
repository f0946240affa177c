package schedule

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinal     = "FINAL"
	StatusPostponed = "POSTPONED"
)

// Game is one scheduled NFL game.
type Game struct {
	GameID     string
	Season     int
	Week       int
	HomeTeamID string
	AwayTeamID string
	KickoffAt  time.Time
	Status     string
}

// WeeklySchedule lists the games of one season week. It is written by the
// external sync job and read-only input to the deadline guard.
type WeeklySchedule struct {
	Season int
	Week   int
	Games  []Game
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinalStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinal, "F", "FT", "CLOSED":
		return true
	default:
		return false
	}
}

// LockTime returns the lineup lock instant for the week: the earliest usable
// kickoff. ok is false when the week has no games or no kickoff instants, in
// which case callers must fail closed rather than treat the week as open.
func (s WeeklySchedule) LockTime() (time.Time, bool) {
	var min time.Time
	for _, game := range s.Games {
		if game.KickoffAt.IsZero() {
			continue
		}
		if min.IsZero() || game.KickoffAt.Before(min) {
			min = game.KickoffAt
		}
	}
	if min.IsZero() {
		return time.Time{}, false
	}
	return min, true
}
