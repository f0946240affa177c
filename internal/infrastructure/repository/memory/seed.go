package memory

import (
	"time"

	"github.com/gridironhq/gridiron/internal/domain/league"
	"github.com/gridironhq/gridiron/internal/domain/schedule"
)

const (
	SeedLeagueID = "demo-league"
	SeedSeason   = 2025
)

// SeedLeagues returns the demo league used when the service runs without a
// database.
func SeedLeagues() []league.League {
	createdAt := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	return []league.League{
		{
			ID:          SeedLeagueID,
			Name:        "Gridiron Demo League",
			AdminUserID: "user-admin",
			JoinCode:    "271828",
			Visible:     true,
			Members: []league.Member{
				{UserID: "user-admin", TeamName: "Commissioner's Crew", JoinedAt: createdAt},
				{UserID: "user-alice", TeamName: "Alice's Avalanche", JoinedAt: createdAt.Add(time.Hour)},
				{UserID: "user-bob", TeamName: "Bob's Blitz", JoinedAt: createdAt.Add(2 * time.Hour)},
			},
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		},
	}
}

// SeedGames returns a week-1 slate so the deadline guard has a lock time.
func SeedGames() []schedule.Game {
	sunday := time.Date(2025, time.September, 7, 17, 0, 0, 0, time.UTC)
	return []schedule.Game{
		{GameID: "2025-01-DAL-PHI", Season: SeedSeason, Week: 1, HomeTeamID: "PHI", AwayTeamID: "DAL", KickoffAt: sunday.Add(-72 * time.Hour), Status: schedule.StatusScheduled},
		{GameID: "2025-01-KC-BUF", Season: SeedSeason, Week: 1, HomeTeamID: "BUF", AwayTeamID: "KC", KickoffAt: sunday, Status: schedule.StatusScheduled},
		{GameID: "2025-01-SF-SEA", Season: SeedSeason, Week: 1, HomeTeamID: "SEA", AwayTeamID: "SF", KickoffAt: sunday.Add(3 * time.Hour), Status: schedule.StatusScheduled},
		{GameID: "2025-01-NYG-WAS", Season: SeedSeason, Week: 1, HomeTeamID: "WAS", AwayTeamID: "NYG", KickoffAt: sunday.Add(27 * time.Hour), Status: schedule.StatusScheduled},
	}
}
