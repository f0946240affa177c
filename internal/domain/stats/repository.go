package stats

import "context"

// Repository describes game-stat persistence needs from use cases.
type Repository interface {
	UpsertPlayerGameStats(ctx context.Context, items []PlayerGameStat) error
	UpsertTeamGameStats(ctx context.Context, items []TeamGameStat) error

	// PlayerPointsByWeek maps player id to that player's fantasy points for
	// the given season week.
	PlayerPointsByWeek(ctx context.Context, season, week int) (map[string]float64, error)

	// TeamUnitPointsByWeek maps team id to the four unit point values for the
	// given season week.
	TeamUnitPointsByWeek(ctx context.Context, season, week int) (map[string]TeamUnitPoints, error)
}

// TeamUnitPoints is the reconciler's view of one team's unit scores.
type TeamUnitPoints struct {
	Passing      float64
	Rushing      float64
	Defense      float64
	SpecialTeams float64
}
