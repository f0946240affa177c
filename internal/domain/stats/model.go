package stats

import "time"

// PlayerLine is one player's raw stat line for one game, as delivered by the
// ingestion pipeline. TeamID is the team the player dressed for in that game,
// not the current roster team.
type PlayerLine struct {
	PlayerID string
	GameID   string
	Season   int
	Week     int
	TeamID   string

	PassingYards  int
	PassingTDs    int
	Interceptions int
	RushingYards  int
	RushingTDs    int
	ReceivingYard int
	ReceivingTDs  int
	TwoPointConvs int
	FumblesLost   int
	ExtraPointsMd int
	FieldGoalsMd  int
	KickReturnTDs int
	PuntReturnTDs int
	FumReturnTDs  int
}

// PlayerGameStat is the persisted, scored form of a player line. Rows are
// written once at ingestion and immutable afterwards.
type PlayerGameStat struct {
	Line          PlayerLine
	FantasyPoints float64
	IngestedAt    time.Time
}

// TeamDefenseLine carries the raw team-level defensive and special-teams
// stats that cannot be derived from individual offensive lines.
type TeamDefenseLine struct {
	TeamID string
	GameID string

	PointsAllowed    int
	Sacks            int
	InterceptionsMd  int
	FumblesRecovered int
	Safeties         int
	DefensiveTDs     int
	XPReturns        int
}

// TeamGameStat is the persisted per-team-unit scoring record for one game:
// raw aggregates plus the four computed unit point values.
type TeamGameStat struct {
	TeamID string
	GameID string
	Season int
	Week   int

	PassingYards     int
	PassingTDs       int
	InterceptionsThr int
	RushingYards     int
	RushingTDs       int
	ExtraPointsMade  int
	FieldGoalsMade   int
	ReturnTDs        int
	PointsAllowed    int
	Sacks            int
	InterceptionsMd  int
	FumblesRecovered int
	Safeties         int
	DefensiveTDs     int
	XPReturns        int

	PassingPoints      float64
	RushingPoints      float64
	DefensePoints      float64
	SpecialTeamsPoints float64

	IngestedAt time.Time
}
