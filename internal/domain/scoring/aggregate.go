package scoring

import "github.com/gridironhq/gridiron/internal/domain/stats"

// TeamAggregate collapses one game's player lines into the raw per-team
// totals the unit formulas consume.
type TeamAggregate struct {
	TeamID string
	GameID string

	PassingYards        int
	PassingTDs          int
	InterceptionsThrown int
	RushingYards        int
	RushingTDs          int
	ExtraPointsMade     int
	FieldGoalsMade      int
	ReturnTDs           int
}

// AggregateTeamGame sums the stat lines attributable to teamID for one game.
// A line counts iff its recorded game-time team equals teamID; the player's
// current roster team is irrelevant here.
func AggregateTeamGame(lines []stats.PlayerLine, teamID string) TeamAggregate {
	agg := TeamAggregate{TeamID: teamID}
	for _, line := range lines {
		if line.TeamID != teamID {
			continue
		}
		if agg.GameID == "" {
			agg.GameID = line.GameID
		}
		agg.PassingYards += line.PassingYards
		agg.PassingTDs += line.PassingTDs
		agg.InterceptionsThrown += line.Interceptions
		agg.RushingYards += line.RushingYards
		agg.RushingTDs += line.RushingTDs
		agg.ExtraPointsMade += line.ExtraPointsMd
		agg.FieldGoalsMade += line.FieldGoalsMd
		agg.ReturnTDs += line.KickReturnTDs + line.PuntReturnTDs + line.FumReturnTDs
	}
	return agg
}
