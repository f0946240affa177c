package scoring

import (
	"math"

	"github.com/gridironhq/gridiron/internal/domain/stats"
)

// Rules stores the league-rule scoring parameters. Yardage rates are
// fractional on purpose: point values carry cents and must not be truncated.
type Rules struct {
	PassingYardRate   float64
	RushingYardRate   float64
	ReceivingYardRate float64

	TouchdownPoints     float64
	InterceptionPenalty float64
	TwoPointConvPoints  float64
	FumbleLostPenalty   float64

	// PassingOffenseIntPenalty enables the rule variant that docks the
	// passing-offense unit for interceptions thrown.
	PassingOffenseIntPenalty bool

	ExtraPointPoints float64
	FieldGoalPoints  float64
	XPReturnPoints   float64

	TakeawayPoints float64
	SackPoints     float64
	SafetyPoints   float64
}

func DefaultRules() Rules {
	return Rules{
		PassingYardRate:          1.0 / 25.0,
		RushingYardRate:          1.0 / 10.0,
		ReceivingYardRate:        1.0 / 10.0,
		TouchdownPoints:          6,
		InterceptionPenalty:      2,
		TwoPointConvPoints:       2,
		FumbleLostPenalty:        2,
		PassingOffenseIntPenalty: false,
		ExtraPointPoints:         1,
		FieldGoalPoints:          3,
		XPReturnPoints:           2,
		TakeawayPoints:           2,
		SackPoints:               1,
		SafetyPoints:             2,
	}
}

// Round2 rounds half-up on the cent. Every point formula in this package
// rounds through this one helper so summation order never changes a result.
func Round2(value float64) float64 {
	return math.Floor(value*100+0.5) / 100
}

// PlayerPoints maps one player's raw game line to fantasy points.
func PlayerPoints(line stats.PlayerLine, rules Rules) float64 {
	total := float64(line.PassingYards)*rules.PassingYardRate +
		float64(line.PassingTDs)*rules.TouchdownPoints -
		float64(line.Interceptions)*rules.InterceptionPenalty +
		float64(line.RushingYards)*rules.RushingYardRate +
		float64(line.RushingTDs)*rules.TouchdownPoints +
		float64(line.ReceivingYard)*rules.ReceivingYardRate +
		float64(line.ReceivingTDs)*rules.TouchdownPoints +
		float64(line.TwoPointConvs)*rules.TwoPointConvPoints -
		float64(line.FumblesLost)*rules.FumbleLostPenalty

	return Round2(total)
}

// PassingOffensePoints scores a team's passing-offense unit.
func PassingOffensePoints(agg TeamAggregate, rules Rules) float64 {
	total := float64(agg.PassingYards)*rules.PassingYardRate +
		float64(agg.PassingTDs)*rules.TouchdownPoints
	if rules.PassingOffenseIntPenalty {
		total -= float64(agg.InterceptionsThrown) * rules.InterceptionPenalty
	}
	return Round2(total)
}

// RushingOffensePoints scores a team's rushing-offense unit.
func RushingOffensePoints(agg TeamAggregate, rules Rules) float64 {
	return Round2(float64(agg.RushingYards)*rules.RushingYardRate +
		float64(agg.RushingTDs)*rules.TouchdownPoints)
}

// DefensePoints scores a team's defensive unit. Return touchdowns already
// credited to special teams are subtracted from the defensive touchdown
// count so a single return never scores twice.
func DefensePoints(line stats.TeamDefenseLine, returnTDs int, rules Rules) float64 {
	total := pointsAllowedBonus(line.PointsAllowed) +
		float64(line.InterceptionsMd+line.FumblesRecovered)*rules.TakeawayPoints +
		float64(line.Sacks)*rules.SackPoints +
		float64(line.Safeties)*rules.SafetyPoints

	netDefensiveTDs := line.DefensiveTDs - returnTDs
	if netDefensiveTDs > 0 {
		total += float64(netDefensiveTDs) * rules.TouchdownPoints
	}

	return Round2(total)
}

// SpecialTeamsPoints scores a team's special-teams unit from kicking
// aggregates, return touchdowns, and returned extra points.
func SpecialTeamsPoints(agg TeamAggregate, xpReturns int, rules Rules) float64 {
	return Round2(float64(agg.ExtraPointsMade)*rules.ExtraPointPoints +
		float64(agg.FieldGoalsMade)*rules.FieldGoalPoints +
		float64(agg.ReturnTDs)*rules.TouchdownPoints +
		float64(xpReturns)*rules.XPReturnPoints)
}

func pointsAllowedBonus(pointsAllowed int) float64 {
	switch {
	case pointsAllowed == 0:
		return 10
	case pointsAllowed >= 2 && pointsAllowed <= 9:
		return 6
	case pointsAllowed >= 10 && pointsAllowed <= 20:
		return 3
	default:
		return 0
	}
}
