package postgres

import (
	"time"

	"github.com/gridironhq/gridiron/internal/domain/stats"
)

type playerGameStatTableModel struct {
	PlayerID string `db:"player_id"`
	GameID   string `db:"game_id"`
	Season   int    `db:"season"`
	Week     int    `db:"week"`
	TeamID   string `db:"team_id"`

	PassingYards  int `db:"passing_yards"`
	PassingTDs    int `db:"passing_tds"`
	Interceptions int `db:"interceptions_thrown"`
	RushingYards  int `db:"rushing_yards"`
	RushingTDs    int `db:"rushing_tds"`
	ReceivingYard int `db:"receiving_yards"`
	ReceivingTDs  int `db:"receiving_tds"`
	TwoPointConvs int `db:"two_point_conversions"`
	FumblesLost   int `db:"fumbles_lost"`
	ExtraPointsMd int `db:"extra_points_made"`
	FieldGoalsMd  int `db:"field_goals_made"`
	KickReturnTDs int `db:"kick_return_tds"`
	PuntReturnTDs int `db:"punt_return_tds"`
	FumReturnTDs  int `db:"fumble_return_tds"`

	FantasyPoints float64   `db:"fantasy_points"`
	IngestedAt    time.Time `db:"ingested_at"`
}

func playerStatToRow(item stats.PlayerGameStat) playerGameStatTableModel {
	line := item.Line
	return playerGameStatTableModel{
		PlayerID:      line.PlayerID,
		GameID:        line.GameID,
		Season:        line.Season,
		Week:          line.Week,
		TeamID:        line.TeamID,
		PassingYards:  line.PassingYards,
		PassingTDs:    line.PassingTDs,
		Interceptions: line.Interceptions,
		RushingYards:  line.RushingYards,
		RushingTDs:    line.RushingTDs,
		ReceivingYard: line.ReceivingYard,
		ReceivingTDs:  line.ReceivingTDs,
		TwoPointConvs: line.TwoPointConvs,
		FumblesLost:   line.FumblesLost,
		ExtraPointsMd: line.ExtraPointsMd,
		FieldGoalsMd:  line.FieldGoalsMd,
		KickReturnTDs: line.KickReturnTDs,
		PuntReturnTDs: line.PuntReturnTDs,
		FumReturnTDs:  line.FumReturnTDs,
		FantasyPoints: item.FantasyPoints,
		IngestedAt:    item.IngestedAt,
	}
}

type teamGameStatTableModel struct {
	TeamID string `db:"team_id"`
	GameID string `db:"game_id"`
	Season int    `db:"season"`
	Week   int    `db:"week"`

	PassingYards     int `db:"passing_yards"`
	PassingTDs       int `db:"passing_tds"`
	InterceptionsThr int `db:"interceptions_thrown"`
	RushingYards     int `db:"rushing_yards"`
	RushingTDs       int `db:"rushing_tds"`
	ExtraPointsMade  int `db:"extra_points_made"`
	FieldGoalsMade   int `db:"field_goals_made"`
	ReturnTDs        int `db:"return_tds"`
	PointsAllowed    int `db:"points_allowed"`
	Sacks            int `db:"sacks"`
	InterceptionsMd  int `db:"interceptions_made"`
	FumblesRecovered int `db:"fumbles_recovered"`
	Safeties         int `db:"safeties"`
	DefensiveTDs     int `db:"defensive_tds"`
	XPReturns        int `db:"xp_returns"`

	PassingPoints      float64 `db:"passing_points"`
	RushingPoints      float64 `db:"rushing_points"`
	DefensePoints      float64 `db:"defense_points"`
	SpecialTeamsPoints float64 `db:"special_teams_points"`

	IngestedAt time.Time `db:"ingested_at"`
}

func teamStatToRow(item stats.TeamGameStat) teamGameStatTableModel {
	return teamGameStatTableModel{
		TeamID:             item.TeamID,
		GameID:             item.GameID,
		Season:             item.Season,
		Week:               item.Week,
		PassingYards:       item.PassingYards,
		PassingTDs:         item.PassingTDs,
		InterceptionsThr:   item.InterceptionsThr,
		RushingYards:       item.RushingYards,
		RushingTDs:         item.RushingTDs,
		ExtraPointsMade:    item.ExtraPointsMade,
		FieldGoalsMade:     item.FieldGoalsMade,
		ReturnTDs:          item.ReturnTDs,
		PointsAllowed:      item.PointsAllowed,
		Sacks:              item.Sacks,
		InterceptionsMd:    item.InterceptionsMd,
		FumblesRecovered:   item.FumblesRecovered,
		Safeties:           item.Safeties,
		DefensiveTDs:       item.DefensiveTDs,
		XPReturns:          item.XPReturns,
		PassingPoints:      item.PassingPoints,
		RushingPoints:      item.RushingPoints,
		DefensePoints:      item.DefensePoints,
		SpecialTeamsPoints: item.SpecialTeamsPoints,
		IngestedAt:         item.IngestedAt,
	}
}
