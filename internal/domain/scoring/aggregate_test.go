package scoring

import (
	"testing"

	"github.com/gridironhq/gridiron/internal/domain/stats"
)

func TestAggregateTeamGame(t *testing.T) {
	lines := []stats.PlayerLine{
		{PlayerID: "qb-1", GameID: "g1", TeamID: "DAL", PassingYards: 250, PassingTDs: 2, Interceptions: 1},
		{PlayerID: "rb-1", GameID: "g1", TeamID: "DAL", RushingYards: 88, RushingTDs: 1},
		{PlayerID: "wr-1", GameID: "g1", TeamID: "DAL", ReceivingYard: 110, ReceivingTDs: 1, KickReturnTDs: 1},
		{PlayerID: "k-1", GameID: "g1", TeamID: "DAL", ExtraPointsMd: 3, FieldGoalsMd: 2},
		{PlayerID: "qb-2", GameID: "g1", TeamID: "PHI", PassingYards: 180, PassingTDs: 1},
		{PlayerID: "rb-2", GameID: "g1", TeamID: "PHI", RushingYards: 60, PuntReturnTDs: 1, FumReturnTDs: 1},
	}

	agg := AggregateTeamGame(lines, "DAL")

	if agg.GameID != "g1" {
		t.Fatalf("expected game id g1, got %q", agg.GameID)
	}
	if agg.PassingYards != 250 || agg.PassingTDs != 2 || agg.InterceptionsThrown != 1 {
		t.Fatalf("unexpected passing aggregate: %+v", agg)
	}
	if agg.RushingYards != 88 || agg.RushingTDs != 1 {
		t.Fatalf("unexpected rushing aggregate: %+v", agg)
	}
	if agg.ExtraPointsMade != 3 || agg.FieldGoalsMade != 2 {
		t.Fatalf("unexpected kicking aggregate: %+v", agg)
	}
	if agg.ReturnTDs != 1 {
		t.Fatalf("expected 1 return TD for DAL, got %d", agg.ReturnTDs)
	}

	other := AggregateTeamGame(lines, "PHI")
	if other.PassingYards != 180 || other.RushingYards != 60 {
		t.Fatalf("unexpected PHI aggregate: %+v", other)
	}
	if other.ReturnTDs != 2 {
		t.Fatalf("expected 2 return TDs for PHI, got %d", other.ReturnTDs)
	}
}

func TestAggregateTeamGame_FiltersByGameTimeTeam(t *testing.T) {
	// The player dressed for NYG in this game even if his roster team later
	// changed; only the recorded game-time team counts.
	lines := []stats.PlayerLine{
		{PlayerID: "rb-9", GameID: "g7", TeamID: "NYG", RushingYards: 120},
	}

	if agg := AggregateTeamGame(lines, "WAS"); agg.RushingYards != 0 {
		t.Fatalf("expected no rushing yards for WAS, got %d", agg.RushingYards)
	}
	if agg := AggregateTeamGame(lines, "NYG"); agg.RushingYards != 120 {
		t.Fatalf("expected 120 rushing yards for NYG, got %d", agg.RushingYards)
	}
}

func TestAggregateTeamGame_Empty(t *testing.T) {
	agg := AggregateTeamGame(nil, "DAL")
	if agg.PassingYards != 0 || agg.ReturnTDs != 0 || agg.GameID != "" {
		t.Fatalf("expected zero aggregate, got %+v", agg)
	}
}
