package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectToSQL(t *testing.T) {
	sql, args, err := Select("user_id", "total_points").
		From("weekly_lineups").
		Where(Eq("league_id", "lg-1"), Eq("season", 2025), Expr("week <= ?", 18)).
		OrderBy("user_id ASC").
		Limit(50).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	wantSQL := "SELECT user_id, total_points FROM weekly_lineups WHERE league_id = $1 AND season = $2 AND week <= $3 ORDER BY user_id ASC LIMIT 50"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if want := []any{"lg-1", 2025, 18}; !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
}

func TestSelectInEmptyValues(t *testing.T) {
	sql, args, err := Select("game_id").
		From("games").
		Where(In("status", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}
	if want := "SELECT game_id FROM games WHERE 1=0"; sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v, want none", args)
	}
}

func TestInsertSuffixPlaceholders(t *testing.T) {
	sql, args, err := InsertInto("usage_counts").
		Columns("league_id", "entity_key", "uses").
		Values("lg-1", "player:p-9", 1).
		Suffix("ON CONFLICT (league_id, entity_key) DO UPDATE SET uses = usage_counts.uses + 1 WHERE usage_counts.uses < ?", 5).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	wantSQL := "INSERT INTO usage_counts (league_id, entity_key, uses) VALUES ($1, $2, $3) ON CONFLICT (league_id, entity_key) DO UPDATE SET uses = usage_counts.uses + 1 WHERE usage_counts.uses < $4"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if want := []any{"lg-1", "player:p-9", 1, 5}; !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
}

func TestUpdateSetExpr(t *testing.T) {
	sql, args, err := Update("weekly_lineups").
		Set("total_points", 112.74).
		SetExpr("updated_at", "NOW()").
		Where(Eq("user_id", "u-1"), Eq("week", 3)).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}

	wantSQL := "UPDATE weekly_lineups SET total_points = $1, updated_at = NOW() WHERE user_id = $2 AND week = $3"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if want := []any{112.74, "u-1", 3}; !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
}

func TestInsertModelMultiRow(t *testing.T) {
	type row struct {
		GameID string `db:"game_id"`
		TeamID string `db:"team_id"`
		Skip   string `db:"-"`
	}

	sql, args, err := InsertModel("team_game_stats", NoSuffix(),
		row{GameID: "g-1", TeamID: "DAL", Skip: "x"},
		row{GameID: "g-1", TeamID: "PHI"},
	)
	if err != nil {
		t.Fatalf("InsertModel: %v", err)
	}

	wantSQL := "INSERT INTO team_game_stats (game_id, team_id) VALUES ($1, $2), ($3, $4)"
	if sql != wantSQL {
		t.Fatalf("sql = %q, want %q", sql, wantSQL)
	}
	if want := []any{"g-1", "DAL", "g-1", "PHI"}; !reflect.DeepEqual(args, want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
}
