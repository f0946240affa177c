package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/gridironhq/gridiron/internal/domain/stats"
	qb "github.com/gridironhq/gridiron/internal/platform/querybuilder"
)

// StatsRepository persists per-game fantasy-point records. Rows are written
// once per ingestion pass; re-ingesting a game overwrites in place.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

const playerStatUpsertSuffix = `ON CONFLICT (player_id, game_id)
DO UPDATE SET
    season = EXCLUDED.season,
    week = EXCLUDED.week,
    team_id = EXCLUDED.team_id,
    passing_yards = EXCLUDED.passing_yards,
    passing_tds = EXCLUDED.passing_tds,
    interceptions_thrown = EXCLUDED.interceptions_thrown,
    rushing_yards = EXCLUDED.rushing_yards,
    rushing_tds = EXCLUDED.rushing_tds,
    receiving_yards = EXCLUDED.receiving_yards,
    receiving_tds = EXCLUDED.receiving_tds,
    two_point_conversions = EXCLUDED.two_point_conversions,
    fumbles_lost = EXCLUDED.fumbles_lost,
    extra_points_made = EXCLUDED.extra_points_made,
    field_goals_made = EXCLUDED.field_goals_made,
    kick_return_tds = EXCLUDED.kick_return_tds,
    punt_return_tds = EXCLUDED.punt_return_tds,
    fumble_return_tds = EXCLUDED.fumble_return_tds,
    fantasy_points = EXCLUDED.fantasy_points,
    ingested_at = EXCLUDED.ingested_at`

const teamStatUpsertSuffix = `ON CONFLICT (team_id, game_id)
DO UPDATE SET
    season = EXCLUDED.season,
    week = EXCLUDED.week,
    passing_yards = EXCLUDED.passing_yards,
    passing_tds = EXCLUDED.passing_tds,
    interceptions_thrown = EXCLUDED.interceptions_thrown,
    rushing_yards = EXCLUDED.rushing_yards,
    rushing_tds = EXCLUDED.rushing_tds,
    extra_points_made = EXCLUDED.extra_points_made,
    field_goals_made = EXCLUDED.field_goals_made,
    return_tds = EXCLUDED.return_tds,
    points_allowed = EXCLUDED.points_allowed,
    sacks = EXCLUDED.sacks,
    interceptions_made = EXCLUDED.interceptions_made,
    fumbles_recovered = EXCLUDED.fumbles_recovered,
    safeties = EXCLUDED.safeties,
    defensive_tds = EXCLUDED.defensive_tds,
    xp_returns = EXCLUDED.xp_returns,
    passing_points = EXCLUDED.passing_points,
    rushing_points = EXCLUDED.rushing_points,
    defense_points = EXCLUDED.defense_points,
    special_teams_points = EXCLUDED.special_teams_points,
    ingested_at = EXCLUDED.ingested_at`

func (r *StatsRepository) UpsertPlayerGameStats(ctx context.Context, items []stats.PlayerGameStat) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]any, 0, len(items))
	for _, item := range items {
		models = append(models, playerStatToRow(item))
	}

	query, args, err := qb.InsertModel("player_game_stats", qb.WithSuffix(playerStatUpsertSuffix), models...)
	if err != nil {
		return errors.Wrap(err, "build upsert player stats query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "upsert player game stats")
	}
	return nil
}

func (r *StatsRepository) UpsertTeamGameStats(ctx context.Context, items []stats.TeamGameStat) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]any, 0, len(items))
	for _, item := range items {
		models = append(models, teamStatToRow(item))
	}

	query, args, err := qb.InsertModel("team_game_stats", qb.WithSuffix(teamStatUpsertSuffix), models...)
	if err != nil {
		return errors.Wrap(err, "build upsert team stats query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "upsert team game stats")
	}
	return nil
}

func (r *StatsRepository) PlayerPointsByWeek(ctx context.Context, season, week int) (map[string]float64, error) {
	query, args, err := qb.Select("player_id", "SUM(fantasy_points) AS points").
		From("player_game_stats").
		Where(qb.Eq("season", season), qb.Eq("week", week)).
		GroupBy("player_id").
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build player points query")
	}

	var rows []struct {
		PlayerID string  `db:"player_id"`
		Points   float64 `db:"points"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrapf(err, "player points season=%d week=%d", season, week)
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.PlayerID] = row.Points
	}
	return out, nil
}

func (r *StatsRepository) TeamUnitPointsByWeek(ctx context.Context, season, week int) (map[string]stats.TeamUnitPoints, error) {
	query, args, err := qb.Select(
		"team_id",
		"SUM(passing_points) AS passing",
		"SUM(rushing_points) AS rushing",
		"SUM(defense_points) AS defense",
		"SUM(special_teams_points) AS special_teams",
	).
		From("team_game_stats").
		Where(qb.Eq("season", season), qb.Eq("week", week)).
		GroupBy("team_id").
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build team unit points query")
	}

	var rows []struct {
		TeamID       string  `db:"team_id"`
		Passing      float64 `db:"passing"`
		Rushing      float64 `db:"rushing"`
		Defense      float64 `db:"defense"`
		SpecialTeams float64 `db:"special_teams"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrapf(err, "team unit points season=%d week=%d", season, week)
	}

	out := make(map[string]stats.TeamUnitPoints, len(rows))
	for _, row := range rows {
		out[row.TeamID] = stats.TeamUnitPoints{
			Passing:      row.Passing,
			Rushing:      row.Rushing,
			Defense:      row.Defense,
			SpecialTeams: row.SpecialTeams,
		}
	}
	return out, nil
}
