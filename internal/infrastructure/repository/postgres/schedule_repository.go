package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/gridironhq/gridiron/internal/domain/schedule"
	qb "github.com/gridironhq/gridiron/internal/platform/querybuilder"
)

type gameTableModel struct {
	GameID     string    `db:"game_id"`
	Season     int       `db:"season"`
	Week       int       `db:"week"`
	HomeTeamID string    `db:"home_team_id"`
	AwayTeamID string    `db:"away_team_id"`
	KickoffAt  time.Time `db:"kickoff_at"`
	Status     string    `db:"status"`
}

type ScheduleRepository struct {
	db *sqlx.DB
}

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) GetWeek(ctx context.Context, season, week int) (schedule.WeeklySchedule, bool, error) {
	query, args, err := qb.Select("game_id", "season", "week", "home_team_id", "away_team_id", "kickoff_at", "status").
		From("games").
		Where(qb.Eq("season", season), qb.Eq("week", week)).
		OrderBy("kickoff_at", "game_id").
		ToSQL()
	if err != nil {
		return schedule.WeeklySchedule{}, false, errors.Wrap(err, "build get week query")
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return schedule.WeeklySchedule{}, false, errors.Wrapf(err, "get week season=%d week=%d", season, week)
	}
	if len(rows) == 0 {
		return schedule.WeeklySchedule{}, false, nil
	}

	games := make([]schedule.Game, 0, len(rows))
	for _, row := range rows {
		games = append(games, schedule.Game{
			GameID:     row.GameID,
			Season:     row.Season,
			Week:       row.Week,
			HomeTeamID: row.HomeTeamID,
			AwayTeamID: row.AwayTeamID,
			KickoffAt:  row.KickoffAt,
			Status:     schedule.NormalizeStatus(row.Status),
		})
	}

	return schedule.WeeklySchedule{Season: season, Week: week, Games: games}, true, nil
}

func (r *ScheduleRepository) UpsertGames(ctx context.Context, games []schedule.Game) error {
	if len(games) == 0 {
		return nil
	}

	models := make([]any, 0, len(games))
	for _, game := range games {
		models = append(models, gameTableModel{
			GameID:     game.GameID,
			Season:     game.Season,
			Week:       game.Week,
			HomeTeamID: game.HomeTeamID,
			AwayTeamID: game.AwayTeamID,
			KickoffAt:  game.KickoffAt,
			Status:     schedule.NormalizeStatus(game.Status),
		})
	}

	query, args, err := qb.InsertModel("games", qb.WithSuffix(`ON CONFLICT (game_id)
DO UPDATE SET
    season = EXCLUDED.season,
    week = EXCLUDED.week,
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    kickoff_at = EXCLUDED.kickoff_at,
    status = EXCLUDED.status`), models...)
	if err != nil {
		return errors.Wrap(err, "build upsert games query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "upsert games")
	}
	return nil
}
