package postgres

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/gridironhq/gridiron/internal/domain/lineup"
	qb "github.com/gridironhq/gridiron/internal/platform/querybuilder"
)

// LineupRepository implements lineup.Store on postgres. SaveLineup runs the
// usage-cap checks, the counter increments, and the lineup upsert in one
// transaction so a rejected save leaves no trace.
type LineupRepository struct {
	db *sqlx.DB
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

const usageIncrementSuffix = `ON CONFLICT (league_id, season, user_id, entity_kind, entity_id)
DO UPDATE SET uses = usage_counts.uses + 1
WHERE usage_counts.uses < ?
RETURNING uses`

func (r *LineupRepository) SaveLineup(ctx context.Context, item lineup.WeeklyLineup, refs []lineup.EntityRef, maxUses int) error {
	picksRaw, err := encodePicks(item.Picks)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin lineup save transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// Callers pass refs sorted by Key so concurrent saves touching the same
	// counters acquire row locks in one order.
	for _, ref := range refs {
		query, args, err := qb.InsertInto("usage_counts").
			Columns("league_id", "season", "user_id", "entity_kind", "entity_id", "uses").
			Values(item.LeagueID, item.Season, item.UserID, string(ref.Kind), ref.EntityID, 1).
			Suffix(usageIncrementSuffix, maxUses).
			ToSQL()
		if err != nil {
			return errors.Wrap(err, "build usage increment query")
		}

		var uses int
		if err := tx.GetContext(ctx, &uses, query, args...); err != nil {
			if isNotFound(err) {
				return errors.Wrapf(lineup.ErrUsageCapExceeded, "entity %s", ref.Key())
			}
			return errors.Wrapf(err, "increment usage for %s", ref.Key())
		}
	}

	insertModel := lineupTableModel{
		UserID:    item.UserID,
		LeagueID:  item.LeagueID,
		Season:    item.Season,
		Week:      item.Week,
		Picks:     picksRaw,
		Complete:  item.Complete,
		UpdatedAt: item.UpdatedAt,
	}
	query, args, err := qb.InsertModel("weekly_lineups", qb.WithSuffix(`ON CONFLICT (user_id, league_id, season, week)
DO UPDATE SET
    picks = EXCLUDED.picks,
    complete = EXCLUDED.complete,
    total_points = NULL,
    updated_at = EXCLUDED.updated_at`), insertModel)
	if err != nil {
		return errors.Wrap(err, "build lineup upsert query")
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "upsert weekly lineup")
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit lineup save")
	}
	return nil
}

func (r *LineupRepository) GetByKey(ctx context.Context, userID, leagueID string, season, week int) (lineup.WeeklyLineup, bool, error) {
	query, args, err := lineupBaseSelect().
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.Eq("week", week),
		).
		ToSQL()
	if err != nil {
		return lineup.WeeklyLineup{}, false, errors.Wrap(err, "build get lineup query")
	}

	var row lineupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return lineup.WeeklyLineup{}, false, nil
		}
		return lineup.WeeklyLineup{}, false, errors.Wrap(err, "get weekly lineup")
	}

	item, err := lineupFromRow(row)
	if err != nil {
		return lineup.WeeklyLineup{}, false, err
	}
	return item, true, nil
}

func (r *LineupRepository) ListByWeek(ctx context.Context, season, week int, leagueID string) ([]lineup.WeeklyLineup, error) {
	builder := lineupBaseSelect().
		Where(qb.Eq("season", season), qb.Eq("week", week))
	if leagueID != "" {
		builder.Where(qb.Eq("league_id", leagueID))
	}
	query, args, err := builder.OrderBy("league_id", "user_id").ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build list lineups query")
	}

	var rows []lineupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "list weekly lineups")
	}

	out := make([]lineup.WeeklyLineup, 0, len(rows))
	for _, row := range rows {
		item, err := lineupFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *LineupRepository) UpdateTotalPoints(ctx context.Context, userID, leagueID string, season, week int, points float64, updatedAt time.Time) error {
	query, args, err := qb.Update("weekly_lineups").
		Set("total_points", points).
		Set("updated_at", updatedAt).
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.Eq("week", week),
		).
		ToSQL()
	if err != nil {
		return errors.Wrap(err, "build update total points query")
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "update lineup total points")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update lineup total points rows affected")
	}
	if affected == 0 {
		return errors.Newf("lineup user=%s league=%s season=%d week=%d not found", userID, leagueID, season, week)
	}
	return nil
}

func (r *LineupRepository) GetUsage(ctx context.Context, leagueID string, season int, userID string, ref lineup.EntityRef) (int, error) {
	query, args, err := qb.Select("uses").
		From("usage_counts").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.Eq("user_id", userID),
			qb.Eq("entity_kind", string(ref.Kind)),
			qb.Eq("entity_id", ref.EntityID),
		).
		ToSQL()
	if err != nil {
		return 0, errors.Wrap(err, "build get usage query")
	}

	var uses int
	if err := r.db.GetContext(ctx, &uses, query, args...); err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "get usage for %s", ref.Key())
	}
	return uses, nil
}

func lineupBaseSelect() *qb.SelectBuilder {
	return qb.Select("user_id", "league_id", "season", "week", "picks", "complete", "total_points", "updated_at").
		From("weekly_lineups")
}
