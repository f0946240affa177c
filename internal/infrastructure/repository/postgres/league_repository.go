package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/gridironhq/gridiron/internal/domain/league"
	qb "github.com/gridironhq/gridiron/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := leagueBaseSelect().
		Where(qb.Eq("visible", true)).
		OrderBy("created_at DESC").
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build list leagues query")
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "list leagues")
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		members, err := r.listMembers(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, leagueFromRow(row, members))
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("id", leagueID))
}

func (r *LeagueRepository) GetByJoinCode(ctx context.Context, joinCode string) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("join_code", joinCode))
}

func (r *LeagueRepository) getOne(ctx context.Context, cond qb.Cond) (league.League, bool, error) {
	query, args, err := leagueBaseSelect().Where(cond).ToSQL()
	if err != nil {
		return league.League{}, false, errors.Wrap(err, "build get league query")
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, errors.Wrap(err, "get league")
	}

	members, err := r.listMembers(ctx, row.ID)
	if err != nil {
		return league.League{}, false, err
	}
	return leagueFromRow(row, members), true, nil
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin league create transaction")
	}
	defer func() { _ = tx.Rollback() }()

	leagueModel := leagueTableModel{
		ID:          item.ID,
		Name:        item.Name,
		AdminUserID: item.AdminUserID,
		JoinCode:    item.JoinCode,
		Visible:     item.Visible,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	query, args, err := qb.InsertModel("leagues", qb.NoSuffix(), leagueModel)
	if err != nil {
		return errors.Wrap(err, "build league insert query")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(err, "league id or join code already taken")
		}
		return errors.Wrap(err, "insert league")
	}

	for _, member := range item.Members {
		memberModel := leagueMemberTableModel{
			LeagueID: item.ID,
			UserID:   member.UserID,
			TeamName: member.TeamName,
			JoinedAt: member.JoinedAt,
		}
		query, args, err := qb.InsertModel("league_members", qb.NoSuffix(), memberModel)
		if err != nil {
			return errors.Wrap(err, "build league member insert query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "insert league member %s", member.UserID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit league create")
	}
	return nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, leagueID string, member league.Member) error {
	memberModel := leagueMemberTableModel{
		LeagueID: leagueID,
		UserID:   member.UserID,
		TeamName: member.TeamName,
		JoinedAt: member.JoinedAt,
	}
	query, args, err := qb.InsertModel("league_members", qb.NoSuffix(), memberModel)
	if err != nil {
		return errors.Wrap(err, "build league member insert query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(err, "user %s already a member of league %s", member.UserID, leagueID)
		}
		return errors.Wrapf(err, "insert league member %s", member.UserID)
	}
	return nil
}

func (r *LeagueRepository) listMembers(ctx context.Context, leagueID string) ([]leagueMemberTableModel, error) {
	query, args, err := qb.Select("league_id", "user_id", "team_name", "joined_at").
		From("league_members").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("joined_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "build list league members query")
	}

	var rows []leagueMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrapf(err, "list members of league %s", leagueID)
	}
	return rows, nil
}

func leagueBaseSelect() *qb.SelectBuilder {
	return qb.Select("id", "name", "admin_user_id", "join_code", "visible", "created_at", "updated_at").
		From("leagues")
}
