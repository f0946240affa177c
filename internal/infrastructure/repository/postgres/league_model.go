package postgres

import (
	"time"

	"github.com/gridironhq/gridiron/internal/domain/league"
)

type leagueTableModel struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	AdminUserID string    `db:"admin_user_id"`
	JoinCode    string    `db:"join_code"`
	Visible     bool      `db:"visible"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type leagueMemberTableModel struct {
	LeagueID string    `db:"league_id"`
	UserID   string    `db:"user_id"`
	TeamName string    `db:"team_name"`
	JoinedAt time.Time `db:"joined_at"`
}

func leagueFromRow(row leagueTableModel, memberRows []leagueMemberTableModel) league.League {
	members := make([]league.Member, 0, len(memberRows))
	for _, m := range memberRows {
		members = append(members, league.Member{
			UserID:   m.UserID,
			TeamName: m.TeamName,
			JoinedAt: m.JoinedAt,
		})
	}

	return league.League{
		ID:          row.ID,
		Name:        row.Name,
		AdminUserID: row.AdminUserID,
		JoinCode:    row.JoinCode,
		Visible:     row.Visible,
		Members:     members,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
