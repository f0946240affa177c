package league

import (
	"fmt"
	"time"
)

// Member is one user's membership in a league. WeeklyPoints and TotalPoints
// are derived values maintained by the scoring pipeline.
type Member struct {
	UserID       string
	TeamName     string
	WeeklyPoints map[int]float64
	TotalPoints  float64
	JoinedAt     time.Time
}

// League groups members competing under one season of fantasy rules.
type League struct {
	ID          string
	Name        string
	AdminUserID string
	JoinCode    string
	Visible     bool
	Members     []Member
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (l League) ValidateBasic() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.AdminUserID == "" {
		return fmt.Errorf("league admin user id is required")
	}
	if len(l.JoinCode) != 6 {
		return fmt.Errorf("league join code must be 6 digits")
	}

	seen := make(map[string]struct{}, len(l.Members))
	adminIsMember := false
	for _, m := range l.Members {
		if m.UserID == "" {
			return fmt.Errorf("member user id is required")
		}
		if _, ok := seen[m.UserID]; ok {
			return fmt.Errorf("duplicate member user id %s", m.UserID)
		}
		seen[m.UserID] = struct{}{}
		if m.UserID == l.AdminUserID {
			adminIsMember = true
		}
	}
	if !adminIsMember {
		return fmt.Errorf("league admin %s must be a member", l.AdminUserID)
	}

	return nil
}

// HasMember reports whether userID already belongs to the league.
func (l League) HasMember(userID string) bool {
	for _, m := range l.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
