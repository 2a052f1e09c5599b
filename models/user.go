package models

import (
	"time"
)

// User represents a chat-platform user with point balances
type User struct {
	UserID           string    `db:"user_id"`
	TeamID           string    `db:"team_id"`
	UserName         string    `db:"user_name"`
	RealName         string    `db:"real_name"`
	DisplayName      string    `db:"display_name"`
	Email            string    `db:"email"`
	TotalPoints      int       `db:"total_points"`
	DailyPointsGiven int       `db:"daily_points_given"`
	LastResetDate    string    `db:"last_reset_date"` // ISO date, e.g. "2024-01-02"
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// HasEmptyProfileFields reports whether any required display field is
// missing. A true result triggers a refresh from the identity source.
func (u *User) HasEmptyProfileFields() bool {
	return u.TeamID == "" ||
		u.UserName == "" ||
		u.RealName == "" ||
		u.DisplayName == "" ||
		u.Email == ""
}

// Profile holds the display fields fetched from the external identity
// source. Point counters are never part of a profile.
type Profile struct {
	TeamID      string
	UserName    string
	RealName    string
	DisplayName string
	Email       string
}
