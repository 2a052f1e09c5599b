package models

import (
	"time"
)

// Workspace is an installed chat workspace and its bot credential.
// The core only ever reads these; the installation flow writes them.
type Workspace struct {
	TeamID      string    `db:"team_id"`
	AccessToken string    `db:"access_token"`
	AccountName string    `db:"account_name"`
	CreatedAt   time.Time `db:"created_at"`
}
