package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kudos/database"
	"kudos/models"
)

// WorkspaceRepository implements the service.WorkspaceRepository
// interface. Read-only from the core's perspective; the installation
// flow owns writes.
type WorkspaceRepository struct {
	q queryable
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(db *database.DB) *WorkspaceRepository {
	return &WorkspaceRepository{q: db.Pool}
}

// GetByTeamID retrieves a workspace credential, or nil if the workspace
// is unknown
func (r *WorkspaceRepository) GetByTeamID(ctx context.Context, teamID string) (*models.Workspace, error) {
	query := `
		SELECT team_id, access_token, account_name, created_at
		FROM workspaces
		WHERE team_id = $1
	`

	var workspace models.Workspace
	err := r.q.QueryRow(ctx, query, teamID).Scan(
		&workspace.TeamID,
		&workspace.AccessToken,
		&workspace.AccountName,
		&workspace.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace %s: %w", teamID, err)
	}
	return &workspace, nil
}
