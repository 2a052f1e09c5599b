package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kudos/database"
	"kudos/models"
	"kudos/service"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `
	user_id, team_id, user_name, real_name, display_name, email,
	total_points, daily_points_given, last_reset_date, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.UserID,
		&user.TeamID,
		&user.UserName,
		&user.RealName,
		&user.DisplayName,
		&user.Email,
		&user.TotalPoints,
		&user.DailyPointsGiven,
		&user.LastResetDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUserID retrieves a user, or nil if no row exists
func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return user, nil
}

// GetByUserIDs retrieves the users that exist among the given IDs
func (r *UserRepository) GetByUserIDs(ctx context.Context, userIDs []string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ANY($1)`

	rows, err := r.q.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// GetAll returns all users
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// Create inserts a user row with zeroed point counters
func (r *UserRepository) Create(ctx context.Context, userID string) (*models.User, error) {
	query := `
		INSERT INTO users (user_id)
		VALUES ($1)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", userID, err)
	}
	return user, nil
}

// UpsertProfile writes profile fields only. Point counters on an
// existing row are deliberately absent from the UPDATE set.
func (r *UserRepository) UpsertProfile(ctx context.Context, userID string, profile *models.Profile) error {
	query := `
		INSERT INTO users (user_id, team_id, user_name, real_name, display_name, email)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			user_name = EXCLUDED.user_name,
			real_name = EXCLUDED.real_name,
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query, userID,
		profile.TeamID, profile.UserName, profile.RealName, profile.DisplayName, profile.Email)
	if err != nil {
		return fmt.Errorf("failed to upsert profile for user %s: %w", userID, err)
	}
	return nil
}

// IncrementDailyGiven adds delta to the sender's daily counter, guarded
// on the counter still equalling the value observed at read time
func (r *UserRepository) IncrementDailyGiven(ctx context.Context, userID string, delta, observed int) error {
	query := `
		UPDATE users
		SET daily_points_given = daily_points_given + $2, updated_at = NOW()
		WHERE user_id = $1 AND daily_points_given = $3
	`

	result, err := r.q.Exec(ctx, query, userID, delta, observed)
	if err != nil {
		return fmt.Errorf("failed to update daily counter for user %s: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("daily counter for user %s changed since read: %w", userID, service.ErrConflict)
	}
	return nil
}

// IncrementTotalPoints adds delta to a recipient's total, guarded on the
// total still equalling the value observed at read time
func (r *UserRepository) IncrementTotalPoints(ctx context.Context, userID string, delta, observed int) error {
	query := `
		UPDATE users
		SET total_points = total_points + $2, updated_at = NOW()
		WHERE user_id = $1 AND total_points = $3
	`

	result, err := r.q.Exec(ctx, query, userID, delta, observed)
	if err != nil {
		return fmt.Errorf("failed to update total points for user %s: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("total points for user %s changed since read: %w", userID, service.ErrConflict)
	}
	return nil
}

// ResetDailyGiven zeroes the daily counter and stamps the reset date,
// unconditionally. The reset batch is the sole writer of these fields
// during its window, so no guard is used.
func (r *UserRepository) ResetDailyGiven(ctx context.Context, userID string, date string) error {
	query := `
		UPDATE users
		SET daily_points_given = 0, last_reset_date = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	result, err := r.q.Exec(ctx, query, userID, date)
	if err != nil {
		return fmt.Errorf("failed to reset daily counter for user %s: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}
