package service

import (
	"context"

	"kudos/events"
	"kudos/models"
)

const (
	// DailyQuota is the maximum number of points a user may give to
	// others within one calendar day
	DailyQuota = 5

	// PointsPerRecipient is the number of points each mentioned user
	// receives per transaction
	PointsPerRecipient = 1
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByUserID retrieves a user, or nil if no row exists
	GetByUserID(ctx context.Context, userID string) (*models.User, error)

	// GetByUserIDs retrieves the users that exist among the given IDs
	GetByUserIDs(ctx context.Context, userIDs []string) ([]*models.User, error)

	// GetAll returns all users
	GetAll(ctx context.Context) ([]*models.User, error)

	// Create inserts a user row with zeroed point counters
	Create(ctx context.Context, userID string) (*models.User, error)

	// UpsertProfile writes profile fields only, never point counters
	UpsertProfile(ctx context.Context, userID string, profile *models.Profile) error

	// IncrementDailyGiven adds delta to daily_points_given, guarded on
	// the counter still equalling observed. Returns ErrConflict when a
	// concurrent writer won the race.
	IncrementDailyGiven(ctx context.Context, userID string, delta, observed int) error

	// IncrementTotalPoints adds delta to total_points, guarded on the
	// counter still equalling observed
	IncrementTotalPoints(ctx context.Context, userID string, delta, observed int) error

	// ResetDailyGiven zeroes daily_points_given and stamps the reset
	// date, unconditionally (last writer wins)
	ResetDailyGiven(ctx context.Context, userID string, date string) error
}

// TransactionRepository defines the interface for the append-only
// transaction log
type TransactionRepository interface {
	// Create appends a transaction record
	Create(ctx context.Context, transaction *models.Transaction) error

	// GetByParticipant returns every transaction the user appears in,
	// as sender or recipient, newest first
	GetByParticipant(ctx context.Context, userID string) ([]*models.Transaction, error)
}

// WorkspaceRepository defines read access to workspace credentials.
// The installation flow owns the write path.
type WorkspaceRepository interface {
	// GetByTeamID retrieves a workspace credential, or nil if the
	// workspace is unknown
	GetByTeamID(ctx context.Context, teamID string) (*models.Workspace, error)
}

// UnitOfWork bundles the repositories into one database transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	TransactionRepository() TransactionRepository
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// ProfileSource fetches profile data from the external identity source.
// Fails with ErrProfileNotFound when the identifier is unknown upstream.
type ProfileSource interface {
	FetchProfile(ctx context.Context, teamID, userID string) (*models.Profile, error)
}

// ChannelJoiner performs the workspace-wide channel join side effect
// triggered by an app installation
type ChannelJoiner interface {
	JoinAllChannels(ctx context.Context, teamID string) error
}

// LedgerService is the transactional points engine
type LedgerService interface {
	// AddPoints transfers one point from the sender to each recipient,
	// enforcing the daily quota and recording a transaction. The
	// returned result carries the last-observed daily_points_given
	// even on failure.
	AddPoints(ctx context.Context, fromUser string, toUsers []string, message string) (*models.LedgerResult, error)
}

// DirectoryService is the user profile cache
type DirectoryService interface {
	// EnsureProfile returns the cached user, refreshing from the
	// identity source when the row is absent or a display field is empty
	EnsureProfile(ctx context.Context, teamID, userID string) (*models.User, error)

	// RefreshProfile always fetches fresh profile data and upserts it,
	// preserving point counters
	RefreshProfile(ctx context.Context, teamID, userID string) (*models.User, error)
}

// HistoryService reads past transactions for display
type HistoryService interface {
	// GetHistory returns the user's transaction history as display
	// rows, newest first, one row per counterparty
	GetHistory(ctx context.Context, teamID, userID string) ([]*models.TransactionView, error)
}

// ResetService zeroes daily quota counters across all users
type ResetService interface {
	// ResetAll resets every user's daily counter. The returned count
	// reflects successful updates only.
	ResetAll(ctx context.Context, today string) (int, error)
}

// EventRouter classifies inbound events and drives the other services
type EventRouter interface {
	// HandleEvent processes one normalized inbound event and returns
	// the notifications to deliver
	HandleEvent(ctx context.Context, ev events.InboundEvent) ([]events.OutboundNotification, error)
}
