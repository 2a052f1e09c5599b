package service

import (
	"context"
	"fmt"

	"kudos/models"
)

// directoryService implements the DirectoryService interface
type directoryService struct {
	users  UserRepository
	source ProfileSource
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(users UserRepository, source ProfileSource) DirectoryService {
	return &directoryService{
		users:  users,
		source: source,
	}
}

// EnsureProfile returns the cached user record. It goes to the identity
// source only when the record is absent or a required display field is
// empty; staleness is never time-based.
func (s *directoryService) EnsureProfile(ctx context.Context, teamID, userID string) (*models.User, error) {
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w: %w", userID, ErrStorage, err)
	}
	if user != nil && !user.HasEmptyProfileFields() {
		return user, nil
	}

	return s.RefreshProfile(ctx, teamID, userID)
}

// RefreshProfile fetches fresh profile data and upserts it. Point
// counters on an existing row are never touched by the upsert.
func (s *directoryService) RefreshProfile(ctx context.Context, teamID, userID string) (*models.User, error) {
	profile, err := s.source.FetchProfile(ctx, teamID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", userID, err)
	}

	if err := s.users.UpsertProfile(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("failed to upsert profile for %s: %w: %w", userID, ErrStorage, err)
	}

	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read user %s: %w: %w", userID, ErrStorage, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s missing after upsert: %w", userID, ErrStorage)
	}
	return user, nil
}
