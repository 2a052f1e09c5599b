package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// resetService implements the ResetService interface
type resetService struct {
	users UserRepository
}

// NewResetService creates a new daily reset service
func NewResetService(users UserRepository) ResetService {
	return &resetService{
		users: users,
	}
}

// ResetAll zeroes every user's daily counter and stamps the reset date.
// Each update is independent: a failed user is logged and skipped, not
// retried, and the returned count reflects successes only. The batch is
// the sole writer of these fields during its window, so no guard is
// needed.
func (s *resetService) ResetAll(ctx context.Context, today string) (int, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w: %w", ErrStorage, err)
	}

	usersReset := 0
	for _, user := range users {
		if err := s.users.ResetDailyGiven(ctx, user.UserID, today); err != nil {
			log.WithError(err).WithField("userID", user.UserID).Error("Failed to reset daily points, skipping user")
			continue
		}
		usersReset++
	}

	log.WithFields(log.Fields{
		"date":       today,
		"usersReset": usersReset,
		"usersTotal": len(users),
	}).Info("Daily quota reset complete")

	return usersReset, nil
}
