package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kudos/models"
)

// ledgerService implements the LedgerService interface
type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// AddPoints performs the guarded multi-party transfer described in the
// package interface. The whole read-decide-write cycle runs inside one
// unit of work; when any guarded counter changed since it was read the
// cycle is retried from the top, up to maxWriteAttempts.
func (s *ledgerService) AddPoints(ctx context.Context, fromUser string, toUsers []string, message string) (*models.LedgerResult, error) {
	recipients := excludeSender(fromUser, toUsers)

	result := &models.LedgerResult{}
	if len(recipients) == 0 {
		return result, ErrSelfMention
	}

	err := withConflictRetry(ctx, maxWriteAttempts, func(ctx context.Context) error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w: %w", ErrStorage, err)
		}
		defer uow.Rollback() // No-op if already committed

		users := uow.UserRepository()

		sender, err := getOrCreateUser(ctx, users, fromUser)
		if err != nil {
			return err
		}
		result.DailyPointsGiven = sender.DailyPointsGiven

		if sender.DailyPointsGiven+len(recipients) > DailyQuota {
			return ErrQuotaExceeded
		}

		// Guarded sender counter update; a concurrent transfer from
		// the same sender surfaces here as ErrConflict
		if err := users.IncrementDailyGiven(ctx, fromUser, len(recipients), sender.DailyPointsGiven); err != nil {
			return wrapWriteError("increment daily counter", err)
		}

		for _, recipientID := range recipients {
			recipient, err := getOrCreateUser(ctx, users, recipientID)
			if err != nil {
				return err
			}
			if err := users.IncrementTotalPoints(ctx, recipientID, PointsPerRecipient, recipient.TotalPoints); err != nil {
				return wrapWriteError("increment recipient total", err)
			}
		}

		transaction := &models.Transaction{
			TransactionID: uuid.NewString(),
			FromUser:      fromUser,
			ToUsers:       recipients,
			Points:        PointsPerRecipient,
			Timestamp:     time.Now().UTC(),
			Message:       message,
		}
		if err := uow.TransactionRepository().Create(ctx, transaction); err != nil {
			return fmt.Errorf("failed to append transaction: %w: %w", ErrStorage, err)
		}

		if err := uow.Commit(); err != nil {
			return wrapWriteError("commit transfer", err)
		}

		result.DailyPointsGiven = sender.DailyPointsGiven + len(recipients)
		result.TransactionID = transaction.TransactionID
		return nil
	})

	return result, err
}

// excludeSender removes the sender from the recipient set and
// deduplicates, keeping first-appearance order
func excludeSender(fromUser string, toUsers []string) []string {
	seen := make(map[string]struct{}, len(toUsers))
	recipients := make([]string, 0, len(toUsers))
	for _, userID := range toUsers {
		if userID == fromUser {
			continue
		}
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		recipients = append(recipients, userID)
	}
	return recipients
}

// getOrCreateUser reads a user row, creating one with zeroed counters on
// first ledger interaction
func getOrCreateUser(ctx context.Context, users UserRepository, userID string) (*models.User, error) {
	user, err := users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w: %w", userID, ErrStorage, err)
	}
	if user != nil {
		return user, nil
	}

	user, err = users.Create(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w: %w", userID, ErrStorage, err)
	}
	return user, nil
}

// wrapWriteError passes conflicts through untouched for the retry loop
// and tags everything else as a storage failure
func wrapWriteError(op string, err error) error {
	if errors.Is(err, ErrConflict) {
		return err
	}
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStorage, err)
}
