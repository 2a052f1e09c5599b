package service

import (
	"context"
	"fmt"

	"kudos/models"
)

// historyService implements the HistoryService interface
type historyService struct {
	transactions TransactionRepository
	directory    DirectoryService
}

// NewHistoryService creates a new history service
func NewHistoryService(transactions TransactionRepository, directory DirectoryService) HistoryService {
	return &historyService{
		transactions: transactions,
		directory:    directory,
	}
}

// GetHistory expands every transaction the user participated in into one
// row per counterparty, newest first, with display names resolved
// through the directory. An unresolvable counterparty fails the whole
// query: a transaction referencing an unknown user is a data-integrity
// fault worth surfacing, not degrading around.
func (s *historyService) GetHistory(ctx context.Context, teamID, userID string) ([]*models.TransactionView, error) {
	transactions, err := s.transactions.GetByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions for %s: %w: %w", userID, ErrStorage, err)
	}

	names := make(map[string]string)
	resolveName := func(counterpartyID string) (string, error) {
		if name, ok := names[counterpartyID]; ok {
			return name, nil
		}
		user, err := s.directory.EnsureProfile(ctx, teamID, counterpartyID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve counterparty %s: %w", counterpartyID, err)
		}
		names[counterpartyID] = user.DisplayName
		return user.DisplayName, nil
	}

	// Transactions arrive newest first; expansion preserves that order
	var views []*models.TransactionView
	for _, transaction := range transactions {
		if transaction.FromUser == userID {
			for _, recipientID := range transaction.ToUsers {
				name, err := resolveName(recipientID)
				if err != nil {
					return nil, err
				}
				views = append(views, &models.TransactionView{
					Direction:        models.DirectionSent,
					CounterpartyID:   recipientID,
					CounterpartyName: name,
					Points:           transaction.Points,
					Timestamp:        transaction.Timestamp,
					Message:          transaction.Message,
				})
			}
			continue
		}

		name, err := resolveName(transaction.FromUser)
		if err != nil {
			return nil, err
		}
		views = append(views, &models.TransactionView{
			Direction:        models.DirectionReceived,
			CounterpartyID:   transaction.FromUser,
			CounterpartyName: name,
			Points:           transaction.Points,
			Timestamp:        transaction.Timestamp,
			Message:          transaction.Message,
		})
	}

	return views, nil
}
