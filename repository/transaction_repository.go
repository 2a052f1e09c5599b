package repository

import (
	"context"
	"fmt"

	"kudos/database"
	"kudos/models"
)

// TransactionRepository implements the service.TransactionRepository
// interface. The transactions table is append-only; there is no update
// or delete path.
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Create appends a transaction record
func (r *TransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, from_user, to_users, points, timestamp, message)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		transaction.TransactionID,
		transaction.FromUser,
		transaction.ToUsers,
		transaction.Points,
		transaction.Timestamp,
		transaction.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction %s: %w", transaction.TransactionID, err)
	}
	return nil
}

// GetByParticipant returns every transaction the user appears in, as
// sender or recipient, newest first
func (r *TransactionRepository) GetByParticipant(ctx context.Context, userID string) ([]*models.Transaction, error) {
	query := `
		SELECT transaction_id, from_user, to_users, points, timestamp, message
		FROM transactions
		WHERE from_user = $1 OR $1 = ANY(to_users)
		ORDER BY timestamp DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var transaction models.Transaction
		err := rows.Scan(
			&transaction.TransactionID,
			&transaction.FromUser,
			&transaction.ToUsers,
			&transaction.Points,
			&transaction.Timestamp,
			&transaction.Message,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &transaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
