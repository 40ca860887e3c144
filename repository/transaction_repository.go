package repository

import (
	"context"
	"fmt"

	"pledgebook/database"
	"pledgebook/models"
)

// TransactionRepository implements the TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new audit trail repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new audit trail repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Record appends an audit record and sets its ID
func (r *TransactionRepository) Record(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (action, username, code, amount_pi, amount_php, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		tx.Action,
		tx.Username,
		tx.Code,
		tx.AmountPi,
		tx.AmountPHP,
		tx.CreatedAt,
	).Scan(&tx.ID)

	if err != nil {
		return fmt.Errorf("failed to record %s transaction for %s: %w", tx.Action, tx.Code, err)
	}

	return nil
}

// GetByCode returns the audit history of one pledge, oldest first
func (r *TransactionRepository) GetByCode(ctx context.Context, code string) ([]*models.Transaction, error) {
	query := `
		SELECT id, action, username, code, amount_pi, amount_php, created_at
		FROM transactions
		WHERE code = $1
		ORDER BY id
	`
	return r.list(ctx, query, code)
}

// GetByUsername returns a user's audit history, oldest first
func (r *TransactionRepository) GetByUsername(ctx context.Context, username string) ([]*models.Transaction, error) {
	query := `
		SELECT id, action, username, code, amount_pi, amount_php, created_at
		FROM transactions
		WHERE username = $1
		ORDER BY id
	`
	return r.list(ctx, query, username)
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(
			&tx.ID,
			&tx.Action,
			&tx.Username,
			&tx.Code,
			&tx.AmountPi,
			&tx.AmountPHP,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.CreatedAt = tx.CreatedAt.UTC()
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}
