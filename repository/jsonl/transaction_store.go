package jsonl

import (
	"context"
	"fmt"

	"pledgebook/models"
)

// TransactionStore is the append-only audit trail
type TransactionStore struct {
	log *LogFile[models.Transaction]
}

// NewTransactionStore opens the audit trail at path
func NewTransactionStore(path string) (*TransactionStore, error) {
	lf, err := OpenLogFile[models.Transaction](path, "transactions")
	if err != nil {
		return nil, err
	}
	return &TransactionStore{log: lf}, nil
}

// Record appends an audit record
func (s *TransactionStore) Record(ctx context.Context, tx *models.Transaction) error {
	if err := s.log.Append(*tx); err != nil {
		return fmt.Errorf("failed to record %s transaction for %s: %w", tx.Action, tx.Code, err)
	}
	return nil
}

// GetByCode returns the audit history of one pledge
func (s *TransactionStore) GetByCode(ctx context.Context, code string) ([]*models.Transaction, error) {
	return s.filter(func(t *models.Transaction) bool { return t.Code == code })
}

// GetByUsername returns every audit record for username
func (s *TransactionStore) GetByUsername(ctx context.Context, username string) ([]*models.Transaction, error) {
	return s.filter(func(t *models.Transaction) bool { return t.Username == username })
}

func (s *TransactionStore) filter(keep func(*models.Transaction) bool) ([]*models.Transaction, error) {
	records, _, err := s.log.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	var out []*models.Transaction
	for i := range records {
		if keep(&records[i]) {
			out = append(out, &records[i])
		}
	}
	return out, nil
}
