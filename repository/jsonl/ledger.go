package jsonl

import (
	"path/filepath"
)

// File names inside the data directory
const (
	UsersFile        = "users.txt"
	PledgesFile      = "donations.txt"
	TransactionsFile = "transactions.txt"
)

// Ledger groups the three independent stores kept under one data directory
type Ledger struct {
	Users        *UserStore
	Pledges      *PledgeStore
	Transactions *TransactionStore
}

// OpenLedger opens or creates the store files under dataDir
func OpenLedger(dataDir string) (*Ledger, error) {
	users, err := NewUserStore(filepath.Join(dataDir, UsersFile))
	if err != nil {
		return nil, err
	}
	pledges, err := NewPledgeStore(filepath.Join(dataDir, PledgesFile))
	if err != nil {
		return nil, err
	}
	transactions, err := NewTransactionStore(filepath.Join(dataDir, TransactionsFile))
	if err != nil {
		return nil, err
	}

	return &Ledger{
		Users:        users,
		Pledges:      pledges,
		Transactions: transactions,
	}, nil
}
