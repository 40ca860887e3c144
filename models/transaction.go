package models

import (
	"encoding/json"
	"time"
)

// TransactionAction is the kind of ledger change an audit record describes
type TransactionAction string

const (
	TransactionActionProvided  TransactionAction = "provided"
	TransactionActionRequested TransactionAction = "requested"
	TransactionActionAccept    TransactionAction = "accept"
)

// Transaction is an append-only audit record
type Transaction struct {
	ID        int64             `db:"id"`
	Action    TransactionAction `db:"action"`
	Username  string            `db:"username"`
	Code      string            `db:"code"`
	AmountPi  float64           `db:"amount_pi"`
	AmountPHP float64           `db:"amount_php"`
	CreatedAt time.Time         `db:"created_at"`
}

type transactionRecord struct {
	Action    TransactionAction `json:"action"`
	Username  string            `json:"username"`
	Code      string            `json:"code"`
	AmountPi  float64           `json:"amount_pi,omitempty"`
	AmountPHP float64           `json:"amount_php,omitempty"`
	Created   string            `json:"created"`
}

// NewSubmitTransaction builds the audit record for a freshly created pledge
func NewSubmitTransaction(p *Pledge) *Transaction {
	return &Transaction{
		Action:    TransactionAction(p.Kind),
		Username:  p.Username,
		Code:      p.Code,
		AmountPi:  p.AmountPi,
		AmountPHP: p.AmountPHPAtTime,
		CreatedAt: p.CreatedAt,
	}
}

// NewAcceptTransaction builds the audit record for an accepted pledge
func NewAcceptTransaction(p *Pledge, at time.Time) *Transaction {
	return &Transaction{
		Action:    TransactionActionAccept,
		Username:  p.Username,
		Code:      p.Code,
		CreatedAt: at,
	}
}

// MarshalJSON writes the transaction in the audit line format
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionRecord{
		Action:    t.Action,
		Username:  t.Username,
		Code:      t.Code,
		AmountPi:  t.AmountPi,
		AmountPHP: t.AmountPHP,
		Created:   FormatTimestamp(t.CreatedAt),
	})
}

// UnmarshalJSON reads an audit line
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var rec transactionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	created, err := ParseTimestamp(rec.Created)
	if err != nil {
		return err
	}
	*t = Transaction{
		Action:    rec.Action,
		Username:  rec.Username,
		Code:      rec.Code,
		AmountPi:  rec.AmountPi,
		AmountPHP: rec.AmountPHP,
		CreatedAt: created,
	}
	return nil
}
