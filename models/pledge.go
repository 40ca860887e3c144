package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PledgeKind distinguishes amounts a user gives from amounts a user asks for
type PledgeKind string

const (
	PledgeKindProvided  PledgeKind = "provided"
	PledgeKindRequested PledgeKind = "requested"
)

// Valid reports whether k is a known pledge kind
func (k PledgeKind) Valid() bool {
	return k == PledgeKindProvided || k == PledgeKindRequested
}

// PledgeStatus is the lifecycle state of a pledge
type PledgeStatus string

const (
	PledgeStatusPending  PledgeStatus = "pending"
	PledgeStatusAccepted PledgeStatus = "accepted"
)

// Pledge is a single ledger entry. Only Status ever changes after creation.
type Pledge struct {
	Code            string       `db:"code"`
	Username        string       `db:"username"`
	Kind            PledgeKind   `db:"kind"`
	AmountPi        float64      `db:"amount_pi"`
	AmountPHPAtTime float64      `db:"amount_php_at_time"`
	CreatedAt       time.Time    `db:"created_at"`
	Status          PledgeStatus `db:"status"`
}

// IsPending reports whether the pledge still awaits admin acceptance
func (p *Pledge) IsPending() bool {
	return p.Status == PledgeStatusPending
}

// Accept moves a pending pledge to accepted. It returns false when the
// pledge was not pending, leaving it untouched.
func (p *Pledge) Accept() bool {
	if !p.IsPending() {
		return false
	}
	p.Status = PledgeStatusAccepted
	return true
}

// pledgeRecord is the on-disk JSON line layout
type pledgeRecord struct {
	Username        string       `json:"username"`
	Kind            PledgeKind   `json:"type"`
	AmountPi        *float64     `json:"amount_pi,omitempty"`
	Amount          *float64     `json:"amount,omitempty"` // written by older releases
	AmountPHPAtTime float64      `json:"amount_php_at_time"`
	Created         string       `json:"created"`
	Status          PledgeStatus `json:"status,omitempty"`
	Code            string       `json:"code"`
}

// MarshalJSON writes the pledge in the ledger line format
func (p Pledge) MarshalJSON() ([]byte, error) {
	amount := p.AmountPi
	return json.Marshal(pledgeRecord{
		Username:        p.Username,
		Kind:            p.Kind,
		AmountPi:        &amount,
		AmountPHPAtTime: p.AmountPHPAtTime,
		Created:         FormatTimestamp(p.CreatedAt),
		Status:          p.Status,
		Code:            p.Code,
	})
}

// UnmarshalJSON reads a ledger line, accepting the legacy "amount" field and
// treating a missing status as pending.
func (p *Pledge) UnmarshalJSON(data []byte) error {
	var rec pledgeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	created, err := ParseTimestamp(rec.Created)
	if err != nil {
		return fmt.Errorf("pledge %q: %w", rec.Code, err)
	}

	var amount float64
	switch {
	case rec.AmountPi != nil:
		amount = *rec.AmountPi
	case rec.Amount != nil:
		amount = *rec.Amount
	}

	status := rec.Status
	if status == "" {
		status = PledgeStatusPending
	}

	*p = Pledge{
		Code:            rec.Code,
		Username:        rec.Username,
		Kind:            rec.Kind,
		AmountPi:        amount,
		AmountPHPAtTime: rec.AmountPHPAtTime,
		CreatedAt:       created,
		Status:          status,
	}
	return nil
}
