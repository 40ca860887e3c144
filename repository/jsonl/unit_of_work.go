package jsonl

import (
	"context"
	"fmt"

	"pledgebook/events"
	"pledgebook/service"
)

// unitOfWork gives services the same shape they get from the Postgres
// backend. The files have no shared transaction, so each store write is
// final on its own; only the event flush waits for Commit.
type unitOfWork struct {
	ledger           *Ledger
	transactionalBus *events.TransactionalBus
	started          bool
}

// NewUnitOfWorkFactory creates a UnitOfWork factory over ledger
func NewUnitOfWorkFactory(ledger *Ledger, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		ledger:   ledger,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	ledger   *Ledger
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		ledger:           f.ledger,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin marks the unit of work as started
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.started {
		return fmt.Errorf("transaction already started")
	}
	u.started = true
	return nil
}

// Commit publishes the events gathered since Begin
func (u *unitOfWork) Commit() error {
	if !u.started {
		return fmt.Errorf("no transaction to commit")
	}
	u.started = false
	return u.transactionalBus.Flush(context.Background())
}

// Rollback drops pending events. Store writes already made stay.
func (u *unitOfWork) Rollback() error {
	u.started = false
	u.transactionalBus.Discard()
	return nil
}

func (u *unitOfWork) UserRepository() service.UserRepository {
	u.mustBeStarted()
	return u.ledger.Users
}

func (u *unitOfWork) PledgeRepository() service.PledgeRepository {
	u.mustBeStarted()
	return u.ledger.Pledges
}

func (u *unitOfWork) TransactionRepository() service.TransactionRepository {
	u.mustBeStarted()
	return u.ledger.Transactions
}

func (u *unitOfWork) EventBus() service.EventPublisher {
	u.mustBeStarted()
	return u.transactionalBus
}

func (u *unitOfWork) mustBeStarted() {
	if !u.started {
		panic("unit of work not started - call Begin() first")
	}
}
