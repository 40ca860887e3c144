package service

import (
	"context"
	"time"

	"pledgebook/events"
	"pledgebook/models"
)

// UserRepository defines the interface for account data access
type UserRepository interface {
	// GetByUsername retrieves an account by username, ignoring case. Returns nil if absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create stores a new account, returning models.ErrDuplicateUsername on collision
	Create(ctx context.Context, user *models.User) error
}

// PledgeRepository defines the interface for the pledge ledger
type PledgeRepository interface {
	// Create stores a new pledge, returning models.ErrDuplicateCode if the code is taken
	Create(ctx context.Context, pledge *models.Pledge) error

	// GetByCode retrieves a pledge by code. Returns nil if absent.
	GetByCode(ctx context.Context, code string) (*models.Pledge, error)

	// GetByUsername returns all pledges owned by username
	GetByUsername(ctx context.Context, username string) ([]*models.Pledge, error)

	// GetPending returns all pledges with status pending
	GetPending(ctx context.Context) ([]*models.Pledge, error)

	// MarkAccepted atomically moves the pending pledge with code to accepted.
	// Returns nil if no pending pledge has that code.
	MarkAccepted(ctx context.Context, code string) (*models.Pledge, error)
}

// TransactionRepository defines the interface for the audit trail
type TransactionRepository interface {
	// Record appends an audit record
	Record(ctx context.Context, tx *models.Transaction) error

	// GetByCode returns the audit records for one pledge
	GetByCode(ctx context.Context, code string) ([]*models.Transaction, error)

	// GetByUsername returns the audit records for one user
	GetByUsername(ctx context.Context, username string) ([]*models.Transaction, error)
}

// PriceProvider returns the current fiat quote for one Pi. It never fails;
// an unavailable feed yields the last known quote or zeros.
type PriceProvider interface {
	GetPrice(ctx context.Context) models.PriceQuote
}

// CodeGenerator produces candidate pledge codes. Uniqueness is enforced by
// the PledgeRepository, not the generator.
type CodeGenerator interface {
	Generate() (string, error)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UserService defines the interface for account operations
type UserService interface {
	// Register creates an account with a hashed password
	Register(ctx context.Context, username, password string) (*models.User, error)

	// Authenticate checks a username and password pair
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// PledgeService defines the interface for pledge submission
type PledgeService interface {
	// Submit prices and records a new pending pledge for username
	Submit(ctx context.Context, username string, kind models.PledgeKind, amountPi float64) (*models.Pledge, error)
}

// AdminService defines the interface for the approval workflow
type AdminService interface {
	// AcceptPledge accepts the pending pledge with code
	AcceptPledge(ctx context.Context, code string) (*models.Pledge, error)

	// ListPending returns all pledges awaiting acceptance
	ListPending(ctx context.Context) ([]*models.Pledge, error)
}

// DashboardService defines the interface for per-user aggregation
type DashboardService interface {
	// Dashboard values every pledge owned by username as of now
	Dashboard(ctx context.Context, username string) (*models.Dashboard, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and publishes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	UserRepository() UserRepository
	PledgeRepository() PledgeRepository
	TransactionRepository() TransactionRepository

	// EventBus returns the transactional event bus
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
