package repository

import (
	"context"
	"errors"
	"fmt"

	"pledgebook/database"
	"pledgebook/models"

	"github.com/jackc/pgx/v5"
)

const pledgeColumns = `code, username, kind, amount_pi, amount_php_at_time, created_at, status`

// PledgeRepository implements the PledgeRepository interface
type PledgeRepository struct {
	q queryable
}

// NewPledgeRepository creates a new pledge repository
func NewPledgeRepository(db *database.DB) *PledgeRepository {
	return &PledgeRepository{q: db.Pool}
}

// newPledgeRepositoryWithTx creates a new pledge repository with a transaction
func newPledgeRepositoryWithTx(tx queryable) *PledgeRepository {
	return &PledgeRepository{q: tx}
}

// Create inserts a pledge. A taken code yields models.ErrDuplicateCode and
// leaves the surrounding transaction usable for a retry.
func (r *PledgeRepository) Create(ctx context.Context, pledge *models.Pledge) error {
	query := `
		INSERT INTO pledges (code, username, kind, amount_pi, amount_php_at_time, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (code) DO NOTHING
		RETURNING id
	`

	var id int64
	err := r.q.QueryRow(ctx, query,
		pledge.Code,
		pledge.Username,
		pledge.Kind,
		pledge.AmountPi,
		pledge.AmountPHPAtTime,
		pledge.CreatedAt,
		pledge.Status,
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("failed to create pledge %s: %w", pledge.Code, err)
	}

	return nil
}

// GetByCode retrieves a pledge by its code
func (r *PledgeRepository) GetByCode(ctx context.Context, code string) (*models.Pledge, error) {
	query := `SELECT ` + pledgeColumns + ` FROM pledges WHERE code = $1`

	pledge, err := scanPledge(r.q.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pledge %s: %w", code, err)
	}

	return pledge, nil
}

// GetByUsername returns the user's pledges in submission order
func (r *PledgeRepository) GetByUsername(ctx context.Context, username string) ([]*models.Pledge, error) {
	query := `SELECT ` + pledgeColumns + ` FROM pledges WHERE username = $1 ORDER BY id`
	return r.list(ctx, query, username)
}

// GetPending returns every pledge awaiting acceptance in submission order
func (r *PledgeRepository) GetPending(ctx context.Context) ([]*models.Pledge, error) {
	query := `SELECT ` + pledgeColumns + ` FROM pledges WHERE status = 'pending' ORDER BY id`
	return r.list(ctx, query)
}

// MarkAccepted flips a pending pledge to accepted in one statement. It
// returns nil when no pending pledge has the code.
func (r *PledgeRepository) MarkAccepted(ctx context.Context, code string) (*models.Pledge, error) {
	query := `
		UPDATE pledges
		SET status = 'accepted'
		WHERE code = $1 AND status = 'pending'
		RETURNING ` + pledgeColumns

	pledge, err := scanPledge(r.q.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept pledge %s: %w", code, err)
	}

	return pledge, nil
}

func (r *PledgeRepository) list(ctx context.Context, query string, args ...any) ([]*models.Pledge, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pledges: %w", err)
	}
	defer rows.Close()

	var pledges []*models.Pledge
	for rows.Next() {
		pledge, err := scanPledge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pledge: %w", err)
		}
		pledges = append(pledges, pledge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pledges: %w", err)
	}

	return pledges, nil
}

func scanPledge(row pgx.Row) (*models.Pledge, error) {
	var p models.Pledge
	err := row.Scan(
		&p.Code,
		&p.Username,
		&p.Kind,
		&p.AmountPi,
		&p.AmountPHPAtTime,
		&p.CreatedAt,
		&p.Status,
	)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}
