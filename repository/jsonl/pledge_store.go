package jsonl

import (
	"context"
	"errors"
	"fmt"

	"pledgebook/models"
)

// PledgeStore keeps pledges in a JSON-lines ledger file
type PledgeStore struct {
	log *LogFile[models.Pledge]
}

// NewPledgeStore opens the ledger at path
func NewPledgeStore(path string) (*PledgeStore, error) {
	lf, err := OpenLogFile[models.Pledge](path, "pledges")
	if err != nil {
		return nil, err
	}
	return &PledgeStore{log: lf}, nil
}

// Create appends a pledge, rejecting a code that is already in the ledger
func (s *PledgeStore) Create(ctx context.Context, pledge *models.Pledge) error {
	err := s.log.AppendUnique(*pledge, func(existing models.Pledge) bool {
		return existing.Code == pledge.Code
	})
	if errors.Is(err, ErrConflict) {
		return models.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("failed to create pledge %s: %w", pledge.Code, err)
	}
	return nil
}

// GetByCode returns the pledge with code, or nil if there is none
func (s *PledgeStore) GetByCode(ctx context.Context, code string) (*models.Pledge, error) {
	pledges, err := s.filter(func(p *models.Pledge) bool { return p.Code == code })
	if err != nil || len(pledges) == 0 {
		return nil, err
	}
	return pledges[0], nil
}

// GetByUsername returns every pledge owned by username in ledger order
func (s *PledgeStore) GetByUsername(ctx context.Context, username string) ([]*models.Pledge, error) {
	return s.filter(func(p *models.Pledge) bool { return p.Username == username })
}

// GetPending returns all pledges awaiting acceptance
func (s *PledgeStore) GetPending(ctx context.Context) ([]*models.Pledge, error) {
	return s.filter(func(p *models.Pledge) bool { return p.IsPending() })
}

// GetAll returns the whole ledger
func (s *PledgeStore) GetAll(ctx context.Context) ([]*models.Pledge, error) {
	return s.filter(func(*models.Pledge) bool { return true })
}

// MarkAccepted moves the pending pledge with code to accepted and returns
// it. It returns nil when no pending pledge has that code.
func (s *PledgeStore) MarkAccepted(ctx context.Context, code string) (*models.Pledge, error) {
	var accepted *models.Pledge

	err := s.log.Mutate(func(pledges []models.Pledge) (bool, error) {
		for i := range pledges {
			if pledges[i].Code == code && pledges[i].Accept() {
				p := pledges[i]
				accepted = &p
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to accept pledge %s: %w", code, err)
	}

	return accepted, nil
}

func (s *PledgeStore) filter(keep func(*models.Pledge) bool) ([]*models.Pledge, error) {
	records, _, err := s.log.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read pledges: %w", err)
	}

	var out []*models.Pledge
	for i := range records {
		if keep(&records[i]) {
			out = append(out, &records[i])
		}
	}
	return out, nil
}
