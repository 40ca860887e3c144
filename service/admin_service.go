package service

import (
	"context"
	"fmt"

	"pledgebook/events"
	"pledgebook/models"
	"pledgebook/observability"

	log "github.com/sirupsen/logrus"
)

// adminService implements the AdminService interface
type adminService struct {
	uowFactory UnitOfWorkFactory
	clock      Clock
}

// NewAdminService creates a new admin service
func NewAdminService(uowFactory UnitOfWorkFactory, clock Clock) AdminService {
	return &adminService{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// AcceptPledge moves the pending pledge with code to accepted and appends
// one accept record to the audit trail. Unknown codes and pledges that are
// already accepted yield ErrPledgeNotFound with nothing written.
func (s *adminService) AcceptPledge(ctx context.Context, code string) (*models.Pledge, error) {
	if code == "" {
		return nil, ErrPledgeNotFound
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pledge, err := uow.PledgeRepository().MarkAccepted(ctx, code)
	if err != nil {
		return nil, err
	}
	if pledge == nil {
		log.WithField("code", code).Info("Accept ignored, no pending pledge with code")
		return nil, ErrPledgeNotFound
	}

	acceptedAt := s.clock.Now()
	if err := uow.TransactionRepository().Record(ctx, models.NewAcceptTransaction(pledge, acceptedAt)); err != nil {
		log.WithError(err).WithField("code", code).Error("Pledge accepted without its audit record")
		return nil, fmt.Errorf("failed to record accept transaction: %w", err)
	}

	uow.EventBus().Publish(events.PledgeAcceptedEvent{
		Code:       pledge.Code,
		Username:   pledge.Username,
		Kind:       pledge.Kind,
		AmountPi:   pledge.AmountPi,
		AcceptedAt: acceptedAt,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	observability.PledgesAccepted.Inc()
	log.WithFields(log.Fields{
		"code":     pledge.Code,
		"username": pledge.Username,
	}).Info("Pledge accepted")

	return pledge, nil
}

// ListPending returns all pledges awaiting acceptance
func (s *adminService) ListPending(ctx context.Context) ([]*models.Pledge, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pending, err := uow.PledgeRepository().GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending pledges: %w", err)
	}
	return pending, nil
}
