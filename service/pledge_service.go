package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"pledgebook/events"
	"pledgebook/models"
	"pledgebook/observability"

	log "github.com/sirupsen/logrus"
)

// maxCodeAttempts bounds how many fresh codes Submit tries after collisions
const maxCodeAttempts = 5

// pledgeService implements the PledgeService interface
type pledgeService struct {
	uowFactory UnitOfWorkFactory
	prices     PriceProvider
	codes      CodeGenerator
	clock      Clock
}

// NewPledgeService creates a new pledge service
func NewPledgeService(uowFactory UnitOfWorkFactory, prices PriceProvider, codes CodeGenerator, clock Clock) PledgeService {
	return &pledgeService{
		uowFactory: uowFactory,
		prices:     prices,
		codes:      codes,
		clock:      clock,
	}
}

// Submit prices and records a new pending pledge for username
func (s *pledgeService) Submit(ctx context.Context, username string, kind models.PledgeKind, amountPi float64) (*models.Pledge, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if amountPi <= 0 || math.IsNaN(amountPi) || math.IsInf(amountPi, 0) {
		return nil, ErrInvalidAmount
	}

	// Quote before touching the stores so no write waits on the feed.
	quote := s.prices.GetPrice(ctx)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pledge := &models.Pledge{
		Username:        username,
		Kind:            kind,
		AmountPi:        amountPi,
		AmountPHPAtTime: Round2(amountPi * quote.PHP),
		CreatedAt:       s.clock.Now(),
		Status:          models.PledgeStatusPending,
	}

	if err := s.createWithUniqueCode(ctx, uow.PledgeRepository(), pledge); err != nil {
		return nil, err
	}

	if err := uow.TransactionRepository().Record(ctx, models.NewSubmitTransaction(pledge)); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"code":     pledge.Code,
			"username": pledge.Username,
		}).Error("Pledge stored without its audit record")
		return nil, fmt.Errorf("failed to record pledge transaction: %w", err)
	}

	uow.EventBus().Publish(events.PledgeSubmittedEvent{
		Code:      pledge.Code,
		Username:  pledge.Username,
		Kind:      pledge.Kind,
		AmountPi:  pledge.AmountPi,
		AmountPHP: pledge.AmountPHPAtTime,
		CreatedAt: pledge.CreatedAt,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	observability.PledgesSubmitted.WithLabelValues(string(kind)).Inc()
	log.WithFields(log.Fields{
		"code":     pledge.Code,
		"username": pledge.Username,
		"kind":     pledge.Kind,
		"amountPi": pledge.AmountPi,
	}).Info("Pledge submitted")

	return pledge, nil
}

func (s *pledgeService) createWithUniqueCode(ctx context.Context, repo PledgeRepository, pledge *models.Pledge) error {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return err
		}
		pledge.Code = code

		err = repo.Create(ctx, pledge)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrDuplicateCode) {
			return fmt.Errorf("failed to create pledge: %w", err)
		}

		log.WithFields(log.Fields{
			"code":    code,
			"attempt": attempt,
		}).Warn("Pledge code collision, regenerating")
	}

	return ErrCodeExhausted
}
