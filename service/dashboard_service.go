package service

import (
	"context"
	"fmt"
	"time"

	"pledgebook/models"
)

// Chart labels in display order
var chartLabels = []string{"Provided (PI)", "Requested (PI)", "Compound (PI)"}

// dashboardService implements the DashboardService interface
type dashboardService struct {
	uowFactory UnitOfWorkFactory
	prices     PriceProvider
	clock      Clock
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(uowFactory UnitOfWorkFactory, prices PriceProvider, clock Clock) DashboardService {
	return &dashboardService{
		uowFactory: uowFactory,
		prices:     prices,
		clock:      clock,
	}
}

// Dashboard values every pledge owned by username. One quote is taken per
// call and used for all entries.
func (s *dashboardService) Dashboard(ctx context.Context, username string) (*models.Dashboard, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pledges, err := uow.PledgeRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get pledges for %s: %w", username, err)
	}

	return Aggregate(username, pledges, s.prices.GetPrice(ctx), s.clock.Now()), nil
}

// Aggregate builds the dashboard projection for pledges as of now, valuing
// accrued yield at quote.
func Aggregate(username string, pledges []*models.Pledge, quote models.PriceQuote, now time.Time) *models.Dashboard {
	d := &models.Dashboard{
		Username: username,
		Entries:  make([]models.DashboardEntry, 0, len(pledges)),
		Price:    quote,
	}

	for _, p := range pledges {
		current, months := CompoundValue(p.AmountPi, p.CreatedAt, now)
		d.Entries = append(d.Entries, models.DashboardEntry{
			Pledge:         *p,
			CurrentValuePi: current,
			Months:         months,
		})

		if p.IsPending() {
			d.Pending = true
		}

		switch p.Kind {
		case models.PledgeKindProvided:
			d.ProvidedPi += p.AmountPi
			d.ProvidedPHP += p.AmountPHPAtTime

			yield := current - p.AmountPi
			d.CompoundPi += yield
			d.CompoundPHP += Round2(yield * quote.PHP)
		case models.PledgeKindRequested:
			d.RequestedPi += p.AmountPi
			d.RequestedPHP += p.AmountPHPAtTime
		}
	}

	d.CompoundPHP = Round2(d.CompoundPHP)
	d.Chart = models.ChartData{
		Labels: append([]string(nil), chartLabels...),
		Values: []float64{Round2(d.ProvidedPi), Round2(d.RequestedPi), Round2(d.CompoundPi)},
	}

	return d
}
