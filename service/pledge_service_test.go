package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"pledgebook/events"
	"pledgebook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestPledgeService(m *TestMocks) PledgeService {
	return NewPledgeService(m.Factory, m.Prices, m.Codes, FixedClock{T: testNow})
}

func TestPledgeService_Submit_Success(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	service := newTestPledgeService(m)

	m.Prices.On("GetPrice", ctx).Return(models.PriceQuote{PHP: 41.237, USD: 0.71})
	m.ExpectUnitOfWork()
	m.ExpectCommit()
	m.Codes.On("Generate").Return("AB12CD3", nil).Once()
	m.PledgeRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Pledge) bool {
		return p.Code == "AB12CD3" &&
			p.Username == "alice" &&
			p.Kind == models.PledgeKindProvided &&
			p.AmountPi == 10 &&
			p.AmountPHPAtTime == 412.37 &&
			p.Status == models.PledgeStatusPending &&
			p.CreatedAt.Equal(testNow)
	})).Return(nil)
	m.TransactionRepo.On("Record", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Action == models.TransactionActionProvided &&
			tx.Code == "AB12CD3" &&
			tx.Username == "alice" &&
			tx.AmountPi == 10 &&
			tx.AmountPHP == 412.37
	})).Return(nil)
	m.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		submitted, ok := e.(events.PledgeSubmittedEvent)
		return ok && submitted.Code == "AB12CD3" && submitted.AmountPHP == 412.37
	})).Return()

	pledge, err := service.Submit(ctx, "alice", models.PledgeKindProvided, 10)

	require.NoError(t, err)
	assert.Equal(t, "AB12CD3", pledge.Code)
	assert.Equal(t, models.PledgeStatusPending, pledge.Status)
	assert.Equal(t, 412.37, pledge.AmountPHPAtTime)
	m.AssertAllExpectations(t)
}

func TestPledgeService_Submit_ZeroPriceStillRecords(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	service := newTestPledgeService(m)

	m.Prices.On("GetPrice", ctx).Return(models.PriceQuote{})
	m.ExpectUnitOfWork()
	m.ExpectCommit()
	m.Codes.On("Generate").Return("ZZZZZZZ", nil)
	m.PledgeRepo.On("Create", ctx, mock.AnythingOfType("*models.Pledge")).Return(nil)
	m.TransactionRepo.On("Record", ctx, mock.AnythingOfType("*models.Transaction")).Return(nil)
	m.EventPublisher.On("Publish", mock.Anything).Return()

	pledge, err := service.Submit(ctx, "bob", models.PledgeKindRequested, 5)

	require.NoError(t, err)
	assert.Equal(t, 0.0, pledge.AmountPHPAtTime)
	m.AssertAllExpectations(t)
}

func TestPledgeService_Submit_Validation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		kind     models.PledgeKind
		amount   float64
		wantErr  error
	}{
		{"zero amount", "alice", models.PledgeKindProvided, 0, ErrInvalidAmount},
		{"negative amount", "alice", models.PledgeKindProvided, -3, ErrInvalidAmount},
		{"NaN amount", "alice", models.PledgeKindProvided, math.NaN(), ErrInvalidAmount},
		{"infinite amount", "alice", models.PledgeKindRequested, math.Inf(1), ErrInvalidAmount},
		{"unknown kind", "alice", models.PledgeKind("gift"), 1, ErrInvalidKind},
		{"missing user", "", models.PledgeKindProvided, 1, ErrUsernameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewTestMocks()
			service := newTestPledgeService(m)

			pledge, err := service.Submit(context.Background(), tt.username, tt.kind, tt.amount)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, pledge)
			// Nothing is priced or written for rejected input.
			m.AssertAllExpectations(t)
			m.Factory.AssertNotCalled(t, "Create")
			m.Prices.AssertNotCalled(t, "GetPrice", mock.Anything)
		})
	}
}

func TestPledgeService_Submit_RetriesOnCodeCollision(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	service := newTestPledgeService(m)

	m.Prices.On("GetPrice", ctx).Return(models.PriceQuote{PHP: 2})
	m.ExpectUnitOfWork()
	m.ExpectCommit()
	m.Codes.On("Generate").Return("TAKEN00", nil).Once()
	m.Codes.On("Generate").Return("FRESH00", nil).Once()
	m.PledgeRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Pledge) bool { return p.Code == "TAKEN00" })).
		Return(models.ErrDuplicateCode).Once()
	m.PledgeRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Pledge) bool { return p.Code == "FRESH00" })).
		Return(nil).Once()
	m.TransactionRepo.On("Record", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
		return tx.Code == "FRESH00"
	})).Return(nil)
	m.EventPublisher.On("Publish", mock.Anything).Return()

	pledge, err := service.Submit(ctx, "alice", models.PledgeKindProvided, 1)

	require.NoError(t, err)
	assert.Equal(t, "FRESH00", pledge.Code)
	m.AssertAllExpectations(t)
}

func TestPledgeService_Submit_GivesUpAfterRepeatedCollisions(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	service := newTestPledgeService(m)

	m.Prices.On("GetPrice", ctx).Return(models.PriceQuote{PHP: 2})
	m.ExpectUnitOfWork()
	m.Codes.On("Generate").Return("TAKEN00", nil).Times(maxCodeAttempts)
	m.PledgeRepo.On("Create", ctx, mock.Anything).Return(models.ErrDuplicateCode).Times(maxCodeAttempts)

	pledge, err := service.Submit(ctx, "alice", models.PledgeKindProvided, 1)

	assert.ErrorIs(t, err, ErrCodeExhausted)
	assert.Nil(t, pledge)
	m.AssertAllExpectations(t)
	m.TransactionRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	m.UoW.AssertNotCalled(t, "Commit")
}

func TestPledgeService_Submit_AuditFailureIsReported(t *testing.T) {
	ctx := context.Background()
	m := NewTestMocks()
	service := newTestPledgeService(m)

	m.Prices.On("GetPrice", ctx).Return(models.PriceQuote{PHP: 2})
	m.ExpectUnitOfWork()
	m.Codes.On("Generate").Return("AB12CD3", nil)
	m.PledgeRepo.On("Create", ctx, mock.Anything).Return(nil)
	m.TransactionRepo.On("Record", ctx, mock.Anything).Return(errors.New("disk full"))

	pledge, err := service.Submit(ctx, "alice", models.PledgeKindProvided, 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Nil(t, pledge)
	m.AssertAllExpectations(t)
	m.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
	m.UoW.AssertNotCalled(t, "Commit")
}
