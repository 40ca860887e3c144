package repository

import (
	"context"
	"testing"
	"time"

	"pledgebook/events"
	"pledgebook/models"
	"pledgebook/repository/testutil"
	"pledgebook/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()
	delivered := make(chan struct{}, 1)
	bus.Subscribe(events.EventTypePledgeSubmitted, func(ctx context.Context, e events.Event) {
		delivered <- struct{}{}
	})

	ctx := context.Background()
	uow := NewUnitOfWorkFactory(testDB.DB, bus).Create()
	require.NoError(t, uow.Begin(ctx))

	require.NoError(t, uow.PledgeRepository().Create(ctx, testutil.CreateTestPledge("AAAAAAA", "alice", models.PledgeKindProvided)))
	uow.EventBus().Publish(events.PledgeSubmittedEvent{Code: "AAAAAAA"})
	require.NoError(t, uow.Rollback())

	got, err := NewPledgeRepository(testDB.DB).GetByCode(ctx, "AAAAAAA")
	require.NoError(t, err)
	assert.Nil(t, got)

	select {
	case <-delivered:
		t.Fatal("Event from rolled back work was delivered")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestServices_OnPostgres(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	prices := new(service.MockPriceProvider)
	prices.On("GetPrice", mock.Anything).Return(models.PriceQuote{PHP: 10, USD: 0.2})
	clock := service.FixedClock{T: time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)}
	uowFactory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	pledges := service.NewPledgeService(uowFactory, prices, service.NewCodeGenerator(service.DefaultCodeLength), clock)
	admin := service.NewAdminService(uowFactory, clock)

	submitted, err := pledges.Submit(ctx, "alice", models.PledgeKindProvided, 50)
	require.NoError(t, err)
	assert.Equal(t, 500.0, submitted.AmountPHPAtTime)

	_, err = admin.AcceptPledge(ctx, submitted.Code)
	require.NoError(t, err)

	_, err = admin.AcceptPledge(ctx, submitted.Code)
	assert.ErrorIs(t, err, service.ErrPledgeNotFound)

	history, err := NewTransactionRepository(testDB.DB).GetByCode(ctx, submitted.Code)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.TransactionActionProvided, history[0].Action)
	assert.Equal(t, 50.0, history[0].AmountPi)
	assert.Equal(t, models.TransactionActionAccept, history[1].Action)
	assert.Zero(t, history[1].AmountPi)
}
