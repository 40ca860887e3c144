package jsonl

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"pledgebook/events"
	"pledgebook/models"
	"pledgebook/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ledgerServices struct {
	ledger    *Ledger
	pledges   service.PledgeService
	admin     service.AdminService
	dashboard service.DashboardService
	users     service.UserService
}

func newLedgerServices(t *testing.T) *ledgerServices {
	t.Helper()

	ledger, err := OpenLedger(t.TempDir())
	require.NoError(t, err)

	prices := new(service.MockPriceProvider)
	prices.On("GetPrice", mock.Anything).Return(models.PriceQuote{PHP: 10, USD: 0.2})

	clock := service.FixedClock{T: time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)}
	uowFactory := NewUnitOfWorkFactory(ledger, events.NewBus())

	return &ledgerServices{
		ledger:    ledger,
		pledges:   service.NewPledgeService(uowFactory, prices, service.NewCodeGenerator(service.DefaultCodeLength), clock),
		admin:     service.NewAdminService(uowFactory, clock),
		dashboard: service.NewDashboardService(uowFactory, prices, clock),
		users:     service.NewUserService(uowFactory, clock),
	}
}

func TestLedger_SubmitAcceptDashboard(t *testing.T) {
	ctx := context.Background()
	s := newLedgerServices(t)

	_, err := s.users.Register(ctx, "alice", "hunter2")
	require.NoError(t, err)
	_, err = s.users.Authenticate(ctx, "ALICE", "hunter2")
	require.NoError(t, err)

	provided, err := s.pledges.Submit(ctx, "alice", models.PledgeKindProvided, 50)
	require.NoError(t, err)
	assert.Len(t, provided.Code, service.DefaultCodeLength)
	assert.Equal(t, 500.0, provided.AmountPHPAtTime)

	_, err = s.pledges.Submit(ctx, "alice", models.PledgeKindRequested, 20)
	require.NoError(t, err)

	accepted, err := s.admin.AcceptPledge(ctx, provided.Code)
	require.NoError(t, err)
	assert.Equal(t, models.PledgeStatusAccepted, accepted.Status)

	_, err = s.admin.AcceptPledge(ctx, provided.Code)
	assert.ErrorIs(t, err, service.ErrPledgeNotFound)

	pending, err := s.admin.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.PledgeKindRequested, pending[0].Kind)

	dash, err := s.dashboard.Dashboard(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 50.0, dash.ProvidedPi)
	assert.Equal(t, 20.0, dash.RequestedPi)
	assert.True(t, dash.Pending)
	assert.Len(t, dash.Entries, 2)

	history, err := s.ledger.Transactions.GetByCode(ctx, provided.Code)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.TransactionActionProvided, history[0].Action)
	assert.Equal(t, models.TransactionActionAccept, history[1].Action)
}

// Submissions racing with acceptance must never lose a ledger entry.
func TestLedger_ConcurrentSubmitAndAccept(t *testing.T) {
	ctx := context.Background()
	s := newLedgerServices(t)

	seed := make([]string, 10)
	for i := range seed {
		p, err := s.pledges.Submit(ctx, "seed", models.PledgeKindProvided, float64(i+1))
		require.NoError(t, err)
		seed[i] = p.Code
	}

	const submitters = 8
	const perSubmitter = 10

	var wg sync.WaitGroup
	for w := 0; w < submitters; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perSubmitter; i++ {
				_, err := s.pledges.Submit(ctx, fmt.Sprintf("user%d", w), models.PledgeKindRequested, 1)
				assert.NoError(t, err)
			}
		}(w)
	}
	for _, code := range seed {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			_, err := s.admin.AcceptPledge(ctx, code)
			assert.NoError(t, err)
		}(code)
	}
	wg.Wait()

	all, err := s.ledger.Pledges.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(seed)+submitters*perSubmitter)

	codes := make(map[string]bool)
	accepted := 0
	for _, p := range all {
		codes[p.Code] = true
		if p.Status == models.PledgeStatusAccepted {
			accepted++
		}
	}
	assert.Len(t, codes, len(all))
	assert.Equal(t, len(seed), accepted)

	pending, err := s.admin.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, submitters*perSubmitter)
}
