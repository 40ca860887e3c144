package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"pledgebook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventDeliveryIntegration tests the flow from TransactionalBus to the main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan PledgeSubmittedEvent, 1)
	mainBus.Subscribe(EventTypePledgeSubmitted, func(ctx context.Context, event Event) {
		submitted, ok := event.(PledgeSubmittedEvent)
		if !ok {
			t.Errorf("Expected PledgeSubmittedEvent, got %T", event)
			return
		}
		received <- submitted
	})

	testEvent := PledgeSubmittedEvent{
		Code:      "AB12CD3",
		Username:  "alice",
		Kind:      models.PledgeKindProvided,
		AmountPi:  10,
		AmountPHP: 420.5,
		CreatedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}

	transactionalBus.Publish(testEvent)
	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case got := <-received:
		assert.Equal(t, testEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery checks every flushed event reaches its own subscribers
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var (
		mu    sync.Mutex
		codes []string
		wg    sync.WaitGroup
	)
	wg.Add(3)
	record := func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		defer mu.Unlock()
		switch e := event.(type) {
		case PledgeSubmittedEvent:
			codes = append(codes, "submitted:"+e.Code)
		case PledgeAcceptedEvent:
			codes = append(codes, "accepted:"+e.Code)
		}
	}
	mainBus.Subscribe(EventTypePledgeSubmitted, record)
	mainBus.Subscribe(EventTypePledgeAccepted, record)

	transactionalBus.Publish(PledgeSubmittedEvent{Code: "AAAAAAA"})
	transactionalBus.Publish(PledgeSubmittedEvent{Code: "BBBBBBB"})
	transactionalBus.Publish(PledgeAcceptedEvent{Code: "AAAAAAA"})
	require.NoError(t, transactionalBus.Flush(context.Background()))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Events were not delivered within timeout")
	}

	assert.ElementsMatch(t, []string{"submitted:AAAAAAA", "submitted:BBBBBBB", "accepted:AAAAAAA"}, codes)
}

// TestTransactionalBusDiscard ensures discarded events never reach subscribers
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	called := make(chan struct{}, 1)
	mainBus.Subscribe(EventTypePledgeAccepted, func(ctx context.Context, event Event) {
		called <- struct{}{}
	})

	transactionalBus.Publish(PledgeAcceptedEvent{Code: "AAAAAAA"})
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case <-called:
		t.Fatal("Discarded event was delivered")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewBus()

	delivered := make(chan struct{}, 1)
	bus.Subscribe(EventTypeUserRegistered, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeUserRegistered, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	bus.Emit(context.Background(), UserRegisteredEvent{Username: "alice"})

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("Healthy handler was not called")
	}
}
