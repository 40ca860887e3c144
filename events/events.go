package events

import (
	"context"
	"sync"
	"time"

	"pledgebook/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePledgeSubmitted EventType = "pledge_submitted"
	EventTypePledgeAccepted  EventType = "pledge_accepted"
	EventTypeUserRegistered  EventType = "user_registered"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PledgeSubmittedEvent is emitted once a pledge and its audit record are stored
type PledgeSubmittedEvent struct {
	Code      string            `json:"code"`
	Username  string            `json:"username"`
	Kind      models.PledgeKind `json:"kind"`
	AmountPi  float64           `json:"amount_pi"`
	AmountPHP float64           `json:"amount_php"`
	CreatedAt time.Time         `json:"created_at"`
}

func (e PledgeSubmittedEvent) Type() EventType {
	return EventTypePledgeSubmitted
}

// PledgeAcceptedEvent is emitted when an admin accepts a pending pledge
type PledgeAcceptedEvent struct {
	Code       string            `json:"code"`
	Username   string            `json:"username"`
	Kind       models.PledgeKind `json:"kind"`
	AmountPi   float64           `json:"amount_pi"`
	AcceptedAt time.Time         `json:"accepted_at"`
}

func (e PledgeAcceptedEvent) Type() EventType {
	return EventTypePledgeAccepted
}

// UserRegisteredEvent represents a new account
type UserRegisteredEvent struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers on main event bus")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			log.WithFields(log.Fields{
				"eventType":    event.Type(),
				"handlerIndex": handlerIndex,
			}).Debug("Calling event handler")
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until the
// work is committed.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush emits pending events on the real bus. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus to main event bus")

	// Handlers outlive the request that raised the event.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		log.WithFields(log.Fields{
			"eventType": ev.Type(),
		}).Debug("Emitting event to main event bus")
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	log.Debug("All pending events flushed, transactional bus cleared")
	return nil
}

// Discard drops pending events after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
