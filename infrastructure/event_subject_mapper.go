package infrastructure

import (
	"fmt"

	"pledgebook/events"
)

// Subjects pledge events are published on
const (
	SubjectPledgeSubmitted = "pledges.submitted"
	SubjectPledgeAccepted  = "pledges.accepted"
	SubjectUserRegistered  = "users.registered"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypePledgeSubmitted:
		return SubjectPledgeSubmitted
	case events.EventTypePledgeAccepted:
		return SubjectPledgeAccepted
	case events.EventTypeUserRegistered:
		return SubjectUserRegistered
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectPledgeSubmitted:
		return events.EventTypePledgeSubmitted
	case SubjectPledgeAccepted:
		return events.EventTypePledgeAccepted
	case SubjectUserRegistered:
		return events.EventTypeUserRegistered
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectPledgeSubmitted,
		SubjectPledgeAccepted,
		SubjectUserRegistered,
	}
}

// EventTypes returns every event type with a subject
func (m *EventSubjectMapper) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypePledgeSubmitted,
		events.EventTypePledgeAccepted,
		events.EventTypeUserRegistered,
	}
}
