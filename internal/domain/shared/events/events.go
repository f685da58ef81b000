package events

import "time"

// DomainEvent is a fact an aggregate raised while handling a change.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Source is an aggregate holding events not yet staged for delivery.
type Source interface {
	PendingEvents() []DomainEvent
	ClearEvents()
}

// EventRecorder is embedded by aggregates. The zero value is ready to use.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(evs ...DomainEvent) {
	for _, ev := range evs {
		if ev != nil {
			r.pending = append(r.pending, ev)
		}
	}
}

// PendingEvents returns a copy in the order the events were recorded.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	return append([]DomainEvent(nil), r.pending...)
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}

// Take returns the pending events of src and clears them.
func Take(src Source) []DomainEvent {
	if src == nil {
		return nil
	}
	pending := src.PendingEvents()
	src.ClearEvents()
	return pending
}
