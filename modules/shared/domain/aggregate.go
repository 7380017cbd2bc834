// Package domain provides shared domain primitives.
package domain

import "github.com/kunalsingh7053/VyaparX/modules/shared/events"

// AggregateRoot collects domain events raised by business methods so the
// command handler can hand them to the outbox in the same transaction as
// the state change.
//
// Example:
//
//	type Order struct {
//	    domain.AggregateRoot
//	    status Status
//	}
//
//	func (o *Order) Cancel() error {
//	    o.status = StatusCancelled
//	    o.AddDomainEvent(newStatusChangedEvent(o, StatusPending))
//	    return nil
//	}
type AggregateRoot struct {
	domainEvents []events.Event
	version      int64
}

func (a *AggregateRoot) AddDomainEvent(event events.Event) {
	a.domainEvents = append(a.domainEvents, event)
}

// DomainEvents returns the collected events without clearing them.
func (a *AggregateRoot) DomainEvents() []events.Event {
	return a.domainEvents
}

// PopDomainEvents returns the collected events and clears the collection.
func (a *AggregateRoot) PopDomainEvents() []events.Event {
	evts := a.domainEvents
	a.domainEvents = nil
	return evts
}

// Version is the persisted revision the aggregate was loaded at, zero for a
// new aggregate. Repositories compare it on save (optimistic concurrency).
func (a *AggregateRoot) Version() int64 { return a.version }

// SetVersion is for repositories only.
func (a *AggregateRoot) SetVersion(v int64) { a.version = v }
