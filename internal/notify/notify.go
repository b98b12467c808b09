// Package notify delivers best-effort side-channel events: member
// notifications and per-item history lines. The lending core enqueues
// after commit; workers drain the queue outside any transaction.
// Delivery failures are logged and dropped, never propagated back into
// the operation that produced them.
package notify

import (
	"context"

	"equiplend-backend/internal/domain"
)

// Event is one notification to fan out to the configured sinks.
type Event struct {
	Type       string
	MemberID   *int32
	Title      string
	Message    string
	Attributes map[string]string
}

// Sink is any delivery channel (database inbox, email, ...). Sinks must
// tolerate duplicate and lost events: the queue is at-most-once.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// Publisher is the interface the services see.
type Publisher interface {
	Publish(ev Event)
	PublishHistory(h domain.ItemHistoryEntry)
}

// Discard is a Publisher that drops everything. Useful in tests and in
// jobs that must not emit.
type Discard struct{}

func (Discard) Publish(Event)                          {}
func (Discard) PublishHistory(domain.ItemHistoryEntry) {}
