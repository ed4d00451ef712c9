// Package services contains the application services of the vault:
// session lifecycle, account management, signing, and export/import.
package services

import "sync"

// EventType classifies vault state-change notifications.
type EventType string

const (
	EventUnlocked          EventType = "unlocked"
	EventLocked            EventType = "locked"
	EventSessionExpired    EventType = "session-expired"
	EventAccountAdded      EventType = "account-added"
	EventAccountRemoved    EventType = "account-removed"
	EventKeyDeleted        EventType = "key-deleted"
	EventAccountsImported  EventType = "accounts-imported"
	EventSignedTransaction EventType = "signed-transaction"
	EventApprovalRequested EventType = "approval-requested"
)

// Event is a vault state-change notification. It never carries key
// material or PINs.
type Event struct {
	Type EventType

	// Account is the affected username, when applicable.
	Account string

	// RequestID correlates approval-requested events with Resolve calls.
	RequestID string
}

// Notifier fans events out to subscribers. Publishing never blocks: each
// subscriber gets a buffered channel and slow subscribers lose events
// rather than stalling vault operations.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

const subscriberBuffer = 16

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned cancel function
// removes the subscription and closes the channel.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	ch := make(chan Event, subscriberBuffer)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if c, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers e to every subscriber whose buffer has room.
func (n *Notifier) Publish(e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
