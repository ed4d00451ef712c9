package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotifier_PublishNeverBlocks(t *testing.T) {
	n := NewNotifier()
	_, cancel := n.Subscribe()
	defer cancel()

	// A subscriber that never reads must not stall the publisher.
	for i := 0; i < subscriberBuffer*3; i++ {
		n.Publish(Event{Type: EventLocked})
	}
}

func TestNotifier_CancelClosesChannel(t *testing.T) {
	n := NewNotifier()
	ch, cancel := n.Subscribe()

	cancel()
	_, open := <-ch
	require.False(t, open)

	// Cancel is idempotent and events after cancel go nowhere.
	cancel()
	n.Publish(Event{Type: EventUnlocked})
}

func TestNotifier_FanOut(t *testing.T) {
	n := NewNotifier()
	ch1, cancel1 := n.Subscribe()
	defer cancel1()
	ch2, cancel2 := n.Subscribe()
	defer cancel2()

	n.Publish(Event{Type: EventAccountAdded, Account: "alice"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		e := waitEvent(t, ch, EventAccountAdded)
		require.Equal(t, "alice", e.Account)
	}
}
