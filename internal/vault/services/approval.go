package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spknetwork/oratr-vault/internal/common"
	"github.com/spknetwork/oratr-vault/internal/vault/models"
)

// ApprovalGateway suspends a signing call until an out-of-band
// approve/reject decision arrives. Each request gets a generated id and a
// one-shot channel; a UI layer subscribes to approval-requested events and
// answers via Resolve. A request that is not answered within the timeout
// fails instead of hanging.
type ApprovalGateway struct {
	mu       sync.Mutex
	pending  map[string]chan bool
	timeout  time.Duration
	notifier *Notifier
}

func NewApprovalGateway(timeout time.Duration, notifier *Notifier) *ApprovalGateway {
	return &ApprovalGateway{
		pending:  make(map[string]chan bool),
		timeout:  timeout,
		notifier: notifier,
	}
}

// Request registers a new approval request for username and blocks until
// it is resolved, times out, or ctx is canceled. It returns nil when
// approved, common.ErrUserRejected when declined, and
// common.ErrApprovalTimeout when nobody answered in time.
func (g *ApprovalGateway) Request(ctx context.Context, username string, authority models.Authority) error {
	id := uuid.NewString()
	ch := make(chan bool, 1)

	g.mu.Lock()
	g.pending[id] = ch
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, id)
		g.mu.Unlock()
	}()

	g.notifier.Publish(Event{Type: EventApprovalRequested, Account: username, RequestID: id})

	select {
	case approved := <-ch:
		if !approved {
			return common.ErrUserRejected
		}
		return nil
	case <-time.After(g.timeout):
		return common.ErrApprovalTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resolve answers a pending request by id. Resolving an unknown or
// already-answered id is an error.
func (g *ApprovalGateway) Resolve(id string, approved bool) error {
	g.mu.Lock()
	ch, ok := g.pending[id]
	if ok {
		delete(g.pending, id)
	}
	g.mu.Unlock()

	if !ok {
		return fmt.Errorf("no pending approval request %s", id)
	}
	ch <- approved
	return nil
}
