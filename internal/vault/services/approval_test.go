package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spknetwork/oratr-vault/internal/common"
	"github.com/spknetwork/oratr-vault/internal/vault/models"
)

func TestApprovalGateway_Approve(t *testing.T) {
	notifier := NewNotifier()
	ch, cancel := notifier.Subscribe()
	defer cancel()

	g := NewApprovalGateway(time.Second, notifier)

	done := make(chan error, 1)
	go func() {
		done <- g.Request(context.Background(), "alice", models.AuthorityActive)
	}()

	e := waitEvent(t, ch, EventApprovalRequested)
	require.Equal(t, "alice", e.Account)
	require.NotEmpty(t, e.RequestID)

	require.NoError(t, g.Resolve(e.RequestID, true))
	require.NoError(t, <-done)
}

func TestApprovalGateway_Reject(t *testing.T) {
	notifier := NewNotifier()
	ch, cancel := notifier.Subscribe()
	defer cancel()

	g := NewApprovalGateway(time.Second, notifier)

	done := make(chan error, 1)
	go func() {
		done <- g.Request(context.Background(), "alice", models.AuthorityOwner)
	}()

	e := waitEvent(t, ch, EventApprovalRequested)
	require.NoError(t, g.Resolve(e.RequestID, false))
	require.ErrorIs(t, <-done, common.ErrUserRejected)
}

func TestApprovalGateway_Timeout(t *testing.T) {
	g := NewApprovalGateway(50*time.Millisecond, NewNotifier())

	err := g.Request(context.Background(), "alice", models.AuthorityActive)
	require.ErrorIs(t, err, common.ErrApprovalTimeout)
}

func TestApprovalGateway_ContextCanceled(t *testing.T) {
	g := NewApprovalGateway(time.Minute, NewNotifier())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- g.Request(ctx, "alice", models.AuthorityActive)
	}()

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestApprovalGateway_ResolveUnknownID(t *testing.T) {
	g := NewApprovalGateway(time.Second, NewNotifier())
	require.Error(t, g.Resolve("no-such-request", true))
}

func TestApprovalGateway_ResolveTwice(t *testing.T) {
	notifier := NewNotifier()
	ch, cancel := notifier.Subscribe()
	defer cancel()

	g := NewApprovalGateway(time.Second, notifier)

	done := make(chan error, 1)
	go func() {
		done <- g.Request(context.Background(), "alice", models.AuthorityActive)
	}()

	e := waitEvent(t, ch, EventApprovalRequested)
	require.NoError(t, g.Resolve(e.RequestID, true))
	require.NoError(t, <-done)

	// The id is one-shot.
	require.Error(t, g.Resolve(e.RequestID, true))
}
