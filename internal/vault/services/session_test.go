package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spknetwork/oratr-vault/internal/common"
	"github.com/spknetwork/oratr-vault/internal/vault/models"
)

func TestSessionManager_LockedByDefault(t *testing.T) {
	m := NewSessionManager(PolicyInactivity, 0, NewNotifier())

	require.False(t, m.Unlocked())

	_, err := m.PIN()
	require.ErrorIs(t, err, common.ErrLocked)

	_, err = m.Snapshot()
	require.ErrorIs(t, err, common.ErrLocked)

	_, err = m.Account("alice")
	require.ErrorIs(t, err, common.ErrLocked)
}

func TestSessionManager_ActivateAndLock(t *testing.T) {
	notifier := NewNotifier()
	ch, cancel := notifier.Subscribe()
	defer cancel()

	m := NewSessionManager(PolicyInactivity, 0, notifier)
	m.Activate([]byte("1234"), map[string]*models.Account{
		"alice": models.NewAccount("alice", time.Now().UTC()),
	})

	require.True(t, m.Unlocked())
	waitEvent(t, ch, EventUnlocked)

	pin, err := m.PIN()
	require.NoError(t, err)
	require.Equal(t, []byte("1234"), pin)

	acc, err := m.Account("alice")
	require.NoError(t, err)
	require.Equal(t, "alice", acc.Username)

	m.Lock()
	require.False(t, m.Unlocked())
	waitEvent(t, ch, EventLocked)

	_, err = m.PIN()
	require.ErrorIs(t, err, common.ErrLocked)
}

func TestSessionManager_LockWhenLockedIsNoop(t *testing.T) {
	notifier := NewNotifier()
	ch, cancel := notifier.Subscribe()
	defer cancel()

	m := NewSessionManager(PolicyInactivity, 0, notifier)
	m.Lock()

	select {
	case e := <-ch:
		t.Fatalf("unexpected event %s", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSessionManager_SnapshotIsDeepCopy(t *testing.T) {
	m := NewSessionManager(PolicyInactivity, 0, NewNotifier())
	acc := models.NewAccount("alice", time.Now().UTC())
	acc.Keys[models.SlotPosting] = models.KeyPair{PrivateKey: "priv", PublicKey: "pub"}
	m.Activate([]byte("1234"), map[string]*models.Account{"alice": acc})

	snap, err := m.Snapshot()
	require.NoError(t, err)
	delete(snap["alice"].Keys, models.SlotPosting)
	delete(snap, "alice")

	got, err := m.Account("alice")
	require.NoError(t, err)
	require.Contains(t, got.Keys, models.SlotPosting)
}

func TestSessionManager_InactivityExpiry(t *testing.T) {
	notifier := NewNotifier()
	ch, cancel := notifier.Subscribe()
	defer cancel()

	m := NewSessionManager(PolicyInactivity, 50*time.Millisecond, notifier)
	m.Activate([]byte("1234"), nil)

	waitEvent(t, ch, EventSessionExpired)
	require.False(t, m.Unlocked())
}

func TestSessionManager_TouchExtendsInactivity(t *testing.T) {
	notifier := NewNotifier()
	ch, cancel := notifier.Subscribe()
	defer cancel()

	m := NewSessionManager(PolicyInactivity, 200*time.Millisecond, notifier)
	m.Activate([]byte("1234"), nil)

	// Keep touching well past the ttl; the session must stay open.
	for i := 0; i < 8; i++ {
		time.Sleep(50 * time.Millisecond)
		m.Touch()
	}
	require.True(t, m.Unlocked())

	waitEvent(t, ch, EventSessionExpired)
	require.False(t, m.Unlocked())
}

func TestSessionManager_ContinuousIgnoresTouch(t *testing.T) {
	notifier := NewNotifier()
	ch, cancel := notifier.Subscribe()
	defer cancel()

	m := NewSessionManager(PolicyContinuous, 200*time.Millisecond, notifier)
	m.Activate([]byte("1234"), nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 8; i++ {
			time.Sleep(50 * time.Millisecond)
			m.Touch()
		}
	}()

	waitEvent(t, ch, EventSessionExpired)
	require.False(t, m.Unlocked())
	<-done
}

func TestSessionManager_ZeroTTLNeverArmsTimer(t *testing.T) {
	m := NewSessionManager(PolicyInactivity, 0, NewNotifier())
	m.Activate([]byte("1234"), nil)

	time.Sleep(100 * time.Millisecond)
	require.True(t, m.Unlocked())
}

func TestSessionManager_ReplaceRequiresUnlock(t *testing.T) {
	m := NewSessionManager(PolicyInactivity, 0, NewNotifier())
	err := m.Replace(map[string]*models.Account{})
	require.ErrorIs(t, err, common.ErrLocked)
}
