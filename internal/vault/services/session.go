package services

import (
	"sync"
	"time"

	"github.com/spknetwork/oratr-vault/internal/common"
	"github.com/spknetwork/oratr-vault/internal/vault/models"
)

// ExpiryPolicy selects how the session timer behaves.
type ExpiryPolicy string

const (
	// PolicyInactivity restarts the timer on every authenticated
	// operation, so the session stays open while it is being used.
	PolicyInactivity ExpiryPolicy = "inactivity"

	// PolicyContinuous arms the timer once at unlock; the session locks a
	// fixed duration after unlock regardless of activity.
	PolicyContinuous ExpiryPolicy = "continuous"
)

// SessionManager owns the ephemeral session state: the unlocking PIN and
// the decrypted account table. Both exist only in memory and only while
// the session is unlocked; lock/unlock replaces the state wholesale.
type SessionManager struct {
	mu       sync.Mutex
	policy   ExpiryPolicy
	ttl      time.Duration
	notifier *Notifier

	unlocked bool
	pin      []byte
	accounts map[string]*models.Account

	timer *time.Timer
	// generation invalidates in-flight timer callbacks: a callback only
	// fires if its generation still matches, so stop/restart races cannot
	// produce a duplicate or stale expiry.
	generation uint64
}

// NewSessionManager creates a locked session manager. A non-positive ttl
// disables automatic expiry.
func NewSessionManager(policy ExpiryPolicy, ttl time.Duration, notifier *Notifier) *SessionManager {
	if policy != PolicyContinuous {
		policy = PolicyInactivity
	}
	return &SessionManager{policy: policy, ttl: ttl, notifier: notifier}
}

// Unlocked reports whether the session currently holds decrypted state.
func (m *SessionManager) Unlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked
}

// Activate transitions Locked→Unlocked with the given PIN and decrypted
// table, replacing any previous state, and arms the expiry timer.
func (m *SessionManager) Activate(pin []byte, accounts map[string]*models.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wipeLocked()
	m.unlocked = true
	m.pin = append([]byte(nil), pin...)
	if accounts == nil {
		accounts = make(map[string]*models.Account)
	}
	m.accounts = accounts
	m.armTimerLocked()

	m.notifier.Publish(Event{Type: EventUnlocked})
}

// Lock explicitly transitions to Locked, wiping the PIN and table.
// Locking an already locked session is a no-op.
func (m *SessionManager) Lock() {
	m.mu.Lock()
	if !m.unlocked {
		m.mu.Unlock()
		return
	}
	m.wipeLocked()
	m.mu.Unlock()

	m.notifier.Publish(Event{Type: EventLocked})
}

// Touch restarts the expiry timer under the inactivity policy. Under the
// continuous policy it does nothing. Called by every authenticated
// operation.
func (m *SessionManager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.unlocked || m.policy != PolicyInactivity {
		return
	}
	m.armTimerLocked()
}

// PIN returns a copy of the session passphrase.
func (m *SessionManager) PIN() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.unlocked {
		return nil, common.ErrLocked
	}
	return append([]byte(nil), m.pin...), nil
}

// Account returns a deep copy of one account from the decrypted table.
func (m *SessionManager) Account(username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.unlocked {
		return nil, common.ErrLocked
	}
	acc, ok := m.accounts[username]
	if !ok {
		return nil, common.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

// Snapshot returns a deep copy of the decrypted account table.
func (m *SessionManager) Snapshot() (map[string]*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.unlocked {
		return nil, common.ErrLocked
	}
	out := make(map[string]*models.Account, len(m.accounts))
	for name, acc := range m.accounts {
		out[name] = acc.Clone()
	}
	return out, nil
}

// Replace swaps in a new decrypted table. Mutating services build the new
// table on a snapshot, persist it, then call Replace; the table is never
// mutated in place.
func (m *SessionManager) Replace(accounts map[string]*models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.unlocked {
		return common.ErrLocked
	}
	if accounts == nil {
		accounts = make(map[string]*models.Account)
	}
	m.accounts = accounts
	return nil
}

// armTimerLocked (re)starts the expiry timer. Caller holds m.mu.
func (m *SessionManager) armTimerLocked() {
	m.generation++
	gen := m.generation

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.ttl <= 0 {
		return
	}
	m.timer = time.AfterFunc(m.ttl, func() { m.expire(gen) })
}

// expire is the timer callback. The generation check makes firing
// idempotent against concurrent lock/unlock/touch transitions.
func (m *SessionManager) expire(gen uint64) {
	m.mu.Lock()
	if !m.unlocked || gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.wipeLocked()
	m.mu.Unlock()

	m.notifier.Publish(Event{Type: EventSessionExpired})
}

// wipeLocked clears all session state. Caller holds m.mu.
func (m *SessionManager) wipeLocked() {
	m.generation++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	common.WipeByteArray(m.pin)
	m.pin = nil
	m.accounts = nil
	m.unlocked = false
}
