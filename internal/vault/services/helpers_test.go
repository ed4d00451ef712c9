package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/spknetwork/oratr-vault/internal/cryptox"
	"github.com/spknetwork/oratr-vault/internal/keys"
	"github.com/spknetwork/oratr-vault/internal/logging"
)

// testEnv wires a complete vault over an in-memory database with a fast
// key-derivation engine.
type testEnv struct {
	db       *sql.DB
	notifier *Notifier
	session  *SessionManager
	accounts *AccountService
	exchange *ExchangeService
}

func newTestEnv(t *testing.T, policy ExpiryPolicy, ttl time.Duration) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS vault (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)

	engine, err := cryptox.NewEngine(cryptox.EnvelopeVersionGCM, 64)
	require.NoError(t, err)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	notifier := NewNotifier()
	session := NewSessionManager(policy, ttl, notifier)
	accounts := NewAccountService(session, db, engine, notifier, log, "")
	exchange := NewExchangeService(session, accounts, engine, notifier, log, "")

	return &testEnv{
		db:       db,
		notifier: notifier,
		session:  session,
		accounts: accounts,
		exchange: exchange,
	}
}

// unlockedEnv sets up a fresh vault already unlocked with testPIN.
func unlockedEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t, PolicyInactivity, 0)
	require.NoError(t, env.accounts.SetupPin(context.Background(), testPIN))
	return env
}

const testPIN = "1234"

func mustWIF(t *testing.T) string {
	t.Helper()
	wif, err := keys.GenerateWIF()
	require.NoError(t, err)
	return wif
}

// waitEvent drains ch until an event of the wanted type arrives, failing
// the test after a second.
func waitEvent(t *testing.T, ch <-chan Event, want EventType) Event {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case e := <-ch:
			if e.Type == want {
				return e
			}
		case <-deadline:
			t.Fatalf("no %s event within deadline", want)
		}
	}
}
