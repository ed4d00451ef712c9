package vaultrec

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:vaultrec_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS vault (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
DELETE FROM vault;
`)
	require.NoError(t, err)
	return db
}

func TestSQLiteRepository_SetGet(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyActiveAccount, []byte("alice")))

	got, err := repo.Get(ctx, KeyActiveAccount)
	require.NoError(t, err)
	require.Equal(t, []byte("alice"), got)
}

func TestSQLiteRepository_GetMissingReturnsNil(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	got, err := repo.Get(context.Background(), KeyEncryptedAccounts)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLiteRepository_SetOverwrites(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyEncryptedAccounts, []byte("v1")))
	require.NoError(t, repo.Set(ctx, KeyEncryptedAccounts, []byte("v2")))

	got, err := repo.Get(ctx, KeyEncryptedAccounts)
	require.NoError(t, err)
	require.Equal(t, []byte("v2"), got)
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyActiveAccount, []byte("alice")))
	require.NoError(t, repo.Delete(ctx, KeyActiveAccount))

	got, err := repo.Get(ctx, KeyActiveAccount)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLiteRepository_Clear(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyActiveAccount, []byte("alice")))
	require.NoError(t, repo.Set(ctx, KeyEncryptedAccounts, []byte("env")))
	require.NoError(t, repo.Clear(ctx))

	for _, key := range []string{KeyActiveAccount, KeyEncryptedAccounts} {
		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		require.Nil(t, got)
	}
}

func TestInitDatabase_CreatesSchema(t *testing.T) {
	db, err := InitDatabase(context.Background(), "file:vaultrec_migrate?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSQLiteRepository(db)
	require.NoError(t, repo.Set(context.Background(), KeyActiveAccount, []byte("bob")))
}
