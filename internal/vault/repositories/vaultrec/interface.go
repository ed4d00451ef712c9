// Package vaultrec persists the vault record: a tiny key/value table
// holding the encrypted account envelope and the active-account pointer.
//
// The envelope text is the only thing this process shares with disk; the
// active-account pointer lives outside the envelope so it is readable
// without unlocking, and it carries no secret.
package vaultrec

import "context"

// Record keys.
const (
	// KeyEncryptedAccounts holds the serialized encrypted envelope.
	KeyEncryptedAccounts = "encryptedAccounts"

	// KeyActiveAccount holds the active-account username in plain text.
	KeyActiveAccount = "activeAccount"
)

// Repository is the persisted vault record store. Get returns nil (no
// error) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
