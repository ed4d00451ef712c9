// Package common contains shared constants and sentinel errors used across
// vault components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Session state errors.
	ErrLocked = errors.New("vault is locked")

	// ErrInvalidPIN is returned when unlocking fails. The message is
	// deliberately generic: it must not reveal whether the PIN was wrong
	// or the stored vault was missing/garbled.
	ErrInvalidPIN = errors.New("unable to unlock vault")

	// Account/key errors.
	ErrInvalidKey      = errors.New("invalid private key")
	ErrAccountNotFound = errors.New("account not found")
	ErrSlotNotFound    = errors.New("key slot not found")
	ErrNoKeyAvailable  = errors.New("no key available for requested authority")

	// ErrInvalidImport covers both a bad bundle marker and a wrong export
	// passphrase; like ErrInvalidPIN it stays generic on purpose.
	ErrInvalidImport = errors.New("unable to import accounts")

	// Signing approval errors.
	ErrUserRejected    = errors.New("signing request rejected")
	ErrApprovalTimeout = errors.New("signing approval timed out")

	// ErrStoreCorrupted is returned when the on-disk envelope cannot be
	// parsed. The corrupt record is quarantined; a new vault can be set up.
	ErrStoreCorrupted = errors.New("vault store corrupted")
)
