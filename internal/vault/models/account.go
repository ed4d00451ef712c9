package models

import (
	"maps"
	"time"

	"github.com/spknetwork/oratr-vault/internal/common"
)

// KeyPair is a stored private key (WIF) together with its derived public
// key. The public key is recomputed whenever the private key changes.
type KeyPair struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
}

// Account is one vault entry. Plaintext Account values exist only inside
// an unlocked session; at rest the whole account table lives inside an
// encrypted envelope.
//
// An account may end up with zero key slots after deletions: it loses
// signing capability but is not destroyed.
type Account struct {
	Username   string              `json:"username"`
	Keys       map[KeySlot]KeyPair `json:"keys"`
	Flags      map[string]bool     `json:"flags,omitempty"`
	AddedAt    time.Time           `json:"added_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	ImportedAt *time.Time          `json:"imported_at,omitempty"`
}

func NewAccount(username string, now time.Time) *Account {
	return &Account{
		Username:  username,
		Keys:      make(map[KeySlot]KeyPair),
		AddedAt:   now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy, so callers can hand accounts across boundaries
// without sharing the underlying maps.
func (a *Account) Clone() *Account {
	c := *a
	c.Keys = maps.Clone(a.Keys)
	if c.Keys == nil {
		c.Keys = make(map[KeySlot]KeyPair)
	}
	c.Flags = maps.Clone(a.Flags)
	if a.ImportedAt != nil {
		ts := *a.ImportedAt
		c.ImportedAt = &ts
	}
	return &c
}

// Resolve walks the authority's slot chain and returns the first key pair
// present, with the slot it came from. Returns common.ErrNoKeyAvailable
// when the chain is exhausted.
func (a *Account) Resolve(authority Authority) (KeyPair, KeySlot, error) {
	for _, slot := range authority.Chain() {
		if pair, ok := a.Keys[slot]; ok {
			return pair, slot, nil
		}
	}
	return KeyPair{}, "", common.ErrNoKeyAvailable
}

// PublicAccount is the externally visible view of an account: derived
// public keys, slot-presence flags and timestamps. Never private material.
type PublicAccount struct {
	Username   string             `json:"username"`
	HasPosting bool               `json:"hasPosting"`
	HasActive  bool               `json:"hasActive"`
	HasMemo    bool               `json:"hasMemo"`
	HasOwner   bool               `json:"hasOwner"`
	PublicKeys map[KeySlot]string `json:"publicKeys"`
	Flags      map[string]bool    `json:"flags,omitempty"`
	AddedAt    time.Time          `json:"added_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	ImportedAt *time.Time         `json:"imported_at,omitempty"`
}

// Public projects the account onto its public view.
func (a *Account) Public() PublicAccount {
	pub := PublicAccount{
		Username:   a.Username,
		PublicKeys: make(map[KeySlot]string, len(a.Keys)),
		Flags:      maps.Clone(a.Flags),
		AddedAt:    a.AddedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	if a.ImportedAt != nil {
		ts := *a.ImportedAt
		pub.ImportedAt = &ts
	}
	for slot, pair := range a.Keys {
		pub.PublicKeys[slot] = pair.PublicKey
	}
	_, pub.HasPosting = a.Keys[SlotPosting]
	_, pub.HasActive = a.Keys[SlotActive]
	_, pub.HasMemo = a.Keys[SlotMemo]
	_, pub.HasOwner = a.Keys[SlotOwner]
	return pub
}
