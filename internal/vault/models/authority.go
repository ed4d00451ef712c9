// Package models defines the vault's account model: key slots, authority
// levels, accounts and their public views, and the export bundle format.
package models

import "fmt"

// KeySlot identifies one of the four fixed key positions on an account.
type KeySlot string

const (
	SlotPosting KeySlot = "posting"
	SlotActive  KeySlot = "active"
	SlotMemo    KeySlot = "memo"
	SlotOwner   KeySlot = "owner"
)

// AllKeySlots returns the slots in canonical display order.
func AllKeySlots() []KeySlot {
	return []KeySlot{SlotPosting, SlotActive, SlotMemo, SlotOwner}
}

// ParseKeySlot validates a user-supplied slot name.
func ParseKeySlot(s string) (KeySlot, error) {
	switch KeySlot(s) {
	case SlotPosting, SlotActive, SlotMemo, SlotOwner:
		return KeySlot(s), nil
	}
	return "", fmt.Errorf("unknown key slot %q", s)
}

// Authority is the permission tier required by an operation.
// Tiers order posting < active < owner; a stronger key may always act on
// behalf of a weaker requirement. Memo is not part of the hierarchy: it is
// a separate slot used only for memo encryption.
type Authority string

const (
	AuthorityPosting Authority = "posting"
	AuthorityActive  Authority = "active"
	AuthorityOwner   Authority = "owner"
	AuthorityMemo    Authority = "memo"
)

// ParseAuthority validates a user-supplied authority name.
func ParseAuthority(s string) (Authority, error) {
	switch Authority(s) {
	case AuthorityPosting, AuthorityActive, AuthorityOwner, AuthorityMemo:
		return Authority(s), nil
	}
	return "", fmt.Errorf("unknown authority %q", s)
}

// Chain returns the slot resolution order for the authority: the requested
// level first, then each stronger level up to owner. Both signing and raw
// key retrieval must use this identical order.
func (a Authority) Chain() []KeySlot {
	switch a {
	case AuthorityPosting:
		return []KeySlot{SlotPosting, SlotActive, SlotOwner}
	case AuthorityActive:
		return []KeySlot{SlotActive, SlotOwner}
	case AuthorityOwner:
		return []KeySlot{SlotOwner}
	case AuthorityMemo:
		return []KeySlot{SlotMemo}
	}
	return nil
}
