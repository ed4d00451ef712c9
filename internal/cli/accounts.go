package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/spknetwork/oratr-vault/internal/common"
	"github.com/spknetwork/oratr-vault/internal/vault/models"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

// Setup prompts for a new PIN twice and initializes a fresh vault.
// The PIN byte slices are wiped before returning.
func (a *App) Setup(ctx context.Context) error {
	pin, err := getSecret("Choose a PIN", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	confirm, err := getSecret("Repeat the PIN", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if len(pin) == 0 || string(pin) != string(confirm) {
		log.Println("PINs do not match")
		return fmt.Errorf("pin mismatch")
	}

	if err := a.accounts.SetupPin(ctx, string(pin)); err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Println("Vault initialized and unlocked")
	return nil
}

// Unlock prompts for the PIN and decrypts the vault.
func (a *App) Unlock(ctx context.Context) error {
	pin, err := getSecret("Enter PIN", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	if err := a.accounts.Unlock(ctx, string(pin)); err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Println("Vault unlocked")
	return nil
}

func (a *App) Lock(ctx context.Context) error {
	a.accounts.Lock()
	fmt.Println("Vault locked")
	return nil
}

// AddAccount prompts for a username and one WIF per key slot, skipping
// slots left empty, and stores the result.
func (a *App) AddAccount(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter account username", os.Stdout)
	if err != nil {
		return err
	}

	supplied := make(map[models.KeySlot]string)
	for _, slot := range models.AllKeySlots() {
		wif, err := getSimpleText(a.reader, fmt.Sprintf("Enter %s key (empty to skip)", slot), os.Stdout)
		if err != nil {
			return err
		}
		if wif != "" {
			supplied[slot] = wif
		}
	}
	if len(supplied) == 0 {
		log.Println("No keys entered")
		return fmt.Errorf("no keys entered")
	}

	pub, err := a.accounts.AddAccount(ctx, username, supplied)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Saved %s with %d key(s)\n", pub.Username, len(pub.PublicKeys))
	return nil
}

func (a *App) List(ctx context.Context) error {
	list, err := a.accounts.ListAccounts(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	active, _ := a.accounts.ActiveAccount(ctx)
	for _, acc := range list {
		marker := " "
		if acc.Username == active {
			marker = "*"
		}
		fmt.Printf("%s %-20s %s\n", marker, acc.Username, slotSummary(acc))
	}
	if len(list) == 0 {
		fmt.Println("No accounts")
	}
	return nil
}

func slotSummary(acc models.PublicAccount) string {
	slots := make([]string, 0, len(acc.PublicKeys))
	for slot := range acc.PublicKeys {
		slots = append(slots, string(slot))
	}
	sort.Strings(slots)
	if len(slots) == 0 {
		return "(no keys)"
	}
	out := slots[0]
	for _, s := range slots[1:] {
		out += "," + s
	}
	return out
}

func (a *App) Show(ctx context.Context, username string) error {
	acc, err := a.accounts.GetAccount(ctx, username)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Println(acc.Username)
	for _, slot := range models.AllKeySlots() {
		if pub, ok := acc.PublicKeys[slot]; ok {
			fmt.Printf("  %-8s %s\n", slot, pub)
		}
	}
	if acc.ImportedAt != nil {
		fmt.Printf("  imported %s\n", acc.ImportedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func (a *App) Remove(ctx context.Context, username string) error {
	if err := a.accounts.RemoveAccount(ctx, username); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Removed", username)
	return nil
}

func (a *App) DeleteKey(ctx context.Context, username, slot string) error {
	parsed, err := models.ParseKeySlot(slot)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	if err := a.accounts.DeleteKey(ctx, username, parsed); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Printf("Deleted %s key of %s\n", slot, username)
	return nil
}

func (a *App) Use(ctx context.Context, username string) error {
	if err := a.accounts.SetActiveAccount(ctx, username); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Active account:", username)
	return nil
}

// RevealKey prints a private key to the terminal. Deliberately loud about
// what it is doing.
func (a *App) RevealKey(ctx context.Context, username, authority string) error {
	parsed, err := models.ParseAuthority(authority)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	wif, err := a.accounts.ResolveKey(ctx, username, parsed)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Printf("Private key (%s) for %s:\n%s\n", authority, username, wif)
	return nil
}

// Reset destroys the vault after an explicit confirmation.
func (a *App) Reset(ctx context.Context) error {
	confirm, err := getSimpleText(a.reader, "Type 'destroy' to erase the vault and every stored key", os.Stdout)
	if err != nil {
		return err
	}
	if confirm != "destroy" {
		fmt.Println("Aborted")
		return nil
	}
	if err := a.accounts.Reset(ctx); err != nil {
		log.Printf("error: %v", err)
		return err
	}
	fmt.Println("Vault destroyed")
	return nil
}
