package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spknetwork/oratr-vault/internal/common"
	"github.com/spknetwork/oratr-vault/internal/vault/models"
)

// Export re-encrypts one or more accounts under an export passphrase and
// prints the resulting bundle.
func (a *App) Export(ctx context.Context) error {
	raw, err := getSimpleText(a.reader, "Enter usernames to export (space separated)", os.Stdout)
	if err != nil {
		return err
	}
	usernames := strings.Fields(raw)
	if len(usernames) == 0 {
		log.Println("No usernames given")
		return fmt.Errorf("no usernames given")
	}

	passphrase, err := getSecret("Choose an export passphrase", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	bundle, err := a.exchange.ExportAccounts(ctx, usernames, string(passphrase))
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	text, err := bundle.Encode()
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

// Import reads a pasted bundle, decrypts it with the export passphrase,
// and merges its accounts into the vault.
func (a *App) Import(ctx context.Context) error {
	text, err := GetMultiline(a.reader, "Paste export bundle:", os.Stdout)
	if err != nil {
		return err
	}

	bundle, err := models.ParseExportBundle(text)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	passphrase, err := getSecret("Enter export passphrase", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	imported, err := a.exchange.ImportBundle(ctx, bundle, string(passphrase))
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Imported %d account(s): %s\n", len(imported), strings.Join(imported, ", "))
	return nil
}
