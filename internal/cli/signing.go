package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spknetwork/oratr-vault/internal/vault/models"
)

// promptSigningTarget asks for the account and authority level to sign
// with, defaulting the account to the active one.
func (a *App) promptSigningTarget(ctx context.Context) (string, models.Authority, error) {
	active, _ := a.accounts.ActiveAccount(ctx)

	prompt := "Enter account username"
	if active != "" {
		prompt = fmt.Sprintf("Enter account username (empty for %s)", active)
	}
	username, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return "", "", err
	}
	if username == "" {
		username = active
	}

	raw, err := getSimpleText(a.reader, "Enter authority (posting/active/owner/memo, empty for posting)", os.Stdout)
	if err != nil {
		return "", "", err
	}
	if raw == "" {
		raw = "posting"
	}
	authority, err := models.ParseAuthority(raw)
	if err != nil {
		return "", "", err
	}
	return username, authority, nil
}

// SignMessage signs a free-form message and prints the
// "<message>:<signature>" result.
func (a *App) SignMessage(ctx context.Context) error {
	username, authority, err := a.promptSigningTarget(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	message, err := getSimpleText(a.reader, "Enter message to sign", os.Stdout)
	if err != nil {
		return err
	}

	signed, err := a.signing.SignMessage(ctx, username, message, authority)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Println(signed)
	return nil
}

// SignTransaction reads transaction JSON, signs it, and prints the signed
// transaction. Broadcasting is left to the caller's tooling.
func (a *App) SignTransaction(ctx context.Context) error {
	username, authority, err := a.promptSigningTarget(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	text, err := GetMultiline(a.reader, "Paste transaction JSON:", os.Stdout)
	if err != nil {
		return err
	}
	if !json.Valid([]byte(text)) {
		log.Println("error: not valid JSON")
		return fmt.Errorf("not valid JSON")
	}

	signed, err := a.signing.SignTransaction(ctx, username, json.RawMessage(text), authority)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	out, err := json.MarshalIndent(signed, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// EncryptMemo encrypts a memo from the chosen account's memo key to a
// recipient public key.
func (a *App) EncryptMemo(ctx context.Context) error {
	username, err := a.promptMemoAccount(ctx)
	if err != nil {
		return err
	}

	recipient, err := getSimpleText(a.reader, "Enter recipient public key", os.Stdout)
	if err != nil {
		return err
	}
	memo, err := getSimpleText(a.reader, "Enter memo text", os.Stdout)
	if err != nil {
		return err
	}

	enc, err := a.signing.EncryptMemo(ctx, username, recipient, memo)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Println(enc)
	return nil
}

// DecryptMemo decrypts an encoded memo addressed to the chosen account.
func (a *App) DecryptMemo(ctx context.Context) error {
	username, err := a.promptMemoAccount(ctx)
	if err != nil {
		return err
	}

	encoded, err := getSimpleText(a.reader, "Enter encrypted memo", os.Stdout)
	if err != nil {
		return err
	}

	dec, err := a.signing.DecryptMemo(ctx, username, encoded)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Println(dec)
	return nil
}

func (a *App) promptMemoAccount(ctx context.Context) (string, error) {
	active, _ := a.accounts.ActiveAccount(ctx)

	prompt := "Enter account username"
	if active != "" {
		prompt = fmt.Sprintf("Enter account username (empty for %s)", active)
	}
	username, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return "", err
	}
	if username == "" {
		username = active
	}
	return username, nil
}
