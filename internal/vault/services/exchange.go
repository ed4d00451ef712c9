package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spknetwork/oratr-vault/internal/common"
	"github.com/spknetwork/oratr-vault/internal/cryptox"
	"github.com/spknetwork/oratr-vault/internal/keys"
	"github.com/spknetwork/oratr-vault/internal/logging"
	"github.com/spknetwork/oratr-vault/internal/vault/models"
)

// ExchangeService moves accounts between installations: export re-encrypts
// account records under an independent passphrase with a fresh salt;
// import decrypts a bundle and merges its accounts into the live table.
type ExchangeService struct {
	session  *SessionManager
	accounts *AccountService
	engine   *cryptox.Engine
	notifier *Notifier
	log      logging.Logger
	prefix   string
}

func NewExchangeService(session *SessionManager, accounts *AccountService, engine *cryptox.Engine, notifier *Notifier, log logging.Logger, prefix string) *ExchangeService {
	if prefix == "" {
		prefix = keys.DefaultAddressPrefix
	}
	return &ExchangeService{
		session:  session,
		accounts: accounts,
		engine:   engine,
		notifier: notifier,
		log:      log,
		prefix:   prefix,
	}
}

// ExportAccount exports a single account re-encrypted under
// exportPassphrase.
func (s *ExchangeService) ExportAccount(ctx context.Context, username, exportPassphrase string) (*models.ExportBundle, error) {
	return s.ExportAccounts(ctx, []string{username}, exportPassphrase)
}

// ExportAccounts exports one or more accounts as a typed bundle. The
// export passphrase is independent from the vault PIN and the envelope
// gets a fresh salt, so a bundle reveals nothing about the vault it came
// from.
func (s *ExchangeService) ExportAccounts(ctx context.Context, usernames []string, exportPassphrase string) (*models.ExportBundle, error) {
	table, err := s.session.Snapshot()
	if err != nil {
		return nil, err
	}

	payload := make(map[string]*models.Account, len(usernames))
	for _, username := range usernames {
		acc, ok := table[username]
		if !ok {
			return nil, fmt.Errorf("%s: %w", username, common.ErrAccountNotFound)
		}
		payload[username] = acc
	}

	env, err := s.engine.Encrypt(payload, []byte(exportPassphrase))
	if err != nil {
		return nil, err
	}
	text, err := env.Encode()
	if err != nil {
		return nil, err
	}

	s.session.Touch()
	s.log.Info(ctx, "accounts exported", "count", len(payload))
	return &models.ExportBundle{
		Type:      models.ExportBundleType,
		Version:   models.ExportBundleVersion,
		Encrypted: text,
	}, nil
}

// ImportBundle validates and decrypts a bundle, merges each account into
// the live table (incoming slots win on conflict), stamps the import
// timestamp, persists, and returns the imported usernames sorted. A bad
// marker and a wrong passphrase are indistinguishable to the caller.
func (s *ExchangeService) ImportBundle(ctx context.Context, bundle *models.ExportBundle, passphrase string) ([]string, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}

	env, err := cryptox.ParseEnvelope(bundle.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: bad envelope", common.ErrInvalidImport)
	}

	incoming := make(map[string]*models.Account)
	if err := s.engine.Decrypt(env, []byte(passphrase), &incoming); err != nil {
		return nil, common.ErrInvalidImport
	}

	table, err := s.session.Snapshot()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	imported := make([]string, 0, len(incoming))
	for username, in := range incoming {
		if username == "" || in == nil {
			return nil, common.ErrInvalidImport
		}
		// Re-derive public keys rather than trusting the bundle's copy:
		// the table invariant is that every stored public key matches its
		// private key.
		merged := make(map[models.KeySlot]models.KeyPair, len(in.Keys))
		for slot, pair := range in.Keys {
			pub, err := keys.DerivePublicKey(pair.PrivateKey, s.prefix)
			if err != nil {
				return nil, fmt.Errorf("%w: account %s slot %s", common.ErrInvalidImport, username, slot)
			}
			merged[slot] = models.KeyPair{PrivateKey: pair.PrivateKey, PublicKey: pub}
		}

		acc, ok := table[username]
		if !ok {
			acc = models.NewAccount(username, now)
			table[username] = acc
		}
		for slot, pair := range merged {
			acc.Keys[slot] = pair
		}
		acc.UpdatedAt = now
		ts := now
		acc.ImportedAt = &ts

		imported = append(imported, username)
	}

	if err := s.accounts.saveTable(ctx, table); err != nil {
		return nil, err
	}

	sort.Strings(imported)
	s.session.Touch()
	s.notifier.Publish(Event{Type: EventAccountsImported})
	s.log.Info(ctx, "accounts imported", "count", len(imported))
	return imported, nil
}
