package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spknetwork/oratr-vault/internal/common"
	"github.com/spknetwork/oratr-vault/internal/cryptox"
	"github.com/spknetwork/oratr-vault/internal/dbx"
	"github.com/spknetwork/oratr-vault/internal/keys"
	"github.com/spknetwork/oratr-vault/internal/logging"
	"github.com/spknetwork/oratr-vault/internal/vault/models"
	"github.com/spknetwork/oratr-vault/internal/vault/repositories/vaultrec"
)

// AccountService manages the persistent encrypted account table and the
// vault lifecycle (setup, unlock, lock, reset). Every mutating or
// key-revealing operation requires an unlocked session; mutations rebuild
// the table on a snapshot, re-encrypt it wholesale and persist it before
// swapping it into the session.
type AccountService struct {
	session  *SessionManager
	db       *sql.DB
	engine   *cryptox.Engine
	notifier *Notifier
	log      logging.Logger
	prefix   string
}

func NewAccountService(session *SessionManager, db *sql.DB, engine *cryptox.Engine, notifier *Notifier, log logging.Logger, prefix string) *AccountService {
	if prefix == "" {
		prefix = keys.DefaultAddressPrefix
	}
	return &AccountService{
		session:  session,
		db:       db,
		engine:   engine,
		notifier: notifier,
		log:      log,
		prefix:   prefix,
	}
}

func (s *AccountService) getRepo(db dbx.DBTX) vaultrec.Repository {
	return vaultrec.NewSQLiteRepository(db)
}

// SetupPin initializes a fresh vault: it encrypts an empty account table
// under pin, persists it, and unlocks the session.
func (s *AccountService) SetupPin(ctx context.Context, pin string) error {
	table := make(map[string]*models.Account)
	if err := s.persistTable(ctx, table, []byte(pin)); err != nil {
		return err
	}
	s.session.Activate([]byte(pin), table)
	s.log.Info(ctx, "vault initialized")
	return nil
}

// Unlock decrypts the stored envelope with pin and populates the session.
// Every failure mode returns the same generic error so callers cannot tell
// a wrong PIN from a missing vault; a structurally corrupt envelope is
// quarantined first so a new vault can be set up.
func (s *AccountService) Unlock(ctx context.Context, pin string) error {
	raw, err := s.getRepo(s.db).Get(ctx, vaultrec.KeyEncryptedAccounts)
	if err != nil {
		return err
	}
	if raw == nil {
		return common.ErrInvalidPIN
	}

	env, err := cryptox.ParseEnvelope(string(raw))
	if err != nil {
		if qerr := s.quarantine(ctx, raw); qerr != nil {
			return qerr
		}
		return common.ErrStoreCorrupted
	}

	table := make(map[string]*models.Account)
	if err := s.engine.Decrypt(env, []byte(pin), &table); err != nil {
		return common.ErrInvalidPIN
	}

	s.session.Activate([]byte(pin), table)
	s.log.Info(ctx, "vault unlocked", "accounts", len(table))
	return nil
}

// Lock explicitly locks the session.
func (s *AccountService) Lock() {
	s.session.Lock()
}

// Reset destroys the vault: the persisted record is cleared and the
// session is locked. Accounts are unrecoverable afterwards.
func (s *AccountService) Reset(ctx context.Context) error {
	if err := s.getRepo(s.db).Clear(ctx); err != nil {
		return err
	}
	s.session.Lock()
	s.log.Warn(ctx, "vault reset")
	return nil
}

// AddAccount merges the supplied key slots into an existing account or
// creates a new one. Each supplied key is validated by deriving its public
// key; the first failure names the offending slot and aborts the whole
// call. On success the entire table is re-encrypted and persisted.
func (s *AccountService) AddAccount(ctx context.Context, username string, supplied map[models.KeySlot]string) (*models.PublicAccount, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	// Validate and derive before touching the table, so a bad key aborts
	// with nothing changed.
	derived := make(map[models.KeySlot]models.KeyPair, len(supplied))
	for slot, wif := range supplied {
		pub, err := keys.DerivePublicKey(wif, s.prefix)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", slot, err)
		}
		derived[slot] = models.KeyPair{PrivateKey: wif, PublicKey: pub}
	}

	table, err := s.session.Snapshot()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	acc, ok := table[username]
	if !ok {
		acc = models.NewAccount(username, now)
		table[username] = acc
	}
	for slot, pair := range derived {
		acc.Keys[slot] = pair
	}
	acc.UpdatedAt = now

	if err := s.saveTable(ctx, table); err != nil {
		return nil, err
	}
	s.session.Touch()
	s.notifier.Publish(Event{Type: EventAccountAdded, Account: username})
	s.log.Info(ctx, "account saved", "username", username, "slots", len(derived))

	pub := acc.Public()
	return &pub, nil
}

// DeleteKey removes a single key slot. An account left with zero slots
// loses signing capability but is not destroyed.
func (s *AccountService) DeleteKey(ctx context.Context, username string, slot models.KeySlot) error {
	table, err := s.session.Snapshot()
	if err != nil {
		return err
	}
	acc, ok := table[username]
	if !ok {
		return common.ErrAccountNotFound
	}
	if _, ok := acc.Keys[slot]; !ok {
		return common.ErrSlotNotFound
	}
	delete(acc.Keys, slot)
	acc.UpdatedAt = time.Now().UTC()

	if err := s.saveTable(ctx, table); err != nil {
		return err
	}
	s.session.Touch()
	s.notifier.Publish(Event{Type: EventKeyDeleted, Account: username})
	return nil
}

// RemoveAccount deletes the whole account and persists the table. A stale
// active-account pointer is cleared in the same transaction.
func (s *AccountService) RemoveAccount(ctx context.Context, username string) error {
	table, err := s.session.Snapshot()
	if err != nil {
		return err
	}
	if _, ok := table[username]; !ok {
		return common.ErrAccountNotFound
	}
	delete(table, username)

	pin, err := s.session.PIN()
	if err != nil {
		return err
	}
	env, err := s.encryptTable(table, pin)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.getRepo(tx)
		if err := repo.Set(ctx, vaultrec.KeyEncryptedAccounts, []byte(env)); err != nil {
			return err
		}
		active, err := repo.Get(ctx, vaultrec.KeyActiveAccount)
		if err != nil {
			return err
		}
		if string(active) == username {
			return repo.Delete(ctx, vaultrec.KeyActiveAccount)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.session.Replace(table); err != nil {
		return err
	}
	s.session.Touch()
	s.notifier.Publish(Event{Type: EventAccountRemoved, Account: username})
	s.log.Info(ctx, "account removed", "username", username)
	return nil
}

// ListAccounts returns public views of every account, sorted by username.
func (s *AccountService) ListAccounts(ctx context.Context) ([]models.PublicAccount, error) {
	table, err := s.session.Snapshot()
	if err != nil {
		return nil, err
	}
	s.session.Touch()

	out := make([]models.PublicAccount, 0, len(table))
	for _, acc := range table {
		out = append(out, acc.Public())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// GetAccount returns the public view of one account.
func (s *AccountService) GetAccount(ctx context.Context, username string) (*models.PublicAccount, error) {
	acc, err := s.session.Account(username)
	if err != nil {
		return nil, err
	}
	s.session.Touch()
	pub := acc.Public()
	return &pub, nil
}

// ResolveKey returns the private key (WIF) satisfying the requested
// authority, walking the same slot chain the signing path uses.
func (s *AccountService) ResolveKey(ctx context.Context, username string, authority models.Authority) (string, error) {
	acc, err := s.session.Account(username)
	if err != nil {
		return "", err
	}
	pair, _, err := acc.Resolve(authority)
	if err != nil {
		return "", err
	}
	s.session.Touch()
	return pair.PrivateKey, nil
}

// ActiveAccount returns the active-account pointer, revalidated against
// the current table: a pointer naming a missing account is cleared and an
// empty string returned.
func (s *AccountService) ActiveAccount(ctx context.Context) (string, error) {
	table, err := s.session.Snapshot()
	if err != nil {
		return "", err
	}
	raw, err := s.getRepo(s.db).Get(ctx, vaultrec.KeyActiveAccount)
	if err != nil {
		return "", err
	}
	username := string(raw)
	if username == "" {
		return "", nil
	}
	if _, ok := table[username]; !ok {
		if err := s.getRepo(s.db).Delete(ctx, vaultrec.KeyActiveAccount); err != nil {
			return "", err
		}
		return "", nil
	}
	return username, nil
}

// SetActiveAccount points the active-account record at an existing
// account. The pointer lives outside the envelope and carries no secret.
func (s *AccountService) SetActiveAccount(ctx context.Context, username string) error {
	if _, err := s.session.Account(username); err != nil {
		return err
	}
	if err := s.getRepo(s.db).Set(ctx, vaultrec.KeyActiveAccount, []byte(username)); err != nil {
		return err
	}
	s.session.Touch()
	return nil
}

// saveTable re-encrypts the table under the session PIN, persists it, and
// swaps it into the session.
func (s *AccountService) saveTable(ctx context.Context, table map[string]*models.Account) error {
	pin, err := s.session.PIN()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	if err := s.persistTable(ctx, table, pin); err != nil {
		return err
	}
	return s.session.Replace(table)
}

func (s *AccountService) persistTable(ctx context.Context, table map[string]*models.Account, pin []byte) error {
	env, err := s.encryptTable(table, pin)
	if err != nil {
		return err
	}
	return s.getRepo(s.db).Set(ctx, vaultrec.KeyEncryptedAccounts, []byte(env))
}

func (s *AccountService) encryptTable(table map[string]*models.Account, pin []byte) (string, error) {
	env, err := s.engine.Encrypt(table, pin)
	if err != nil {
		return "", err
	}
	return env.Encode()
}

// quarantine moves an unparseable envelope aside under a fresh identifier
// so startup never wedges on a corrupt record.
func (s *AccountService) quarantine(ctx context.Context, raw []byte) error {
	key := vaultrec.KeyEncryptedAccounts + "-corrupt-" + uuid.NewString()
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.getRepo(tx)
		if err := repo.Set(ctx, key, raw); err != nil {
			return err
		}
		return repo.Delete(ctx, vaultrec.KeyEncryptedAccounts)
	})
}
