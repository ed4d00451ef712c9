package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spknetwork/oratr-vault/internal/keys"
	"github.com/spknetwork/oratr-vault/internal/logging"
	"github.com/spknetwork/oratr-vault/internal/vault/models"
)

// TransactionSigner is the platform primitive that turns an unsigned
// transaction plus a private key into a signed transaction.
type TransactionSigner interface {
	Sign(ctx context.Context, tx json.RawMessage, wif string) (*keys.SignedTransaction, error)
}

// Broadcaster accepts a signed transaction and returns its transaction id.
// The transport (RPC endpoint, retries, fees) is owned by the caller.
type Broadcaster interface {
	Broadcast(ctx context.Context, tx *keys.SignedTransaction) (string, error)
}

// SigningService exposes the vault's controlled signing paths: transaction
// signing, recoverable message signing, and memo cryption. It never hands
// a private key to callers; keys flow only into the injected primitives.
type SigningService struct {
	session     *SessionManager
	signer      TransactionSigner
	broadcaster Broadcaster
	memo        keys.MemoCryptor
	approvals   *ApprovalGateway // nil when no UI-approval channel is registered
	notifier    *Notifier
	log         logging.Logger
}

func NewSigningService(
	session *SessionManager,
	signer TransactionSigner,
	broadcaster Broadcaster,
	memo keys.MemoCryptor,
	approvals *ApprovalGateway,
	notifier *Notifier,
	log logging.Logger,
) *SigningService {
	return &SigningService{
		session:     session,
		signer:      signer,
		broadcaster: broadcaster,
		memo:        memo,
		approvals:   approvals,
		notifier:    notifier,
		log:         log,
	}
}

// resolve returns the key pair satisfying the requested authority for
// username, using the same slot chain as raw key retrieval.
func (s *SigningService) resolve(username string, authority models.Authority) (models.KeyPair, error) {
	acc, err := s.session.Account(username)
	if err != nil {
		return models.KeyPair{}, err
	}
	pair, _, err := acc.Resolve(authority)
	if err != nil {
		return models.KeyPair{}, err
	}
	return pair, nil
}

// SignTransaction signs tx with the key resolved for the requested
// authority and returns the signed, not yet broadcast, transaction.
func (s *SigningService) SignTransaction(ctx context.Context, username string, tx json.RawMessage, authority models.Authority) (*keys.SignedTransaction, error) {
	pair, err := s.resolve(username, authority)
	if err != nil {
		return nil, err
	}

	signed, err := s.signer.Sign(ctx, tx, pair.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	s.session.Touch()
	s.notifier.Publish(Event{Type: EventSignedTransaction, Account: username})
	s.log.Info(ctx, "transaction signed", "username", username, "authority", string(authority))
	return signed, nil
}

// SignAndBroadcast signs tx and hands it to the broadcast sink, returning
// the transaction id. When a UI-approval channel is registered the call
// first awaits an approve/reject decision; rejection and timeout both fail
// the call before any key is touched.
func (s *SigningService) SignAndBroadcast(ctx context.Context, username string, tx json.RawMessage, authority models.Authority) (string, error) {
	if s.approvals != nil {
		if err := s.approvals.Request(ctx, username, authority); err != nil {
			return "", err
		}
	}

	signed, err := s.SignTransaction(ctx, username, tx, authority)
	if err != nil {
		return "", err
	}

	txID, err := s.broadcaster.Broadcast(ctx, signed)
	if err != nil {
		return "", fmt.Errorf("broadcast: %w", err)
	}
	return txID, nil
}

// SignMessage produces "<message>:<recoverable-signature-hex>". The
// signature is a recoverable ECDSA signature over sha256 of the UTF-8
// message bytes; consumers split on the last colon.
func (s *SigningService) SignMessage(ctx context.Context, username, message string, authority models.Authority) (string, error) {
	pair, err := s.resolve(username, authority)
	if err != nil {
		return "", err
	}
	priv, err := keys.DecodeWIF(pair.PrivateKey)
	if err != nil {
		return "", err
	}

	s.session.Touch()
	return message + ":" + keys.SignMessageHex(priv, message), nil
}

// EncryptMemo encrypts memo from username's memo key to recipientPub via
// the platform memo primitive.
func (s *SigningService) EncryptMemo(ctx context.Context, username, recipientPub, memo string) (string, error) {
	pair, err := s.resolve(username, models.AuthorityMemo)
	if err != nil {
		return "", err
	}
	out, err := s.memo.Encrypt(pair.PrivateKey, recipientPub, memo)
	if err != nil {
		return "", fmt.Errorf("encrypt memo: %w", err)
	}
	s.session.Touch()
	return out, nil
}

// DecryptMemo decrypts an encoded memo addressed to username's memo key.
func (s *SigningService) DecryptMemo(ctx context.Context, username, encoded string) (string, error) {
	pair, err := s.resolve(username, models.AuthorityMemo)
	if err != nil {
		return "", err
	}
	out, err := s.memo.Decrypt(pair.PrivateKey, encoded)
	if err != nil {
		return "", fmt.Errorf("decrypt memo: %w", err)
	}
	s.session.Touch()
	return out, nil
}
