package keys

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// SignDigestRecoverable produces a 65-byte compact recoverable signature
// over a 32-byte digest. The leading byte is
// (recovery id + compression flag + 27); the verifying service recovers the
// signer's public key from the signature alone, so this byte layout is a
// wire-compatibility requirement.
func SignDigestRecoverable(priv *btcec.PrivateKey, digest []byte) []byte {
	return ecdsa.SignCompact(priv, digest, true)
}

// RecoverDigestPublicKey recovers the signing public key from a compact
// recoverable signature.
func RecoverDigestPublicKey(sig, digest []byte) (*btcec.PublicKey, error) {
	pub, _, err := ecdsa.RecoverCompact(sig, digest)
	return pub, err
}

// SignMessageHex hashes the UTF-8 bytes of message with SHA-256 and returns
// the hex-encoded recoverable signature.
func SignMessageHex(priv *btcec.PrivateKey, message string) string {
	digest := sha256.Sum256([]byte(message))
	return hex.EncodeToString(SignDigestRecoverable(priv, digest[:]))
}

// SignedTransaction is a transaction plus the signatures collected for it.
// The transaction body stays opaque to the vault: it is built and broadcast
// by external collaborators.
type SignedTransaction struct {
	Tx         json.RawMessage `json:"tx"`
	Signatures []string        `json:"signatures"`
}

// LocalSigner signs transactions in-process: it appends a recoverable
// signature over sha256 of the serialized transaction. It is the default
// platform signing primitive when no external one is injected.
type LocalSigner struct{}

func NewLocalSigner() *LocalSigner {
	return &LocalSigner{}
}

func (s *LocalSigner) Sign(_ context.Context, tx json.RawMessage, wif string) (*SignedTransaction, error) {
	priv, err := DecodeWIF(wif)
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}

	digest := sha256.Sum256(tx)
	sig := SignDigestRecoverable(priv, digest[:])

	return &SignedTransaction{
		Tx:         tx,
		Signatures: []string{hex.EncodeToString(sig)},
	}, nil
}
