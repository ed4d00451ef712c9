package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
)

// MemoCryptor is the platform primitive for memo encryption. The vault
// resolves the memo key and delegates; the scheme itself (shared-secret
// derivation, encoding) is owned by the platform layer and treated as
// opaque here.
type MemoCryptor interface {
	// Encrypt encrypts memo from the holder of privWIF to the holder of
	// recipientPub.
	Encrypt(privWIF, recipientPub, memo string) (string, error)

	// Decrypt decrypts an encoded memo addressed to the holder of privWIF.
	Decrypt(privWIF, encoded string) (string, error)
}

// memoPrefix marks an encrypted memo in its text form.
const memoPrefix = "#"

// LocalMemoCryptor encrypts memos in-process with an ECDH shared secret.
// The wire form is "#" followed by base58 of
// (sender compressed public key || nonce || AES-256-GCM ciphertext), so the
// recipient recovers the sender's key from the memo itself. It is the
// default platform memo primitive when no external one is injected.
type LocalMemoCryptor struct {
	prefix string
}

func NewLocalMemoCryptor(prefix string) *LocalMemoCryptor {
	if prefix == "" {
		prefix = DefaultAddressPrefix
	}
	return &LocalMemoCryptor{prefix: prefix}
}

func (c *LocalMemoCryptor) Encrypt(privWIF, recipientPub, memo string) (string, error) {
	priv, err := DecodeWIF(privWIF)
	if err != nil {
		return "", fmt.Errorf("encrypt memo: %w", err)
	}
	pub, err := ParsePublicKey(recipientPub, c.prefix)
	if err != nil {
		return "", fmt.Errorf("encrypt memo: %w", err)
	}

	gcm, err := sharedCipher(priv, pub)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, nonce, []byte(memo), nil)

	payload := priv.PubKey().SerializeCompressed()
	payload = append(payload, nonce...)
	payload = append(payload, sealed...)
	return memoPrefix + base58.Encode(payload), nil
}

func (c *LocalMemoCryptor) Decrypt(privWIF, encoded string) (string, error) {
	priv, err := DecodeWIF(privWIF)
	if err != nil {
		return "", fmt.Errorf("decrypt memo: %w", err)
	}

	raw := base58.Decode(strings.TrimPrefix(encoded, memoPrefix))
	if len(raw) < btcec.PubKeyBytesLenCompressed {
		return "", fmt.Errorf("decrypt memo: malformed payload")
	}
	senderPub, err := btcec.ParsePubKey(raw[:btcec.PubKeyBytesLenCompressed])
	if err != nil {
		return "", fmt.Errorf("decrypt memo: %w", err)
	}
	rest := raw[btcec.PubKeyBytesLenCompressed:]

	gcm, err := sharedCipher(priv, senderPub)
	if err != nil {
		return "", err
	}
	if len(rest) < gcm.NonceSize() {
		return "", fmt.Errorf("decrypt memo: malformed payload")
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt memo: %w", err)
	}
	return string(plain), nil
}

// sharedCipher builds an AES-256-GCM cipher keyed from the ECDH shared
// secret of the two parties. ECDH is symmetric, so the sender's private key
// with the recipient's public key and vice versa yield the same cipher.
func sharedCipher(priv *btcec.PrivateKey, pub *btcec.PublicKey) (cipher.AEAD, error) {
	secret := btcec.GenerateSharedSecret(priv, pub)
	key := sha256.Sum256(secret)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
