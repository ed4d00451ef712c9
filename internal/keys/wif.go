// Package keys implements the asymmetric-key primitives the vault relies
// on: WIF private-key parsing, public-key derivation, and recoverable
// secp256k1 signatures.
//
// A WIF string is base58(0x80 || 32-byte key || checksum) where the
// checksum is the first four bytes of sha256(sha256(payload)). Public keys
// are rendered as <prefix> + base58(compressed-pubkey || ripemd160 checksum),
// the convention used by the network's account authorities.
package keys

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/ripemd160"

	"github.com/spknetwork/oratr-vault/internal/common"
)

const (
	// DefaultAddressPrefix is prepended to rendered public keys.
	DefaultAddressPrefix = "STM"

	wifVersion = 0x80
	wifLen     = 1 + 32 + 4
)

// DecodeWIF parses a WIF private-key string. Failures wrap
// common.ErrInvalidKey so callers can classify them uniformly.
func DecodeWIF(wif string) (*btcec.PrivateKey, error) {
	decoded := base58.Decode(wif)
	if len(decoded) != wifLen {
		return nil, fmt.Errorf("%w: bad length", common.ErrInvalidKey)
	}
	if decoded[0] != wifVersion {
		return nil, fmt.Errorf("%w: bad version byte", common.ErrInvalidKey)
	}

	payload := decoded[:len(decoded)-4]
	checksum := decoded[len(decoded)-4:]
	if !bytes.Equal(doubleSHA256(payload)[:4], checksum) {
		return nil, fmt.Errorf("%w: bad checksum", common.ErrInvalidKey)
	}

	priv, _ := btcec.PrivKeyFromBytes(payload[1:])
	return priv, nil
}

// EncodeWIF renders a private key in WIF form.
func EncodeWIF(priv *btcec.PrivateKey) string {
	payload := make([]byte, 0, wifLen)
	payload = append(payload, wifVersion)
	payload = append(payload, priv.Serialize()...)
	payload = append(payload, doubleSHA256(payload)[:4]...)
	return base58.Encode(payload)
}

// PublicKeyString renders pub with the given address prefix.
func PublicKeyString(pub *btcec.PublicKey, prefix string) string {
	compressed := pub.SerializeCompressed()

	h := ripemd160.New()
	h.Write(compressed)
	checksum := h.Sum(nil)[:4]

	return prefix + base58.Encode(append(compressed, checksum...))
}

// ParsePublicKey parses a rendered public-key string back into a key.
// Failures wrap common.ErrInvalidKey.
func ParsePublicKey(s, prefix string) (*btcec.PublicKey, error) {
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return nil, fmt.Errorf("%w: missing %s prefix", common.ErrInvalidKey, prefix)
	}

	decoded := base58.Decode(s[len(prefix):])
	if len(decoded) != btcec.PubKeyBytesLenCompressed+4 {
		return nil, fmt.Errorf("%w: bad length", common.ErrInvalidKey)
	}
	compressed := decoded[:btcec.PubKeyBytesLenCompressed]
	checksum := decoded[btcec.PubKeyBytesLenCompressed:]

	h := ripemd160.New()
	h.Write(compressed)
	if !bytes.Equal(h.Sum(nil)[:4], checksum) {
		return nil, fmt.Errorf("%w: bad checksum", common.ErrInvalidKey)
	}

	pub, err := btcec.ParsePubKey(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidKey, err)
	}
	return pub, nil
}

// DerivePublicKey parses a WIF string and returns the rendered public key.
// This is also how supplied keys get validated on add/import: if the WIF
// cannot produce a public key it is not usable for anything.
func DerivePublicKey(wif, prefix string) (string, error) {
	priv, err := DecodeWIF(wif)
	if err != nil {
		return "", err
	}
	return PublicKeyString(priv.PubKey(), prefix), nil
}

// GenerateWIF creates a fresh random private key in WIF form.
// Used for tests and for local account provisioning.
func GenerateWIF() (string, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return "", err
	}
	return EncodeWIF(priv), nil
}

func doubleSHA256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}
