// Package cryptox implements the encrypted envelope format used for the
// persisted vault and for export bundles.
//
// An envelope carries everything needed to decrypt it again later:
// version, salt, IV/nonce, PBKDF2 iteration count, and the ciphertext.
// The iteration count is stored per envelope so historical envelopes keep
// working if the default ever changes.
//
// Two versions exist:
//
//	v1 — AES-256-CBC with PKCS#7 padding (legacy format; wrong-passphrase
//	     detection relies on unpad/deserialization failure, which is not
//	     perfectly reliable);
//	v2 — AES-256-GCM (default for new envelopes; integrity failure is
//	     explicit).
//
// Both versions derive the 256-bit key via PBKDF2-HMAC-SHA256 over
// (passphrase, salt).
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/spknetwork/oratr-vault/internal/common"
)

const (
	// EnvelopeVersionCBC is the legacy AES-256-CBC envelope format.
	EnvelopeVersionCBC = 1
	// EnvelopeVersionGCM is the authenticated AES-256-GCM envelope format.
	EnvelopeVersionGCM = 2

	// DefaultIterations is the PBKDF2 iteration count for new envelopes.
	DefaultIterations = 100_000

	keyLen      = 32
	saltLen     = 16
	cbcIVLen    = aes.BlockSize
	gcmNonceLen = 12
)

var (
	// ErrDecryptionFailed is returned when the passphrase is wrong or the
	// ciphertext has been tampered with.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrMalformedEnvelope is returned when the envelope structure itself
	// cannot be parsed (bad hex, impossible lengths, unknown version).
	ErrMalformedEnvelope = errors.New("malformed envelope")
)

// Envelope is the versioned on-disk encryption container.
// It never contains plaintext and is always replaced wholesale.
type Envelope struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`
	IV         string `json:"iv"`
	Iterations int    `json:"iterations"`
	Ciphertext string `json:"ciphertext"`
}

// Encode serializes the envelope to its canonical JSON text form.
func (e *Envelope) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseEnvelope parses the JSON text form produced by Encode.
func ParseEnvelope(s string) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if e.Version != EnvelopeVersionCBC && e.Version != EnvelopeVersionGCM {
		return nil, fmt.Errorf("%w: unknown version %d", ErrMalformedEnvelope, e.Version)
	}
	return &e, nil
}

// Engine encrypts and decrypts arbitrary JSON-serializable payloads under a
// passphrase-derived key. The zero value is not usable; use NewEngine or
// DefaultEngine.
type Engine struct {
	version    int
	iterations int
}

// NewEngine returns an engine producing envelopes of the given version with
// the given PBKDF2 iteration count. Decrypt always accepts both versions.
func NewEngine(version, iterations int) (*Engine, error) {
	if version != EnvelopeVersionCBC && version != EnvelopeVersionGCM {
		return nil, fmt.Errorf("unsupported envelope version %d", version)
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	return &Engine{version: version, iterations: iterations}, nil
}

// DefaultEngine returns an engine producing v2 (GCM) envelopes with the
// default iteration count.
func DefaultEngine() *Engine {
	return &Engine{version: EnvelopeVersionGCM, iterations: DefaultIterations}
}

// Encrypt serializes payload to JSON and encrypts it under the passphrase.
// A fresh random salt and IV are generated per call.
func (e *Engine) Encrypt(payload any, passphrase []byte) (*Envelope, error) {
	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	salt := common.GenerateRandByteArray(saltLen)
	key := deriveKey(passphrase, salt, e.iterations)
	defer common.WipeByteArray(key)

	var iv, ciphertext []byte
	switch e.version {
	case EnvelopeVersionCBC:
		iv = common.GenerateRandByteArray(cbcIVLen)
		ciphertext, err = encryptCBC(plaintext, key, iv)
	case EnvelopeVersionGCM:
		iv = common.GenerateRandByteArray(gcmNonceLen)
		ciphertext, err = encryptGCM(plaintext, key, iv)
	}
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Version:    e.version,
		Salt:       hex.EncodeToString(salt),
		IV:         hex.EncodeToString(iv),
		Iterations: e.iterations,
		Ciphertext: hex.EncodeToString(ciphertext),
	}, nil
}

// Decrypt decrypts env under the passphrase and unmarshals the plaintext
// into v. The envelope's own version and iteration count are honored, so
// envelopes written under older defaults remain readable.
func (e *Engine) Decrypt(env *Envelope, passphrase []byte, v any) error {
	salt, err := hex.DecodeString(env.Salt)
	if err != nil {
		return fmt.Errorf("%w: bad salt", ErrMalformedEnvelope)
	}
	iv, err := hex.DecodeString(env.IV)
	if err != nil {
		return fmt.Errorf("%w: bad iv", ErrMalformedEnvelope)
	}
	ciphertext, err := hex.DecodeString(env.Ciphertext)
	if err != nil {
		return fmt.Errorf("%w: bad ciphertext", ErrMalformedEnvelope)
	}
	if env.Iterations <= 0 {
		return fmt.Errorf("%w: bad iteration count", ErrMalformedEnvelope)
	}

	key := deriveKey(passphrase, salt, env.Iterations)
	defer common.WipeByteArray(key)

	var plaintext []byte
	switch env.Version {
	case EnvelopeVersionCBC:
		plaintext, err = decryptCBC(ciphertext, key, iv)
	case EnvelopeVersionGCM:
		plaintext, err = decryptGCM(ciphertext, key, iv)
	default:
		return fmt.Errorf("%w: unknown version %d", ErrMalformedEnvelope, env.Version)
	}
	if err != nil {
		return err
	}

	// For CBC a wrong passphrase usually (but not always) surfaces here
	// as a JSON parse failure.
	if err := json.Unmarshal(plaintext, v); err != nil {
		return ErrDecryptionFailed
	}
	return nil
}

func deriveKey(passphrase, salt []byte, iterations int) []byte {
	return pbkdf2.Key(passphrase, salt, iterations, keyLen, sha256.New)
}

func encryptCBC(plaintext, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func decryptCBC(ciphertext, key, iv []byte) ([]byte, error) {
	if len(iv) != cbcIVLen {
		return nil, fmt.Errorf("%w: bad iv length", ErrMalformedEnvelope)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: bad ciphertext length", ErrMalformedEnvelope)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)

	unpadded, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return unpadded, nil
}

func encryptGCM(plaintext, key, nonce []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

func decryptGCM(ciphertext, key, nonce []byte) ([]byte, error) {
	if len(nonce) != gcmNonceLen {
		return nil, fmt.Errorf("%w: bad nonce length", ErrMalformedEnvelope)
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, errors.New("invalid padding")
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return b[:len(b)-n], nil
}
