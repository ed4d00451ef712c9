package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandByteArray returns n cryptographically random bytes.
// It panics if the system entropy source fails, which is not recoverable.
func GenerateRandByteArray(n int) []byte {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return buf
}

// MakeRandHexString returns a random hex string encoding n random bytes
// (so the result is 2*n characters long).
func MakeRandHexString(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// WipeByteArray overwrites buf with zeros. Safe to call with nil.
// Used to scrub PINs and key material before releasing buffers.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
