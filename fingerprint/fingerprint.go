// Package fingerprint computes the content fingerprint recorded when an
// external ciphertext batch is accepted by the ledger.
package fingerprint

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Size is the fingerprint length in bytes.
const Size = blake2b.Size256

// ErrInvalidFingerprint indicates a fingerprint string is not 32 hex-encoded bytes.
var ErrInvalidFingerprint = errors.New("fingerprint: invalid fingerprint")

// Fingerprint is BLAKE2b-256 over an opaque ciphertext.
type Fingerprint [Size]byte

// Of fingerprints a single ciphertext.
func Of(ciphertext []byte) Fingerprint {
	return Fingerprint(blake2b.Sum256(ciphertext))
}

// OfBatch fingerprints each ciphertext in order.
func OfBatch(ciphertexts [][]byte) []Fingerprint {
	out := make([]Fingerprint, len(ciphertexts))
	for i, c := range ciphertexts {
		out[i] = Of(c)
	}
	return out
}

// Parse decodes a hex fingerprint.
func Parse(s string) (Fingerprint, error) {
	var fp Fingerprint
	b, err := hex.DecodeString(s)
	if err != nil {
		return fp, fmt.Errorf("%w: %w", ErrInvalidFingerprint, err)
	}
	if len(b) != Size {
		return fp, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidFingerprint, Size, len(b))
	}
	copy(fp[:], b)
	return fp, nil
}

// String returns the hex encoding.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}
