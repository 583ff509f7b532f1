// Package hash implements the 20-byte SHA-1 object identifier used
// throughout the repository's object, index and reference formats.
package hash

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Size is the length in bytes of a Hash.
const Size = sha1.Size

// Zero is the all-zero hash, never a valid object id but used as a
// sentinel for "no parent" / "no previous value" in a few call sites.
var Zero = Hash{}

// Hash is a 20-byte SHA-1 digest.
type Hash [Size]byte

// Sum computes the SHA-1 digest of data.
func Sum(data []byte) Hash {
	return Hash(sha1.Sum(data))
}

// FromHex decodes a 40-character lowercase hex string into a Hash.
func FromHex(s string) (Hash, error) {
	var h Hash
	if len(s) != Size*2 {
		return h, fmt.Errorf("hash: invalid hex length %d, want %d", len(s), Size*2)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("hash: invalid hex %q: %w", s, err)
	}
	copy(h[:], b)
	return h, nil
}

// FromBytes copies a 20-byte slice into a Hash.
func FromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != Size {
		return h, fmt.Errorf("hash: invalid byte length %d, want %d", len(b), Size)
	}
	copy(h[:], b)
	return h, nil
}

// String renders the hash as 40 lowercase hex characters.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// Bytes returns the raw 20 bytes of h.
func (h Hash) Bytes() []byte {
	return h[:]
}

// Compare imposes the total order of the byte representation of two
// hashes: -1 if h < other, 0 if equal, 1 if h > other.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// Less reports whether h sorts strictly before other.
func (h Hash) Less(other Hash) bool {
	return h.Compare(other) < 0
}
