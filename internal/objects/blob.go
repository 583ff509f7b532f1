package objects

import (
	"fmt"

	"github.com/flomonster/my-git/internal/hash"
)

// Blob is an opaque byte sequence: a file's contents.
type Blob struct {
	Data []byte
}

// NewBlob wraps raw file content.
func NewBlob(data []byte) *Blob {
	return &Blob{Data: data}
}

// Hash returns the SHA-1 of the blob's canonical encoding.
func (b *Blob) Hash() hash.Hash {
	return hash.Sum(encode(KindBlob, b.Data))
}

// decodeBlob parses the payload following the "blob <N>\0" header.
func decodeBlob(payload []byte) (*Blob, error) {
	return &Blob{Data: payload}, nil
}

// SaveBlob persists b and returns its hash.
func (s *Store) SaveBlob(b *Blob) (hash.Hash, error) {
	return s.save(KindBlob, b.Data)
}

// LoadBlob reads and decodes the blob at hash h.
func (s *Store) LoadBlob(h hash.Hash) (*Blob, error) {
	payload, err := s.loadRaw(h, KindBlob)
	if err != nil {
		return nil, fmt.Errorf("objects: load blob %s: %w", h, err)
	}
	return decodeBlob(payload)
}
