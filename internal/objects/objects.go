// Package objects implements the content-addressed object model:
// blobs, trees and commits, their canonical Git-compatible encoding,
// and the compressed on-disk object store that persists them.
package objects

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/flomonster/my-git/internal/hash"
)

// Kind identifies the three object types the store knows how to
// encode and decode.
type Kind string

const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
)

// Sentinel errors the rest of the core matches with errors.Is/As.
var (
	ErrCorruptObject  = errors.New("corrupt object")
	ErrObjectNotFound = errors.New("object not found")
)

// encode builds the canonical "<kind> <len>\0<payload>" byte sequence
// that is hashed and then compressed to disk.
func encode(kind Kind, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", kind, len(payload))
	buf := make([]byte, 0, len(header)+len(payload))
	buf = append(buf, header...)
	buf = append(buf, payload...)
	return buf
}

// Store is the compressed, content-addressed object store rooted at
// a repository's "objects" directory.
type Store struct {
	dir string
	log *logrus.Logger
}

// NewStore opens the object store at <gitDir>/objects. The directory
// is not required to exist yet; it is created on first save.
func NewStore(gitDir string, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{dir: filepath.Join(gitDir, "objects"), log: log}
}

func (s *Store) pathFor(h hash.Hash) string {
	hex := h.String()
	return filepath.Join(s.dir, hex[:2], hex[2:])
}

// Exists reports whether an object with the given hash is present.
func (s *Store) Exists(h hash.Hash) bool {
	_, err := os.Stat(s.pathFor(h))
	return err == nil
}

// save writes the canonical encoding of kind/payload to disk under
// its SHA-1 hash, compressed with zlib at the default level. It is a
// no-op if the object already exists.
func (s *Store) save(kind Kind, payload []byte) (hash.Hash, error) {
	raw := encode(kind, payload)
	h := hash.Sum(raw)
	path := s.pathFor(h)

	if _, err := os.Stat(path); err == nil {
		s.log.WithField("hash", h.String()).Debug("object already present, skipping save")
		return h, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return h, fmt.Errorf("objects: create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp-obj-")
	if err != nil {
		return h, fmt.Errorf("objects: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	zw := zlib.NewWriter(tmp)
	if _, err := zw.Write(raw); err != nil {
		tmp.Close()
		return h, fmt.Errorf("objects: write compressed object: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return h, fmt.Errorf("objects: close zlib writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return h, fmt.Errorf("objects: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return h, fmt.Errorf("objects: rename into place: %w", err)
	}

	s.log.WithFields(logrus.Fields{"kind": kind, "hash": h.String()}).Debug("saved object")
	return h, nil
}

// loadRaw decompresses and splits the header from the payload for the
// object at the given hash, verifying the kind matches wantKind.
func (s *Store) loadRaw(h hash.Hash, wantKind Kind) ([]byte, error) {
	kind, payload, err := s.Peek(h)
	if err != nil {
		return nil, err
	}
	if kind != wantKind {
		return nil, fmt.Errorf("%w: expected kind %s, got %s", ErrCorruptObject, wantKind, kind)
	}
	return payload, nil
}

// Peek decompresses the object at h and returns its kind and payload
// without assuming which one it is, for plumbing commands like cat-file
// that must inspect an arbitrary hash.
func (s *Store) Peek(h hash.Hash) (Kind, []byte, error) {
	path := s.pathFor(h)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: %s", ErrObjectNotFound, h)
		}
		return "", nil, fmt.Errorf("objects: open %s: %w", h, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return "", nil, fmt.Errorf("%w: zlib: %v", ErrCorruptObject, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, fmt.Errorf("%w: decompress: %v", ErrCorruptObject, err)
	}

	nul := bytes.IndexByte(raw, 0)
	if nul < 0 {
		return "", nil, fmt.Errorf("%w: missing header terminator", ErrCorruptObject)
	}
	header := string(raw[:nul])
	var kind string
	var size int
	if _, err := fmt.Sscanf(header, "%s %d", &kind, &size); err != nil {
		return "", nil, fmt.Errorf("%w: bad header %q: %v", ErrCorruptObject, header, err)
	}
	payload := raw[nul+1:]
	if len(payload) != size {
		return "", nil, fmt.Errorf("%w: length mismatch, header says %d, got %d", ErrCorruptObject, size, len(payload))
	}
	s.log.WithFields(logrus.Fields{"kind": kind, "hash": h.String()}).Debug("loaded object")
	return Kind(kind), payload, nil
}
