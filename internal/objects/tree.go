package objects

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/mode"
)

// EntryKind tags the variant a TreeEntry holds.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryExecutable
	EntrySymlink
	EntryDirectory
)

func entryKindFromMode(m mode.Mode) EntryKind {
	switch m {
	case mode.Executable:
		return EntryExecutable
	case mode.Symlink:
		return EntrySymlink
	default:
		return EntryFile
	}
}

// Mode returns the leaf Mode corresponding to a non-directory entry.
// Calling it on a directory entry panics; callers must check Kind.
func (k EntryKind) Mode() mode.Mode {
	switch k {
	case EntryExecutable:
		return mode.Executable
	case EntrySymlink:
		return mode.Symlink
	case EntryFile:
		return mode.Regular
	default:
		panic("objects: Mode() called on a directory TreeEntry")
	}
}

// TreeEntry is a tagged value: File/Executable/Symlink carry a blob
// Hash; Directory owns its subtree by value.
type TreeEntry struct {
	Kind EntryKind
	Hash hash.Hash // meaningful only when Kind != EntryDirectory
	Tree *Tree     // non-nil iff Kind == EntryDirectory
}

// NewLeafEntry builds a file/executable/symlink tree entry pointing
// at a blob hash.
func NewLeafEntry(m mode.Mode, h hash.Hash) *TreeEntry {
	return &TreeEntry{Kind: entryKindFromMode(m), Hash: h}
}

// NewDirEntry wraps a subtree as a directory entry.
func NewDirEntry(t *Tree) *TreeEntry {
	return &TreeEntry{Kind: EntryDirectory, Tree: t}
}

// Tree is an ordered mapping from name component to TreeEntry. The
// map itself is unordered; serialization always iterates names in
// lexicographic order so hashes are reproducible.
type Tree struct {
	Entries map[string]*TreeEntry
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{Entries: make(map[string]*TreeEntry)}
}

func (t *Tree) sortedNames() []string {
	names := make([]string, 0, len(t.Entries))
	for name := range t.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether two trees have identical entry maps,
// recursively comparing subtrees.
func (t *Tree) Equal(other *Tree) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Entries) != len(other.Entries) {
		return false
	}
	for name, e := range t.Entries {
		oe, ok := other.Entries[name]
		if !ok || e.Kind != oe.Kind {
			return false
		}
		if e.Kind == EntryDirectory {
			if !e.Tree.Equal(oe.Tree) {
				return false
			}
		} else if e.Hash != oe.Hash {
			return false
		}
	}
	return true
}

// Encode produces the canonical payload (without the "tree <len>\0"
// header): entries in ascending name order as
// "<mode-octal> <name>\0<20-byte-hash>". Directory hashes are derived
// by recursively encoding (and hashing) the subtree, never cached, so
// a mutated in-memory subtree is always reflected.
func (t *Tree) Encode() ([]byte, error) {
	var buf bytes.Buffer
	for _, name := range t.sortedNames() {
		entry := t.Entries[name]
		var modeStr string
		var h hash.Hash
		if entry.Kind == EntryDirectory {
			modeStr = "40000"
			subHash, err := entry.Tree.Hash()
			if err != nil {
				return nil, err
			}
			h = subHash
		} else {
			modeStr = entry.Kind.Mode().Octal()
			h = entry.Hash
		}
		buf.WriteString(modeStr)
		buf.WriteByte(' ')
		buf.WriteString(name)
		buf.WriteByte(0)
		buf.Write(h.Bytes())
	}
	return buf.Bytes(), nil
}

// Hash returns the SHA-1 of the tree's canonical encoding.
func (t *Tree) Hash() (hash.Hash, error) {
	payload, err := t.Encode()
	if err != nil {
		return hash.Hash{}, err
	}
	return hash.Sum(encode(KindTree, payload)), nil
}

// GetEntry descends path component by component and returns the leaf
// TreeEntry (which may itself be a Directory entry if path names one).
func (t *Tree) GetEntry(path string) (*TreeEntry, error) {
	parts := strings.Split(path, "/")
	cur := t
	for i, part := range parts {
		entry, ok := cur.Entries[part]
		if !ok {
			return nil, fmt.Errorf("objects: path not found: %s", path)
		}
		if i == len(parts)-1 {
			return entry, nil
		}
		if entry.Kind != EntryDirectory {
			return nil, fmt.Errorf("objects: path not found: %s", path)
		}
		cur = entry.Tree
	}
	return nil, fmt.Errorf("objects: path not found: %s", path)
}

// Contains reports whether path resolves to an entry in this tree. A
// path whose parent component resolves to a non-directory entry is
// not contained, unless the path terminates exactly at that entry.
func (t *Tree) Contains(path string) bool {
	_, err := t.GetEntry(path)
	return err == nil
}

// BuildFromPaths constructs a tree from a flat list of (path, mode,
// hash) leaves, nesting directory entries for every intermediate path
// component. It is the tree-building half of spec.md §4.2
// ("Build from Index"); the index package supplies the leaves.
func BuildFromPaths(leaves []PathLeaf) (*Tree, error) {
	root := NewTree()
	for _, leaf := range leaves {
		if leaf.Path == "" {
			return nil, fmt.Errorf("objects: empty path in index")
		}
		parts := strings.Split(leaf.Path, "/")
		cur := root
		for _, comp := range parts[:len(parts)-1] {
			existing, ok := cur.Entries[comp]
			if !ok {
				sub := NewTree()
				existing = NewDirEntry(sub)
				cur.Entries[comp] = existing
			} else if existing.Kind != EntryDirectory {
				return nil, fmt.Errorf("objects: path %q conflicts with file entry %q", leaf.Path, comp)
			}
			cur = existing.Tree
		}
		leafName := parts[len(parts)-1]
		cur.Entries[leafName] = NewLeafEntry(leaf.Mode, leaf.Hash)
	}
	return root, nil
}

// PathLeaf is a flat (path, mode, hash) triple as stored by the
// index; BuildFromPaths folds a slice of these into a Tree.
type PathLeaf struct {
	Path string
	Mode mode.Mode
	Hash hash.Hash
}

// WalkLeaves visits every non-directory entry in the tree, depth
// first, in ascending name order, passing its full slash-joined path.
// Used by status to find committed paths the index no longer tracks.
func (t *Tree) WalkLeaves(fn func(path string, entry *TreeEntry)) {
	t.walkLeaves("", fn)
}

func (t *Tree) walkLeaves(prefix string, fn func(path string, entry *TreeEntry)) {
	for _, name := range t.sortedNames() {
		entry := t.Entries[name]
		path := joinRel(prefix, name)
		if entry.Kind == EntryDirectory {
			entry.Tree.walkLeaves(path, fn)
		} else {
			fn(path, entry)
		}
	}
}

// SaveTree recursively persists every directory entry before this
// tree's own encoding, so every hash referenced by a saved tree
// already resolves to an object on disk.
func (s *Store) SaveTree(t *Tree) (hash.Hash, error) {
	for _, name := range t.sortedNames() {
		entry := t.Entries[name]
		if entry.Kind == EntryDirectory {
			if _, err := s.SaveTree(entry.Tree); err != nil {
				return hash.Hash{}, err
			}
		}
	}
	payload, err := t.Encode()
	if err != nil {
		return hash.Hash{}, err
	}
	return s.save(KindTree, payload)
}

// LoadTree decodes the tree at hash h, recursively loading every
// directory entry's subtree.
func (s *Store) LoadTree(h hash.Hash) (*Tree, error) {
	payload, err := s.loadRaw(h, KindTree)
	if err != nil {
		return nil, fmt.Errorf("objects: load tree %s: %w", h, err)
	}
	return s.decodeTree(payload)
}

func (s *Store) decodeTree(payload []byte) (*Tree, error) {
	t := NewTree()
	i := 0
	for i < len(payload) {
		sp := bytes.IndexByte(payload[i:], ' ')
		if sp < 0 {
			return nil, fmt.Errorf("%w: tree entry missing mode separator", ErrCorruptObject)
		}
		modeStr := string(payload[i : i+sp])
		i += sp + 1

		nul := bytes.IndexByte(payload[i:], 0)
		if nul < 0 {
			return nil, fmt.Errorf("%w: tree entry missing name terminator", ErrCorruptObject)
		}
		name := string(payload[i : i+nul])
		i += nul + 1

		if i+hash.Size > len(payload) {
			return nil, fmt.Errorf("%w: tree entry truncated hash", ErrCorruptObject)
		}
		h, err := hash.FromBytes(payload[i : i+hash.Size])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptObject, err)
		}
		i += hash.Size

		if modeStr == "40000" {
			subTree, err := s.LoadTree(h)
			if err != nil {
				return nil, err
			}
			t.Entries[name] = NewDirEntry(subTree)
		} else {
			m, ok := mode.FromOctal(modeStr)
			if !ok {
				return nil, fmt.Errorf("%w: unknown tree entry mode %q", ErrCorruptObject, modeStr)
			}
			t.Entries[name] = NewLeafEntry(m, h)
		}
	}
	return t, nil
}

// ApplyOptions bundles the collaborators Tree.Apply needs to
// reconcile the working directory and index with a target tree.
type ApplyOptions struct {
	// WorkDir is the repository root on the filesystem.
	WorkDir string
	// UpdateIndexEntry records (mode, hash) for a materialized leaf.
	UpdateIndexEntry func(path string, m mode.Mode, h hash.Hash)
	// RemoveIndexPrefix drops every index entry whose path equals, or
	// is nested under, the given path.
	RemoveIndexPrefix func(path string)
	// LoadBlobData returns the raw bytes of the blob at h (used to
	// materialize files and symlink targets).
	LoadBlobData func(h hash.Hash) ([]byte, error)
}

// Apply reconciles the working directory (and, through the callbacks,
// the index) from oldTree to newTree, per spec.md §4.2. prefix is the
// repository-relative directory being processed ("" at the root).
func Apply(oldTree, newTree *Tree, prefix string, opts ApplyOptions) error {
	if oldTree == nil {
		oldTree = NewTree()
	}
	if newTree == nil {
		newTree = NewTree()
	}

	for _, name := range newTree.sortedNames() {
		newEntry := newTree.Entries[name]
		relPath := joinRel(prefix, name)
		fsPath := filepath.Join(opts.WorkDir, relPath)
		oldEntry, hadOld := oldTree.Entries[name]

		switch {
		case hadOld && oldEntry.Kind == EntryDirectory && newEntry.Kind == EntryDirectory:
			if !oldEntry.Tree.Equal(newEntry.Tree) {
				if err := Apply(oldEntry.Tree, newEntry.Tree, relPath, opts); err != nil {
					return err
				}
			}

		case hadOld && oldEntry.Kind == EntryDirectory && newEntry.Kind != EntryDirectory:
			if err := os.RemoveAll(fsPath); err != nil {
				return fmt.Errorf("objects: remove directory %s: %w", relPath, err)
			}
			opts.RemoveIndexPrefix(relPath)
			if err := materializeLeaf(fsPath, relPath, newEntry, opts); err != nil {
				return err
			}

		case hadOld && oldEntry.Kind != EntryDirectory && newEntry.Kind == EntryDirectory:
			if err := os.Remove(fsPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("objects: remove file %s: %w", relPath, err)
			}
			opts.RemoveIndexPrefix(relPath)
			if err := os.MkdirAll(fsPath, 0o755); err != nil {
				return fmt.Errorf("objects: create directory %s: %w", relPath, err)
			}
			if err := Apply(NewTree(), newEntry.Tree, relPath, opts); err != nil {
				return err
			}

		case hadOld && oldEntry.Kind != EntryDirectory && newEntry.Kind != EntryDirectory:
			if oldEntry.Kind == newEntry.Kind && oldEntry.Hash == newEntry.Hash {
				continue
			}
			if err := materializeLeaf(fsPath, relPath, newEntry, opts); err != nil {
				return err
			}

		case newEntry.Kind == EntryDirectory:
			if err := os.MkdirAll(fsPath, 0o755); err != nil {
				return fmt.Errorf("objects: create directory %s: %w", relPath, err)
			}
			if err := Apply(NewTree(), newEntry.Tree, relPath, opts); err != nil {
				return err
			}

		default:
			if err := materializeLeaf(fsPath, relPath, newEntry, opts); err != nil {
				return err
			}
		}
	}

	for _, name := range oldTree.sortedNames() {
		if _, stillPresent := newTree.Entries[name]; stillPresent {
			continue
		}
		relPath := joinRel(prefix, name)
		fsPath := filepath.Join(opts.WorkDir, relPath)
		oldEntry := oldTree.Entries[name]
		if oldEntry.Kind == EntryDirectory {
			if err := os.RemoveAll(fsPath); err != nil {
				return fmt.Errorf("objects: remove directory %s: %w", relPath, err)
			}
		} else if err := os.Remove(fsPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("objects: remove file %s: %w", relPath, err)
		}
		opts.RemoveIndexPrefix(relPath)
	}

	return nil
}

func materializeLeaf(fsPath, relPath string, entry *TreeEntry, opts ApplyOptions) error {
	data, err := opts.LoadBlobData(entry.Hash)
	if err != nil {
		return fmt.Errorf("objects: load blob for %s: %w", relPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(fsPath), 0o755); err != nil {
		return fmt.Errorf("objects: create parent dir for %s: %w", relPath, err)
	}

	switch entry.Kind {
	case EntrySymlink:
		_ = os.Remove(fsPath)
		if err := os.Symlink(string(data), fsPath); err != nil {
			return fmt.Errorf("objects: create symlink %s: %w", relPath, err)
		}
	default:
		perm := os.FileMode(0o644)
		if entry.Kind == EntryExecutable {
			perm = 0o755
		}
		if err := os.WriteFile(fsPath, data, perm); err != nil {
			return fmt.Errorf("objects: write file %s: %w", relPath, err)
		}
		if err := os.Chmod(fsPath, perm); err != nil {
			return fmt.Errorf("objects: chmod %s: %w", relPath, err)
		}
	}

	opts.UpdateIndexEntry(relPath, entry.Kind.Mode(), entry.Hash)
	return nil
}

func joinRel(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
