// Package index implements the flat staging area: a path→(mode,hash)
// map, its text serialization, and the add/remove operations that
// populate it from the working tree.
package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/mode"
	"github.com/flomonster/my-git/internal/objects"
)

// Entry is a single staged path with its mode and blob hash.
type Entry struct {
	Path string
	Mode mode.Mode
	Hash hash.Hash
}

// Index is the sole ground truth for what the next commit will
// contain: a map from repository-relative path to (mode, hash).
type Index struct {
	entries map[string]Entry
}

// New returns an empty index.
func New() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// Load parses the index text file at path. A missing file yields an
// empty index, matching a freshly initialized repository.
func Load(path string) (*Index, error) {
	idx := New()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("index: %s: %w", path, err)
		}
		idx.entries[entry.Path] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("index: read %s: %w", path, err)
	}
	return idx, nil
}

// parseLine parses "<path> <mode-char> <40-hex-hash>". Paths may
// contain spaces: everything except the trailing two whitespace
// tokens is reassembled into the path.
func parseLine(line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Entry{}, fmt.Errorf("malformed index line %q", line)
	}
	hashStr := fields[len(fields)-1]
	modeChar := fields[len(fields)-2]
	path := strings.Join(fields[:len(fields)-2], " ")

	if len(modeChar) != 1 {
		return Entry{}, fmt.Errorf("malformed mode in index line %q", line)
	}
	m, ok := mode.FromChar(modeChar[0])
	if !ok {
		return Entry{}, fmt.Errorf("unknown mode char %q in index line %q", modeChar, line)
	}
	h, err := hash.FromHex(hashStr)
	if err != nil {
		return Entry{}, fmt.Errorf("bad hash in index line %q: %w", line, err)
	}
	return Entry{Path: path, Mode: m, Hash: h}, nil
}

// Save rewrites the index wholesale in its text format.
func (idx *Index) Save(path string) error {
	var buf strings.Builder
	for _, e := range idx.Sorted() {
		fmt.Fprintf(&buf, "%s %c %s\n", e.Path, e.Mode.Char(), e.Hash)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("index: create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return fmt.Errorf("index: write %s: %w", path, err)
	}
	return nil
}

// Get returns the entry at path, if staged.
func (idx *Index) Get(path string) (Entry, bool) {
	e, ok := idx.entries[path]
	return e, ok
}

// Set stages (or replaces) the entry at path.
func (idx *Index) Set(path string, m mode.Mode, h hash.Hash) {
	idx.entries[path] = Entry{Path: path, Mode: m, Hash: h}
}

// Remove drops a single exact path from the index. Returns true if it
// was present.
func (idx *Index) Remove(path string) bool {
	if _, ok := idx.entries[path]; !ok {
		return false
	}
	delete(idx.entries, path)
	return true
}

// RemovePrefix drops path itself and every entry nested under
// "<path>/", as used by Tree.Apply when a directory replaces a file
// or vice versa.
func (idx *Index) RemovePrefix(path string) {
	delete(idx.entries, path)
	prefix := path + "/"
	for p := range idx.entries {
		if strings.HasPrefix(p, prefix) {
			delete(idx.entries, p)
		}
	}
}

// ContainsDir reports whether any entry's path starts with "<dir>/",
// i.e. whether dir currently has index-tracked contents.
func (idx *Index) ContainsDir(dir string) bool {
	prefix := dir + "/"
	for p := range idx.entries {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Len returns the number of staged entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Sorted returns every entry ordered lexicographically by path.
func (idx *Index) Sorted() []Entry {
	out := make([]Entry, 0, len(idx.entries))
	for _, e := range idx.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Equal reports whether two indexes have identical entries.
func (idx *Index) Equal(other *Index) bool {
	if len(idx.entries) != len(other.entries) {
		return false
	}
	for p, e := range idx.entries {
		oe, ok := other.entries[p]
		if !ok || oe != e {
			return false
		}
	}
	return true
}

// BuildTree folds the flat index into a nested Tree, per spec.md
// §4.2 ("Build from Index").
func (idx *Index) BuildTree() (*objects.Tree, error) {
	leaves := make([]objects.PathLeaf, 0, len(idx.entries))
	for _, e := range idx.Sorted() {
		leaves = append(leaves, objects.PathLeaf{Path: e.Path, Mode: e.Mode, Hash: e.Hash})
	}
	return objects.BuildFromPaths(leaves)
}
