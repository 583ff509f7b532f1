// Package refs manages the named-pointer graph: HEAD, branches under
// refs/heads, and the symbolic/direct ref files that back them. It
// mirrors the layout the teacher's store.Client expects under .git,
// adapted to .my_git and to symbolic refs (HEAD -> refs/heads/<name>).
package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/flomonster/my-git/internal/hash"
)

const maxDerefDepth = 10

var (
	// ErrRefNotFound is returned when resolve reaches a ref file that
	// does not exist on disk.
	ErrRefNotFound = errors.New("refs: not found")
	// ErrRefCycle is returned when resolving a symbolic ref exceeds
	// maxDerefDepth hops, per spec.md §4.5.
	ErrRefCycle = errors.New("refs: cycle detected")
	// ErrInvalidBranchName rejects empty or path-escaping branch names.
	ErrInvalidBranchName = errors.New("refs: invalid branch name")
)

const symbolicPrefix = "ref: "

// Store resolves and mutates ref files rooted at gitDir (".my_git").
type Store struct {
	dir string
	log *logrus.Logger
}

// New returns a ref Store rooted at gitDir.
func New(gitDir string, log *logrus.Logger) *Store {
	return &Store{dir: gitDir, log: log}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, filepath.FromSlash(name))
}

func (s *Store) debugf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}

// readRaw returns the trimmed contents of the ref file at name.
func (s *Store) readRaw(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrRefNotFound
		}
		return "", fmt.Errorf("refs: read %s: %w", name, err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// Resolve dereferences name down to a concrete hash, following
// symbolic "ref: <target>" redirections up to maxDerefDepth times.
func (s *Store) Resolve(name string) (hash.Hash, error) {
	return s.resolveDepth(name, 0)
}

func (s *Store) resolveDepth(name string, depth int) (hash.Hash, error) {
	if depth > maxDerefDepth {
		return hash.Zero, ErrRefCycle
	}
	raw, err := s.readRaw(name)
	if err != nil {
		return hash.Zero, err
	}
	if strings.HasPrefix(raw, symbolicPrefix) {
		target := strings.TrimSpace(strings.TrimPrefix(raw, symbolicPrefix))
		return s.resolveDepth(target, depth+1)
	}
	return hash.FromHex(strings.TrimSpace(raw))
}

// resolveDirectName follows symbolic refs until it reaches the first
// direct (non-symbolic) ref name, without reading its hash. Used by
// Update when dereference is requested.
func (s *Store) resolveDirectName(name string, depth int) (string, error) {
	if depth > maxDerefDepth {
		return "", ErrRefCycle
	}
	raw, err := s.readRaw(name)
	if err != nil {
		if errors.Is(err, ErrRefNotFound) {
			return name, nil
		}
		return "", err
	}
	if strings.HasPrefix(raw, symbolicPrefix) {
		target := strings.TrimSpace(strings.TrimPrefix(raw, symbolicPrefix))
		return s.resolveDirectName(target, depth+1)
	}
	return name, nil
}

// Head resolves HEAD to a commit hash. It returns hash.Zero, false, nil
// when HEAD is symbolic but its target branch has no commits yet (a
// newborn repository), distinct from a genuine error.
func (s *Store) Head() (hash.Hash, bool, error) {
	h, err := s.Resolve("HEAD")
	if err != nil {
		if errors.Is(err, ErrRefNotFound) {
			return hash.Zero, false, nil
		}
		return hash.Zero, false, err
	}
	return h, true, nil
}

// Update writes value to name. If dereference is true, symbolic
// redirections are first resolved so the final direct ref is the one
// that actually changes; otherwise name is written verbatim. value
// may itself be "ref: <other>" to make the ref symbolic.
func (s *Store) Update(name, value string, dereference bool) error {
	target := name
	if dereference {
		direct, err := s.resolveDirectName(name, 0)
		if err != nil {
			return err
		}
		target = direct
	}
	full := s.path(target)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("refs: create dir for %s: %w", target, err)
	}
	if err := os.WriteFile(full, []byte(value+"\n"), 0o644); err != nil {
		return fmt.Errorf("refs: write %s: %w", target, err)
	}
	s.debugf("refs: updated %s -> %s", target, value)
	return nil
}

// UpdateHash is a convenience wrapper around Update for the common
// case of pointing a ref at a commit hash.
func (s *Store) UpdateHash(name string, h hash.Hash, dereference bool) error {
	return s.Update(name, h.String(), dereference)
}

// SetSymbolic makes name a symbolic ref pointing at targetRef (e.g.
// HEAD -> refs/heads/master).
func (s *Store) SetSymbolic(name, targetRef string) error {
	return s.Update(name, symbolicPrefix+targetRef, false)
}

// CurrentBranch returns the short branch name HEAD points to and
// whether HEAD is symbolic at all (false means detached).
func (s *Store) CurrentBranch() (string, bool, error) {
	raw, err := s.readRaw("HEAD")
	if err != nil {
		return "", false, err
	}
	if !strings.HasPrefix(raw, symbolicPrefix) {
		return "", false, nil
	}
	target := strings.TrimSpace(strings.TrimPrefix(raw, symbolicPrefix))
	const headsPrefix = "refs/heads/"
	if !strings.HasPrefix(target, headsPrefix) {
		return target, true, nil
	}
	return strings.TrimPrefix(target, headsPrefix), true, nil
}

// BranchRef builds the ref path for a branch short name.
func BranchRef(name string) string {
	return "refs/heads/" + name
}

// Branches recursively enumerates refs/heads and returns a map from
// branch short name (slash-joined subpath) to its resolved commit
// hash.
func (s *Store) Branches() (map[string]hash.Hash, error) {
	root := filepath.Join(s.dir, "refs", "heads")
	out := make(map[string]hash.Hash)

	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		h, err := s.Resolve(BranchRef(name))
		if err != nil {
			return fmt.Errorf("refs: resolve branch %s: %w", name, err)
		}
		out[name] = h
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return out, nil
}

// SortedBranchNames returns Branches' keys in lexicographic order, the
// order the CLI lists branches in.
func SortedBranchNames(branches map[string]hash.Hash) []string {
	names := make([]string, 0, len(branches))
	for n := range branches {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RemoveRef deletes the ref file at name, then prunes now-empty parent
// directories up to (but not including) gitDir.
func (s *Store) RemoveRef(name string) error {
	full := s.path(name)
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return ErrRefNotFound
		}
		return fmt.Errorf("refs: remove %s: %w", name, err)
	}
	dir := filepath.Dir(full)
	for dir != s.dir && strings.HasPrefix(dir, s.dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		if err := os.Remove(dir); err != nil {
			break
		}
		dir = filepath.Dir(dir)
	}
	return nil
}

// ValidateBranchName rejects empty names and any path-escaping
// component (".." or embedded separators resolving outside
// refs/heads).
func ValidateBranchName(name string) error {
	if name == "" {
		return ErrInvalidBranchName
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidBranchName
		}
	}
	return nil
}
