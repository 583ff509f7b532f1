package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flomonster/my-git/internal/mode"
	"github.com/flomonster/my-git/internal/objects"
)

// IgnoreMatcher is the minimal interface Add needs from an ignore
// pattern set; internal/ignore.Matcher satisfies it.
type IgnoreMatcher interface {
	Match(relPath string) bool
}

// ErrOutsideRepository is returned by Add when path resolves outside
// the repository root.
var ErrOutsideRepository = errors.New("outside the repository")

// IgnoredPathsError aggregates every path that add() skipped because
// it matched an ignore pattern and force was not set (spec.md §7,
// IgnoredWithoutForce).
type IgnoredPathsError struct {
	Paths []string
}

func (e *IgnoredPathsError) Error() string {
	return fmt.Sprintf("the following paths are ignored by one of your .my_gitignore files:\n%s\nuse -f if you really want to add them", strings.Join(e.Paths, "\n"))
}

// Add canonicalizes path relative to root, recurses into directories,
// and stages every matched file, creating and saving blobs as it
// goes. Paths matching matcher are skipped (accumulated in the
// returned error) unless force is set. path may be absolute or
// relative to the process's current directory.
func Add(idx *Index, store *objects.Store, root, path string, force bool, matcher IgnoreMatcher) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("index: resolve %s: %w", path, err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("index: resolve root %s: %w", root, err)
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("index: %s: %w", path, ErrOutsideRepository)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		rel = ""
	}

	var ignored []string
	if err := addRecursive(idx, store, absRoot, rel, force, matcher, &ignored); err != nil {
		return err
	}
	if len(ignored) > 0 {
		return &IgnoredPathsError{Paths: ignored}
	}
	return nil
}

func addRecursive(idx *Index, store *objects.Store, absRoot, rel string, force bool, matcher IgnoreMatcher, ignored *[]string) error {
	fsPath := filepath.Join(absRoot, filepath.FromSlash(rel))
	info, err := os.Lstat(fsPath)
	if err != nil {
		return fmt.Errorf("index: stat %s: %w", rel, err)
	}

	if info.Mode()&os.ModeSymlink == 0 && info.IsDir() {
		entries, err := os.ReadDir(fsPath)
		if err != nil {
			return fmt.Errorf("index: read dir %s: %w", rel, err)
		}
		for _, de := range entries {
			childRel := rel + "/" + de.Name()
			if rel == "" {
				childRel = de.Name()
			}
			if de.Name() == ".my_git" {
				continue
			}
			if err := addRecursive(idx, store, absRoot, childRel, force, matcher, ignored); err != nil {
				return err
			}
		}
		return nil
	}

	_, alreadyStaged := idx.Get(rel)
	if matcher != nil && matcher.Match(rel) && !alreadyStaged {
		if !force {
			*ignored = append(*ignored, rel)
			return nil
		}
	}

	var data []byte
	var m mode.Mode
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(fsPath)
		if err != nil {
			return fmt.Errorf("index: readlink %s: %w", rel, err)
		}
		data = []byte(target)
		m = mode.Symlink
	} else {
		data, err = os.ReadFile(fsPath)
		if err != nil {
			return fmt.Errorf("index: read %s: %w", rel, err)
		}
		if info.Mode().Perm()&0o111 != 0 {
			m = mode.Executable
		} else {
			m = mode.Regular
		}
	}

	blob := objects.NewBlob(data)
	h, err := store.SaveBlob(blob)
	if err != nil {
		return fmt.Errorf("index: save blob for %s: %w", rel, err)
	}
	idx.Set(rel, m, h)
	return nil
}

// Remove drops every current entry whose path equals or is nested
// under the given path, provided the corresponding working-tree file
// no longer exists (approximating "git rm" for files already
// deleted on disk, per spec.md §4.3).
func Remove(idx *Index, root, path string) {
	rel := filepath.ToSlash(path)
	for _, e := range idx.Sorted() {
		if e.Path != rel && !strings.HasPrefix(e.Path, rel+"/") {
			continue
		}
		fsPath := filepath.Join(root, filepath.FromSlash(e.Path))
		if _, err := os.Lstat(fsPath); os.IsNotExist(err) {
			idx.Remove(e.Path)
		}
	}
}
