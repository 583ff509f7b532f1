// Package worktree reconciles the index, the last commit's tree, and
// the filesystem: status reporting (this file, built on
// Tree.WalkLeaves) and branch/switch operations (branch.go, built on
// objects.Apply via index callbacks).
package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/ignore"
	"github.com/flomonster/my-git/internal/index"
	"github.com/flomonster/my-git/internal/mode"
	"github.com/flomonster/my-git/internal/objects"
)

// StatusKind classifies a single status line.
type StatusKind int

const (
	New StatusKind = iota
	ModifiedStaged
	DeletedStaged
	ModifiedNotStaged
	DeletedNotStaged
	Untracked
)

func (k StatusKind) group() int {
	switch k {
	case New, ModifiedStaged, DeletedStaged:
		return 0
	case ModifiedNotStaged, DeletedNotStaged:
		return 1
	default:
		return 2
	}
}

// StatusItem is one path's classification.
type StatusItem struct {
	Kind StatusKind
	Path string
}

// Status computes the full status list for root, comparing idx
// against committed (the last commit's tree, nil for a newborn
// repository with no commits) and the filesystem. Items are returned
// grouped staged/not-staged/untracked, lexicographic by path within
// each group, per spec.md §4.6.
func Status(root string, idx *index.Index, committed *objects.Tree, matcher *ignore.Matcher) ([]StatusItem, error) {
	var items []StatusItem

	tracked := map[string]bool{}
	for _, e := range idx.Sorted() {
		tracked[e.Path] = true

		committedEntry, committedOk := lookupLeaf(committed, e.Path)
		if !committedOk {
			items = append(items, StatusItem{Kind: New, Path: e.Path})
		} else if committedEntry.Kind.Mode() != e.Mode || committedEntry.Hash != e.Hash {
			items = append(items, StatusItem{Kind: ModifiedStaged, Path: e.Path})
		}

		fsPath := filepath.Join(root, filepath.FromSlash(e.Path))
		info, err := os.Lstat(fsPath)
		switch {
		case err != nil && os.IsNotExist(err):
			items = append(items, StatusItem{Kind: DeletedNotStaged, Path: e.Path})
		case err != nil:
			return nil, fmt.Errorf("worktree: stat %s: %w", e.Path, err)
		case info.IsDir():
			items = append(items, StatusItem{Kind: DeletedNotStaged, Path: e.Path})
		default:
			m, h, err := hashWorkingFile(fsPath, info)
			if err != nil {
				return nil, err
			}
			if m != e.Mode || h != e.Hash {
				items = append(items, StatusItem{Kind: ModifiedNotStaged, Path: e.Path})
			}
		}
	}

	if committed != nil {
		committed.WalkLeaves(func(path string, _ *objects.TreeEntry) {
			if !tracked[path] {
				items = append(items, StatusItem{Kind: DeletedStaged, Path: path})
			}
		})
	}

	untracked, err := untrackedPaths(root, "", idx, committed, matcher)
	if err != nil {
		return nil, err
	}
	for _, p := range untracked {
		items = append(items, StatusItem{Kind: Untracked, Path: p})
	}

	sort.SliceStable(items, func(i, j int) bool {
		gi, gj := items[i].Kind.group(), items[j].Kind.group()
		if gi != gj {
			return gi < gj
		}
		return items[i].Path < items[j].Path
	})
	return items, nil
}

func lookupLeaf(t *objects.Tree, path string) (*objects.TreeEntry, bool) {
	if t == nil {
		return nil, false
	}
	entry, err := t.GetEntry(path)
	if err != nil || entry.Kind == objects.EntryDirectory {
		return nil, false
	}
	return entry, true
}

// hashWorkingFile computes the (mode, blob-hash) a working-tree file
// would stage as, without writing anything to the object store.
func hashWorkingFile(fsPath string, info os.FileInfo) (mode.Mode, hash.Hash, error) {
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(fsPath)
		if err != nil {
			return 0, hash.Zero, fmt.Errorf("worktree: readlink %s: %w", fsPath, err)
		}
		return mode.Symlink, objects.NewBlob([]byte(target)).Hash(), nil
	}
	data, err := os.ReadFile(fsPath)
	if err != nil {
		return 0, hash.Zero, fmt.Errorf("worktree: read %s: %w", fsPath, err)
	}
	m := mode.Regular
	if info.Mode().Perm()&0o111 != 0 {
		m = mode.Executable
	}
	return m, objects.NewBlob(data).Hash(), nil
}

// untrackedPaths walks the filesystem under root/relDir, skipping
// .my_git, and collects every path that is neither index-tracked nor
// committed and does not match an ignore pattern. A directory with no
// tracked content anywhere beneath it is reported as a single
// untracked item without descending further.
func untrackedPaths(root, relDir string, idx *index.Index, committed *objects.Tree, matcher *ignore.Matcher) ([]string, error) {
	fsDir := filepath.Join(root, filepath.FromSlash(relDir))
	entries, err := os.ReadDir(fsDir)
	if err != nil {
		return nil, fmt.Errorf("worktree: read dir %s: %w", relDir, err)
	}

	var out []string
	for _, de := range entries {
		name := de.Name()
		if relDir == "" && name == ".my_git" {
			continue
		}
		rel := name
		if relDir != "" {
			rel = relDir + "/" + name
		}

		if de.IsDir() {
			if matcher.Match(rel) {
				continue
			}
			if idx.ContainsDir(rel) || committedContainsDir(committed, rel) {
				sub, err := untrackedPaths(root, rel, idx, committed, matcher)
				if err != nil {
					return nil, err
				}
				out = append(out, sub...)
				continue
			}
			out = append(out, rel)
			continue
		}

		if _, staged := idx.Get(rel); staged {
			continue
		}
		if _, ok := lookupLeaf(committed, rel); ok {
			continue
		}
		if matcher.Match(rel) {
			continue
		}
		out = append(out, rel)
	}
	sort.Strings(out)
	return out, nil
}

func committedContainsDir(t *objects.Tree, dir string) bool {
	if t == nil {
		return false
	}
	entry, err := t.GetEntry(dir)
	return err == nil && entry.Kind == objects.EntryDirectory
}
