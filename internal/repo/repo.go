// Package repo locates and initializes the .my_git layout, the
// repository-root discovery the teacher's util.FindGitRoot performed
// for .git, adapted to this project's directory name and to the
// richer subdirectory layout (refs/heads, refs/tags, objects/info).
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const DirName = ".my_git"

// ErrNotARepository is returned when no .my_git directory is found
// walking up from the starting path.
var ErrNotARepository = errors.New("not a my_git repository (or any of the parent directories)")

// Layout names the on-disk paths under a repository's .my_git dir.
type Layout struct {
	Root      string // working-tree root, parent of GitDir
	GitDir    string // <root>/.my_git
	ObjectsDir string
	RefsHeads string
	RefsTags  string
	HeadFile  string
	IndexFile string
	ConfigFile string
}

func layoutFor(root string) Layout {
	gitDir := filepath.Join(root, DirName)
	return Layout{
		Root:       root,
		GitDir:     gitDir,
		ObjectsDir: filepath.Join(gitDir, "objects"),
		RefsHeads:  filepath.Join(gitDir, "refs", "heads"),
		RefsTags:   filepath.Join(gitDir, "refs", "tags"),
		HeadFile:   filepath.Join(gitDir, "HEAD"),
		IndexFile:  filepath.Join(gitDir, "index"),
		ConfigFile: filepath.Join(gitDir, "config"),
	}
}

// FindRoot walks upward from start looking for a .my_git directory,
// stopping at the filesystem root.
func FindRoot(start string) (Layout, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return Layout{}, fmt.Errorf("repo: resolve %s: %w", start, err)
	}
	dir := abs
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return layoutFor(dir), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Layout{}, ErrNotARepository
		}
		dir = parent
	}
}

// Init creates the .my_git layout rooted at root. Re-running on an
// existing layout is a no-op; the caller decides whether to print a
// "reinitialized" message based on the returned bool (true means the
// layout already existed).
func Init(root string) (Layout, bool, error) {
	layout := layoutFor(root)

	_, statErr := os.Stat(layout.GitDir)
	alreadyExists := statErr == nil

	dirs := []string{
		filepath.Join(layout.ObjectsDir, "info"),
		layout.RefsHeads,
		layout.RefsTags,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return Layout{}, false, fmt.Errorf("repo: create %s: %w", d, err)
		}
	}

	if _, err := os.Stat(layout.HeadFile); os.IsNotExist(err) {
		if err := os.WriteFile(layout.HeadFile, []byte("ref: refs/heads/master\n"), 0o644); err != nil {
			return Layout{}, false, fmt.Errorf("repo: write HEAD: %w", err)
		}
	}

	if _, err := os.Stat(layout.IndexFile); os.IsNotExist(err) {
		if err := os.WriteFile(layout.IndexFile, nil, 0o644); err != nil {
			return Layout{}, false, fmt.Errorf("repo: write index: %w", err)
		}
	}

	return layout, alreadyExists, nil
}
