package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/flomonster/my-git/internal/config"
	"github.com/flomonster/my-git/internal/ignore"
	"github.com/flomonster/my-git/internal/index"
	"github.com/flomonster/my-git/internal/objects"
	"github.com/flomonster/my-git/internal/refs"
	"github.com/flomonster/my-git/internal/repo"
)

// repoContext bundles the collaborators every command past init needs.
type repoContext struct {
	layout repo.Layout
	store  *objects.Store
	refs   *refs.Store
	index  *index.Index
}

func openRepo() (*repoContext, error) {
	layout, err := repo.FindRoot(".")
	if err != nil {
		return nil, err
	}
	idx, err := index.Load(layout.IndexFile)
	if err != nil {
		return nil, err
	}
	return &repoContext{
		layout: layout,
		store:  objects.NewStore(layout.GitDir, log),
		refs:   refs.New(layout.GitDir, log),
		index:  idx,
	}, nil
}

func (rc *repoContext) saveIndex() error {
	return rc.index.Save(rc.layout.IndexFile)
}

func (rc *repoContext) headTree() (*objects.Tree, error) {
	h, ok, err := rc.refs.Head()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	c, err := rc.store.LoadCommit(h)
	if err != nil {
		return nil, err
	}
	return rc.store.LoadTree(c.TreeHash)
}

// loadIgnoreMatcher reads <root>/.my_gitignore (one glob per line,
// trailing "/" stripped) if present, and always ignores .my_git
// itself, per spec.md §6.
func loadIgnoreMatcher(root string) (*ignore.Matcher, error) {
	patterns := []string{".my_git"}

	f, err := os.Open(root + string(os.PathSeparator) + ".my_gitignore")
	if err != nil {
		if os.IsNotExist(err) {
			return ignore.New(patterns), nil
		}
		return nil, fmt.Errorf("cmd: read .my_gitignore: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		patterns = append(patterns, strings.TrimSuffix(line, "/"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cmd: read .my_gitignore: %w", err)
	}
	return ignore.New(patterns), nil
}

// resolveIdentity loads config rooted at root and returns the
// committer name/email, or config.ErrMissingIdentity.
func resolveIdentity(root string) (string, string, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return "", "", err
	}
	return cfg.Identity()
}
