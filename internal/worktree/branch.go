package worktree

import (
	"errors"
	"fmt"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/history"
	"github.com/flomonster/my-git/internal/index"
	"github.com/flomonster/my-git/internal/mode"
	"github.com/flomonster/my-git/internal/objects"
	"github.com/flomonster/my-git/internal/refs"
)

var (
	// ErrBranchExists is returned by CreateBranch when the branch
	// already exists and force was not set.
	ErrBranchExists = errors.New("worktree: branch already exists")
	// ErrBranchNotFound is returned when a named branch has no ref.
	ErrBranchNotFound = errors.New("worktree: branch not found")
	// ErrBranchIsCurrent is returned by DeleteBranch on HEAD's branch.
	ErrBranchIsCurrent = errors.New("worktree: cannot delete the current branch")
	// ErrBranchNotMerged is returned by DeleteBranch when the branch
	// tip is not an ancestor of HEAD and force was not set.
	ErrBranchNotMerged = errors.New("worktree: branch is not fully merged")
	// ErrNoHeadCommit is returned when an operation needs a current
	// commit but HEAD is still newborn (no commits yet).
	ErrNoHeadCommit = errors.New("worktree: HEAD has no commit yet")
)

// CreateBranch validates name, requires a current HEAD commit, and
// writes refs/heads/<name> pointing at it. Fails with ErrBranchExists
// unless force is set.
func CreateBranch(refStore *refs.Store, name string, force bool) error {
	if err := refs.ValidateBranchName(name); err != nil {
		return err
	}
	headHash, ok, err := refStore.Head()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoHeadCommit
	}

	ref := refs.BranchRef(name)
	if _, err := refStore.Resolve(ref); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrBranchExists, name)
	} else if err != nil && !errors.Is(err, refs.ErrRefNotFound) {
		return err
	}

	return refStore.UpdateHash(ref, headHash, false)
}

// DeleteBranch removes refs/heads/<name>. It fails if name is the
// current branch, and fails if the branch tip is not an ancestor of
// HEAD (not merged) unless force is set.
func DeleteBranch(refStore *refs.Store, store *objects.Store, name string, force bool) error {
	current, symbolic, err := refStore.CurrentBranch()
	if err != nil {
		return err
	}
	if symbolic && current == name {
		return ErrBranchIsCurrent
	}

	ref := refs.BranchRef(name)
	tip, err := refStore.Resolve(ref)
	if err != nil {
		if errors.Is(err, refs.ErrRefNotFound) {
			return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
		}
		return err
	}

	if !force {
		headHash, ok, err := refStore.Head()
		if err != nil {
			return err
		}
		merged := !ok
		if ok {
			merged, err = history.IsAncestor(store, tip, headHash)
			if err != nil {
				return err
			}
		}
		if !merged {
			return fmt.Errorf("%w: %s", ErrBranchNotMerged, name)
		}
	}

	return refStore.RemoveRef(ref)
}

// Switch moves HEAD to branch name, applying the tree diff from the
// current HEAD commit to the target branch's tip commit across the
// working directory and index. If create is true and the branch does
// not exist, it is created at the current HEAD first (force controls
// whether an existing branch of the same name is overwritten).
func Switch(root string, refStore *refs.Store, store *objects.Store, idx *index.Index, indexPath, name string, create, force bool) error {
	if create {
		if err := CreateBranch(refStore, name, force); err != nil && !errors.Is(err, ErrBranchExists) {
			return err
		}
	}

	ref := refs.BranchRef(name)
	targetHash, err := refStore.Resolve(ref)
	if err != nil {
		if errors.Is(err, refs.ErrRefNotFound) {
			return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
		}
		return err
	}

	oldTree, err := treeForHead(refStore, store)
	if err != nil {
		return err
	}
	newTree, err := treeForCommit(store, targetHash)
	if err != nil {
		return err
	}

	opts := objects.ApplyOptions{
		WorkDir: root,
		UpdateIndexEntry: func(path string, m mode.Mode, h hash.Hash) {
			idx.Set(path, m, h)
		},
		RemoveIndexPrefix: func(path string) {
			idx.RemovePrefix(path)
		},
		LoadBlobData: func(h hash.Hash) ([]byte, error) {
			b, err := store.LoadBlob(h)
			if err != nil {
				return nil, err
			}
			return b.Data, nil
		},
	}
	if err := objects.Apply(oldTree, newTree, "", opts); err != nil {
		return err
	}
	if err := idx.Save(indexPath); err != nil {
		return err
	}

	return refStore.SetSymbolic("HEAD", ref)
}

func treeForHead(refStore *refs.Store, store *objects.Store) (*objects.Tree, error) {
	h, ok, err := refStore.Head()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return treeForCommit(store, h)
}

func treeForCommit(store *objects.Store, h hash.Hash) (*objects.Tree, error) {
	c, err := store.LoadCommit(h)
	if err != nil {
		return nil, err
	}
	return store.LoadTree(c.TreeHash)
}
