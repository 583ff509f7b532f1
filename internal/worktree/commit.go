package worktree

import (
	"errors"
	"time"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/index"
	"github.com/flomonster/my-git/internal/objects"
	"github.com/flomonster/my-git/internal/refs"
)

// ErrNothingToCommit is returned by Commit when the index's tree is
// identical to HEAD's tree (or both are empty on a newborn branch).
var ErrNothingToCommit = errors.New("worktree: nothing to commit")

// Commit builds a tree from idx, and — unless it is identical to
// HEAD's current tree — creates a commit object pointing at it with a
// single parent (HEAD, if any), then advances HEAD (dereferencing
// through the current branch) to the new commit.
func Commit(refStore *refs.Store, store *objects.Store, idx *index.Index, name, email, message string, now time.Time) (hash.Hash, error) {
	tree, err := idx.BuildTree()
	if err != nil {
		return hash.Zero, err
	}
	treeHash, err := tree.Hash()
	if err != nil {
		return hash.Zero, err
	}

	parentHash, hasParent, err := refStore.Head()
	if err != nil {
		return hash.Zero, err
	}

	if hasParent {
		parentCommit, err := store.LoadCommit(parentHash)
		if err != nil {
			return hash.Zero, err
		}
		if parentCommit.TreeHash == treeHash {
			return hash.Zero, ErrNothingToCommit
		}
	} else if len(tree.Entries) == 0 {
		return hash.Zero, ErrNothingToCommit
	}

	if _, err := store.SaveTree(tree); err != nil {
		return hash.Zero, err
	}

	sig := objects.Signature{Name: name, Email: email, When: now}
	c := &objects.Commit{
		TreeHash:  treeHash,
		Author:    sig,
		Committer: sig,
		Message:   message,
	}
	if hasParent {
		c.Parents = []hash.Hash{parentHash}
	}

	commitHash, err := store.SaveCommit(c)
	if err != nil {
		return hash.Zero, err
	}

	if err := refStore.UpdateHash("HEAD", commitHash, true); err != nil {
		return hash.Zero, err
	}
	return commitHash, nil
}
