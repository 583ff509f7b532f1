// Package history walks the commit parent graph: the BFS traversal
// behind "log" and the ancestry test behind branch delete/merge
// checks. Grounded on the teacher's store.Client.WalkHistory, adapted
// from a single-parent-chain queue to the general multi-parent case
// spec.md §4.4 requires.
package history

import (
	"fmt"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/objects"
)

// WalkFunc is invoked once per visited commit, in BFS order. Returning
// ErrStopWalk halts the walk early without propagating an error.
type WalkFunc func(h hash.Hash, c *objects.Commit) error

// ErrStopWalk lets a WalkFunc short-circuit Walk.
var ErrStopWalk = fmt.Errorf("history: stop walk")

// Walk performs a breadth-first traversal of the commit graph starting
// at start, following parent pointers, visiting each commit at most
// once.
func Walk(store *objects.Store, start hash.Hash, fn WalkFunc) error {
	queue := []hash.Hash{start}
	visited := map[hash.Hash]struct{}{}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		if _, ok := visited[h]; ok {
			continue
		}
		visited[h] = struct{}{}

		c, err := store.LoadCommit(h)
		if err != nil {
			return fmt.Errorf("history: load commit %s: %w", h, err)
		}

		if err := fn(h, c); err != nil {
			if err == ErrStopWalk {
				return nil
			}
			return err
		}

		for _, p := range c.Parents {
			if _, ok := visited[p]; !ok {
				queue = append(queue, p)
			}
		}
	}
	return nil
}

// Log collects the full BFS-ordered commit list starting at start,
// the order the "log" command prints in.
func Log(store *objects.Store, start hash.Hash) ([]*objects.Commit, error) {
	var out []*objects.Commit
	err := Walk(store, start, func(_ hash.Hash, c *objects.Commit) error {
		out = append(out, c)
		return nil
	})
	return out, err
}

// IsAncestor reports whether ancestor is reachable from descendant by
// walking parent pointers (BFS, reflexive when the two hashes match).
func IsAncestor(store *objects.Store, ancestor, descendant hash.Hash) (bool, error) {
	found := false
	err := Walk(store, descendant, func(h hash.Hash, _ *objects.Commit) error {
		if h == ancestor {
			found = true
			return ErrStopWalk
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}
