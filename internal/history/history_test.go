package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/objects"
)

func commitAt(t *testing.T, store *objects.Store, msg string, parents ...hash.Hash) hash.Hash {
	t.Helper()
	sig := objects.Signature{Name: "A", Email: "a@b.com", When: time.Unix(1000, 0).UTC()}
	c := &objects.Commit{
		TreeHash:  objects.NewBlob([]byte(msg)).Hash(),
		Parents:   parents,
		Author:    sig,
		Committer: sig,
		Message:   msg,
	}
	h, err := store.SaveCommit(c)
	require.NoError(t, err)
	return h
}

func TestLogLinearHistory(t *testing.T) {
	store := objects.NewStore(t.TempDir(), nil)

	c1 := commitAt(t, store, "first\n")
	c2 := commitAt(t, store, "second\n", c1)
	c3 := commitAt(t, store, "third\n", c2)

	commits, err := Log(store, c3)
	require.NoError(t, err)
	require.Len(t, commits, 3)
	assert.Equal(t, "third\n", commits[0].Message)
	assert.Equal(t, "second\n", commits[1].Message)
	assert.Equal(t, "first\n", commits[2].Message)
}

func TestLogMergeVisitsOnce(t *testing.T) {
	store := objects.NewStore(t.TempDir(), nil)

	base := commitAt(t, store, "base\n")
	left := commitAt(t, store, "left\n", base)
	right := commitAt(t, store, "right\n", base)
	merge := commitAt(t, store, "merge\n", left, right)

	commits, err := Log(store, merge)
	require.NoError(t, err)
	assert.Len(t, commits, 4)
}

func TestIsAncestor(t *testing.T) {
	store := objects.NewStore(t.TempDir(), nil)

	c1 := commitAt(t, store, "first\n")
	c2 := commitAt(t, store, "second\n", c1)

	ok, err := IsAncestor(store, c1, c2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsAncestor(store, c2, c1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsAncestorReflexive(t *testing.T) {
	store := objects.NewStore(t.TempDir(), nil)
	c1 := commitAt(t, store, "only\n")

	ok, err := IsAncestor(store, c1, c1)
	require.NoError(t, err)
	assert.True(t, ok)
}
