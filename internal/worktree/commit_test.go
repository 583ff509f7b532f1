package worktree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flomonster/my-git/internal/index"
	"github.com/flomonster/my-git/internal/mode"
	"github.com/flomonster/my-git/internal/objects"
)

func TestCommitNothingToCommitOnNewborn(t *testing.T) {
	_, refStore, store := newRepo(t)
	idx := index.New()

	_, err := Commit(refStore, store, idx, "A", "a@b.com", "msg\n", time.Unix(1000, 0))
	assert.ErrorIs(t, err, ErrNothingToCommit)
}

func TestCommitCreatesAndAdvancesHead(t *testing.T) {
	_, refStore, store := newRepo(t)
	idx := index.New()
	idx.Set("a.txt", mode.Regular, objects.NewBlob([]byte("a")).Hash())

	h, err := Commit(refStore, store, idx, "A", "a@b.com", "first\n", time.Unix(1000, 0))
	require.NoError(t, err)

	headHash, ok, err := refStore.Head()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, h, headHash)

	c, err := store.LoadCommit(h)
	require.NoError(t, err)
	assert.Empty(t, c.Parents)
	assert.Equal(t, "first\n", c.Message)
}

func TestCommitNothingToCommitWhenTreeUnchanged(t *testing.T) {
	_, refStore, store := newRepo(t)
	idx := index.New()
	idx.Set("a.txt", mode.Regular, objects.NewBlob([]byte("a")).Hash())

	_, err := Commit(refStore, store, idx, "A", "a@b.com", "first\n", time.Unix(1000, 0))
	require.NoError(t, err)

	_, err = Commit(refStore, store, idx, "A", "a@b.com", "second\n", time.Unix(1001, 0))
	assert.ErrorIs(t, err, ErrNothingToCommit)
}

func TestCommitSecondCommitHasParent(t *testing.T) {
	_, refStore, store := newRepo(t)
	idx := index.New()
	idx.Set("a.txt", mode.Regular, objects.NewBlob([]byte("a")).Hash())
	first, err := Commit(refStore, store, idx, "A", "a@b.com", "first\n", time.Unix(1000, 0))
	require.NoError(t, err)

	idx.Set("b.txt", mode.Regular, objects.NewBlob([]byte("b")).Hash())
	second, err := Commit(refStore, store, idx, "A", "a@b.com", "second\n", time.Unix(1001, 0))
	require.NoError(t, err)

	c, err := store.LoadCommit(second)
	require.NoError(t, err)
	require.Len(t, c.Parents, 1)
	assert.Equal(t, first, c.Parents[0])
}
