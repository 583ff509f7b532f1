package worktree

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/index"
	"github.com/flomonster/my-git/internal/mode"
	"github.com/flomonster/my-git/internal/objects"
	"github.com/flomonster/my-git/internal/refs"
)

func newRepo(t *testing.T) (string, *refs.Store, *objects.Store) {
	t.Helper()
	root := t.TempDir()
	gitDir := filepath.Join(root, ".my_git")
	require.NoError(t, os.MkdirAll(filepath.Join(gitDir, "refs", "heads"), 0o755))
	refStore := refs.New(gitDir, nil)
	require.NoError(t, refStore.SetSymbolic("HEAD", "refs/heads/master"))
	store := objects.NewStore(gitDir, nil)
	return root, refStore, store
}

func commitTree(t *testing.T, store *objects.Store, refStore *refs.Store, branch string, leaves []objects.PathLeaf, parent hash.Hash) hash.Hash {
	t.Helper()
	tr, err := objects.BuildFromPaths(leaves)
	require.NoError(t, err)
	treeHash, err := store.SaveTree(tr)
	require.NoError(t, err)

	sig := objects.Signature{Name: "A", Email: "a@b.com", When: time.Unix(1000, 0).UTC()}
	c := &objects.Commit{TreeHash: treeHash, Author: sig, Committer: sig, Message: "msg\n"}
	if !parent.IsZero() {
		c.Parents = []hash.Hash{parent}
	}
	h, err := store.SaveCommit(c)
	require.NoError(t, err)
	require.NoError(t, refStore.UpdateHash(refs.BranchRef(branch), h, false))
	return h
}

func TestCreateBranchRequiresHead(t *testing.T) {
	_, refStore, _ := newRepo(t)
	err := CreateBranch(refStore, "feature", false)
	assert.ErrorIs(t, err, ErrNoHeadCommit)
}

func TestCreateBranchAtHead(t *testing.T) {
	_, refStore, store := newRepo(t)
	h := commitTree(t, store, refStore, "master", []objects.PathLeaf{{Path: "a.txt", Mode: mode.Regular, Hash: objects.NewBlob([]byte("a")).Hash()}}, hash.Zero)
	require.NoError(t, refStore.UpdateHash("HEAD", h, true))

	require.NoError(t, CreateBranch(refStore, "feature", false))

	resolved, err := refStore.Resolve(refs.BranchRef("feature"))
	require.NoError(t, err)
	assert.Equal(t, h, resolved)
}

func TestCreateBranchExists(t *testing.T) {
	_, refStore, store := newRepo(t)
	h := commitTree(t, store, refStore, "master", nil, hash.Zero)
	require.NoError(t, refStore.UpdateHash("HEAD", h, true))
	require.NoError(t, CreateBranch(refStore, "feature", false))

	err := CreateBranch(refStore, "feature", false)
	assert.ErrorIs(t, err, ErrBranchExists)
}

func TestDeleteBranchCurrent(t *testing.T) {
	_, refStore, store := newRepo(t)
	h := commitTree(t, store, refStore, "master", nil, hash.Zero)
	require.NoError(t, refStore.UpdateHash("HEAD", h, true))

	err := DeleteBranch(refStore, store, "master", false)
	assert.ErrorIs(t, err, ErrBranchIsCurrent)
}

func TestDeleteBranchNotMerged(t *testing.T) {
	_, refStore, store := newRepo(t)
	base := commitTree(t, store, refStore, "master", nil, hash.Zero)
	require.NoError(t, refStore.UpdateHash("HEAD", base, true))
	require.NoError(t, CreateBranch(refStore, "feature", false))

	ahead := commitTree(t, store, refStore, "feature", []objects.PathLeaf{{Path: "x.txt", Mode: mode.Regular, Hash: objects.NewBlob([]byte("x")).Hash()}}, base)
	_ = ahead

	err := DeleteBranch(refStore, store, "feature", false)
	assert.ErrorIs(t, err, ErrBranchNotMerged)

	require.NoError(t, DeleteBranch(refStore, store, "feature", true))
}

func TestSwitchMaterializesTargetTree(t *testing.T) {
	root, refStore, store := newRepo(t)
	hA, err := store.SaveBlob(objects.NewBlob([]byte("A")))
	require.NoError(t, err)

	base := commitTree(t, store, refStore, "master", []objects.PathLeaf{{Path: "base.txt", Mode: mode.Regular, Hash: hA}}, hash.Zero)
	require.NoError(t, refStore.UpdateHash("HEAD", base, true))

	idx := index.New()
	idx.Set("base.txt", mode.Regular, hA)
	indexPath := filepath.Join(root, ".my_git", "index")
	require.NoError(t, idx.Save(indexPath))
	require.NoError(t, os.WriteFile(filepath.Join(root, "base.txt"), []byte("A"), 0o644))

	require.NoError(t, CreateBranch(refStore, "feature", false))
	hB, err := store.SaveBlob(objects.NewBlob([]byte("B")))
	require.NoError(t, err)
	commitTree(t, store, refStore, "feature", []objects.PathLeaf{{Path: "feature.txt", Mode: mode.Regular, Hash: hB}}, base)

	require.NoError(t, Switch(root, refStore, store, idx, indexPath, "feature", false, false))

	data, err := os.ReadFile(filepath.Join(root, "feature.txt"))
	require.NoError(t, err)
	assert.Equal(t, "B", string(data))

	_, statErr := os.Stat(filepath.Join(root, "base.txt"))
	assert.True(t, os.IsNotExist(statErr))

	branch, symbolic, err := refStore.CurrentBranch()
	require.NoError(t, err)
	assert.True(t, symbolic)
	assert.Equal(t, "feature", branch)
}
