package objects

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flomonster/my-git/internal/hash"
	"github.com/flomonster/my-git/internal/mode"
)

func TestTreeHashFixtureOneFile(t *testing.T) {
	lol := NewBlob([]byte("Hey")).Hash()
	tr := NewTree()
	tr.Entries["lol"] = NewLeafEntry(mode.Regular, lol)

	h, err := tr.Hash()
	require.NoError(t, err)
	assert.Equal(t, "1953c52d154c2ae716190669a376235df8ac1cce", h.String())
}

func TestTreeHashFixtureOneSymlink(t *testing.T) {
	linkHash, err := hash.FromHex("21c7de8ba7620432e37f08e1f7fdf8f58d0b70d8")
	require.NoError(t, err)

	tr := NewTree()
	tr.Entries["lol_link"] = NewLeafEntry(mode.Symlink, linkHash)

	h, err := tr.Hash()
	require.NoError(t, err)
	assert.Equal(t, "828ed76b504d419d56d72df04c1bbb477ea69109", h.String())
}

func TestTreeHashFixtureNested(t *testing.T) {
	lol := NewBlob([]byte("Hey")).Hash()
	linkHash, err := hash.FromHex("21c7de8ba7620432e37f08e1f7fdf8f58d0b70d8")
	require.NoError(t, err)
	runSh, err := hash.FromHex("5198cfd7044a6fb8f34ba1c54be443c8ac1b0c9d")
	require.NoError(t, err)

	inner := NewTree()
	inner.Entries["lol"] = NewLeafEntry(mode.Regular, lol)

	root := NewTree()
	root.Entries["dir"] = NewDirEntry(inner)
	root.Entries["lol"] = NewLeafEntry(mode.Regular, lol)
	root.Entries["run.sh"] = NewLeafEntry(mode.Executable, runSh)
	_ = linkHash

	h, err := root.Hash()
	require.NoError(t, err)
	assert.Equal(t, "c9d0390d36023a52e95ca89ea06bbb2be7ab58ec", h.String())
}

func TestTreeBuildFromPaths(t *testing.T) {
	h1 := NewBlob([]byte("a")).Hash()
	h2 := NewBlob([]byte("b")).Hash()

	tr, err := BuildFromPaths([]PathLeaf{
		{Path: "a.txt", Mode: mode.Regular, Hash: h1},
		{Path: "dir/b.txt", Mode: mode.Regular, Hash: h2},
	})
	require.NoError(t, err)

	assert.True(t, tr.Contains("a.txt"))
	assert.True(t, tr.Contains("dir/b.txt"))
	assert.False(t, tr.Contains("dir/missing.txt"))

	entry, err := tr.GetEntry("dir/b.txt")
	require.NoError(t, err)
	assert.Equal(t, h2, entry.Hash)

	dirEntry, err := tr.GetEntry("dir")
	require.NoError(t, err)
	assert.Equal(t, EntryDirectory, dirEntry.Kind)
}

func TestTreeSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	h1, err := store.SaveBlob(NewBlob([]byte("a")))
	require.NoError(t, err)
	h2, err := store.SaveBlob(NewBlob([]byte("b")))
	require.NoError(t, err)

	tr, err := BuildFromPaths([]PathLeaf{
		{Path: "a.txt", Mode: mode.Regular, Hash: h1},
		{Path: "sub/b.txt", Mode: mode.Executable, Hash: h2},
	})
	require.NoError(t, err)

	treeHash, err := store.SaveTree(tr)
	require.NoError(t, err)

	loaded, err := store.LoadTree(treeHash)
	require.NoError(t, err)
	assert.True(t, tr.Equal(loaded))
}

func TestApplyMaterializesAndDeletes(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	hA, err := store.SaveBlob(NewBlob([]byte("A")))
	require.NoError(t, err)
	hB, err := store.SaveBlob(NewBlob([]byte("B")))
	require.NoError(t, err)

	oldTree, err := BuildFromPaths([]PathLeaf{{Path: "old.txt", Mode: mode.Regular, Hash: hA}})
	require.NoError(t, err)
	newTree, err := BuildFromPaths([]PathLeaf{{Path: "new/nested.txt", Mode: mode.Regular, Hash: hB}})
	require.NoError(t, err)

	updated := map[string]bool{}
	removed := map[string]bool{}

	opts := ApplyOptions{
		WorkDir: dir,
		UpdateIndexEntry: func(path string, m mode.Mode, h hash.Hash) {
			updated[path] = true
		},
		RemoveIndexPrefix: func(path string) {
			removed[path] = true
		},
		LoadBlobData: func(h hash.Hash) ([]byte, error) {
			b, err := store.LoadBlob(h)
			if err != nil {
				return nil, err
			}
			return b.Data, nil
		},
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.txt"), []byte("A"), 0o644))

	err = Apply(oldTree, newTree, "", opts)
	require.NoError(t, err)

	assert.True(t, updated["new/nested.txt"])
	assert.True(t, removed["old.txt"])

	data, err := os.ReadFile(filepath.Join(dir, "new", "nested.txt"))
	require.NoError(t, err)
	assert.Equal(t, "B", string(data))

	_, statErr := os.Stat(filepath.Join(dir, "old.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
