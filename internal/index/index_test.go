package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flomonster/my-git/internal/mode"
	"github.com/flomonster/my-git/internal/objects"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := New()
	idx.Set("a.txt", mode.Regular, objects.NewBlob([]byte("a")).Hash())
	idx.Set("dir/b.txt", mode.Executable, objects.NewBlob([]byte("b")).Hash())
	idx.Set("a link", mode.Symlink, objects.NewBlob([]byte("target")).Hash())

	path := filepath.Join(t.TempDir(), "index")
	require.NoError(t, idx.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, idx.Equal(loaded))
}

func TestLoadMissingIndexIsEmpty(t *testing.T) {
	idx, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}

func TestContainsDir(t *testing.T) {
	idx := New()
	idx.Set("dir/a.txt", mode.Regular, objects.NewBlob([]byte("a")).Hash())
	assert.True(t, idx.ContainsDir("dir"))
	assert.False(t, idx.ContainsDir("other"))
}

func TestRemovePrefix(t *testing.T) {
	idx := New()
	idx.Set("dir/a.txt", mode.Regular, objects.NewBlob([]byte("a")).Hash())
	idx.Set("dir/b.txt", mode.Regular, objects.NewBlob([]byte("b")).Hash())
	idx.Set("other.txt", mode.Regular, objects.NewBlob([]byte("c")).Hash())

	idx.RemovePrefix("dir")
	assert.Equal(t, 1, idx.Len())
	_, ok := idx.Get("other.txt")
	assert.True(t, ok)
}

func TestAddRecursesDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("A"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("B"), 0o644))

	idx := New()
	store := objects.NewStore(filepath.Join(root, ".my_git"), nil)

	err := Add(idx, store, root, root, false, nil)
	require.NoError(t, err)

	_, ok := idx.Get("a.txt")
	assert.True(t, ok)
	_, ok = idx.Get("sub/b.txt")
	assert.True(t, ok)
}

func TestAddRejectsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	idx := New()
	store := objects.NewStore(filepath.Join(root, ".my_git"), nil)

	err := Add(idx, store, root, outside, false, nil)
	assert.Error(t, err)
}

type denyAll struct{}

func (denyAll) Match(string) bool { return true }

func TestAddIgnoredWithoutForce(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("s"), 0o644))

	idx := New()
	store := objects.NewStore(filepath.Join(root, ".my_git"), nil)

	err := Add(idx, store, root, filepath.Join(root, "secret.txt"), false, denyAll{})
	require.Error(t, err)
	var ignoredErr *IgnoredPathsError
	require.ErrorAs(t, err, &ignoredErr)
	assert.Equal(t, []string{"secret.txt"}, ignoredErr.Paths)

	err = Add(idx, store, root, filepath.Join(root, "secret.txt"), true, denyAll{})
	require.NoError(t, err)
	_, ok := idx.Get("secret.txt")
	assert.True(t, ok)
}

func TestAddSymlink(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0o644))
	linkPath := filepath.Join(root, "link")
	require.NoError(t, os.Symlink("target.txt", linkPath))

	idx := New()
	store := objects.NewStore(filepath.Join(root, ".my_git"), nil)
	require.NoError(t, Add(idx, store, root, linkPath, false, nil))

	entry, ok := idx.Get("link")
	require.True(t, ok)
	assert.Equal(t, mode.Symlink, entry.Mode)
}

func TestBuildTree(t *testing.T) {
	idx := New()
	idx.Set("a.txt", mode.Regular, objects.NewBlob([]byte("a")).Hash())
	idx.Set("dir/b.txt", mode.Regular, objects.NewBlob([]byte("b")).Hash())

	tr, err := idx.BuildTree()
	require.NoError(t, err)
	assert.True(t, tr.Contains("a.txt"))
	assert.True(t, tr.Contains("dir/b.txt"))
}
