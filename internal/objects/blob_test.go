package objects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flomonster/my-git/internal/hash"
)

func TestBlobHashFixture(t *testing.T) {
	b := NewBlob([]byte("Hey"))
	assert.Equal(t, "63cd04a52f5c8cb95686081b000223e968ed74f4", b.Hash().String())
}

func TestBlobRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	b := NewBlob([]byte("hello world"))
	h, err := store.SaveBlob(b)
	require.NoError(t, err)

	loaded, err := store.LoadBlob(h)
	require.NoError(t, err)
	assert.Equal(t, b.Data, loaded.Data)
}

func TestBlobSaveIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)
	b := NewBlob([]byte("same content"))

	h1, err := store.SaveBlob(b)
	require.NoError(t, err)
	h2, err := store.SaveBlob(b)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestLoadMissingBlob(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)
	missing, err := hash.FromHex("0000000000000000000000000000000000000000")
	require.NoError(t, err)
	_, err = store.LoadBlob(missing)
	assert.Error(t, err)
}
