package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumAndHex(t *testing.T) {
	h := Sum([]byte("blob 3\x00Hey"))
	assert.Equal(t, "63cd04a52f5c8cb95686081b000223e968ed74f4", h.String())

	back, err := FromHex(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, back)
}

func TestFromHexInvalid(t *testing.T) {
	_, err := FromHex("not-a-hash")
	assert.Error(t, err)

	_, err = FromHex("abcd")
	assert.Error(t, err)
}

func TestFromBytesInvalid(t *testing.T) {
	_, err := FromBytes([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestCompareOrdering(t *testing.T) {
	a, _ := FromHex("000000000000000000000000000000000000000a")
	b, _ := FromHex("000000000000000000000000000000000000000b")
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.Equal(t, 0, a.Compare(a))
}

func TestZero(t *testing.T) {
	var h Hash
	assert.True(t, h.IsZero())
	assert.False(t, Sum([]byte("x")).IsZero())
}
