package cipher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadStoreBlock(t *testing.T) {
	p := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	b := LoadBlock(p)
	require.Equal(t, Block{0x04030201, 0x08070605}, b)

	out := make([]byte, BlockSize)
	StoreBlock(out, b)
	require.Equal(t, p, out)
}

func TestKeyFromBytes(t *testing.T) {
	raw := []byte{
		0x01, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
		0x03, 0x00, 0x00, 0x00,
		0x04, 0x00, 0x00, 0x00,
	}
	k, err := KeyFromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, Key{1, 2, 3, 4}, k)

	for _, n := range []int{0, 8, 15, 17, 32} {
		_, err := KeyFromBytes(make([]byte, n))
		require.Equal(t, KeySizeError(n), err)
	}
}

func TestIVFromBytes(t *testing.T) {
	iv, err := IVFromBytes([]byte{5, 0, 0, 0, 6, 0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, Block{5, 6}, iv)

	_, err = IVFromBytes(make([]byte, 7))
	require.Equal(t, IVSizeError(7), err)
}

func TestSizeErrorStrings(t *testing.T) {
	require.Equal(t, "tea: invalid key size 5", KeySizeError(5).Error())
	require.Equal(t, "tea: invalid IV size 9", IVSizeError(9).Error())
}
