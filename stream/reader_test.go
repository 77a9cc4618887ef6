package stream

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"

	"github.com/leifwalsh/tea/cbc"
	"github.com/leifwalsh/tea/cipher"
)

func sequence(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i)
	}
	return p
}

func TestRoundTripChunked(t *testing.T) {
	pt := sequence(128)
	for chunk := 1; chunk <= 65; chunk++ {
		ct := encryptAll(t, pt, chunk)
		require.Len(t, ct, len(pt)+cipher.BlockSize, "chunk size %d", chunk)
		require.NotEqual(t, pt, ct[:len(pt)])
		require.Equal(t, pt, decryptAll(t, ct), "chunk size %d", chunk)
	}
}

func TestReadSmallBuffers(t *testing.T) {
	pt := sequence(128)
	ct := encryptAll(t, pt, 8)
	for _, size := range []int{1, 3, 7, 8, 13, 64, 200} {
		r := NewReader(bytes.NewReader(ct), testKey, testIV)
		var got []byte
		buf := make([]byte, size)
		for {
			n, err := r.Read(buf)
			got = append(got, buf[:n]...)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
		}
		require.Equal(t, pt, got, "read buffer size %d", size)
	}
}

func TestDribblingSource(t *testing.T) {
	// An io.Reader may legally deliver one byte at a time; only the
	// total length has to be block aligned.
	pt := sequence(50)
	ct := encryptAll(t, pt, 8)
	r := NewReader(iotest.OneByteReader(bytes.NewReader(ct)), testKey, testIV)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, pt, got)
}

func TestTruncatedCiphertext(t *testing.T) {
	ct := encryptAll(t, sequence(16), 8)
	r := NewReader(bytes.NewReader(ct[:len(ct)-3]), testKey, testIV)
	_, err := io.ReadAll(r)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestBadPadding(t *testing.T) {
	for _, trailer := range []byte{0, 9, 0xff} {
		chain := cbc.New(testIV)
		var blk [cipher.BlockSize]byte
		blk[cipher.BlockSize-1] = trailer
		ct := make([]byte, cipher.BlockSize)
		cipher.StoreBlock(ct, chain.EncryptStep(testKey, cipher.LoadBlock(blk[:])))

		r := NewReader(bytes.NewReader(ct), testKey, testIV)
		_, err := io.ReadAll(r)
		require.ErrorIs(t, err, ErrMalformed, "trailer %d", trailer)
	}
}

func TestAllPadValuesStrip(t *testing.T) {
	// Plaintext lengths 0..8 sweep the pad value through 8..1 and
	// back to 8 for the aligned case.
	for n := 0; n <= 8; n++ {
		pt := sequence(n)
		ct := encryptAll(t, pt, 8)
		require.Equal(t, pt, decryptAll(t, ct), "plaintext length %d", n)
	}
}

func TestEmptySource(t *testing.T) {
	r := NewReader(bytes.NewReader(nil), testKey, testIV)
	n, err := r.Read(make([]byte, 8))
	require.Zero(t, n)
	require.ErrorIs(t, err, io.EOF)
}

func TestErrorIsSticky(t *testing.T) {
	r := NewReader(bytes.NewReader(make([]byte, 5)), testKey, testIV)
	_, err1 := r.Read(make([]byte, 4))
	require.ErrorIs(t, err1, ErrMalformed)
	_, err2 := r.Read(make([]byte, 4))
	require.Equal(t, err1, err2)
}

func TestPaddingNeverStrippedEarly(t *testing.T) {
	// A mid-stream block ending in a plausible pad byte must come
	// through intact; only the genuinely final block is a trailer.
	pt := append(bytes.Repeat([]byte{3}, 8), sequence(24)...)
	ct := encryptAll(t, pt, 8)
	require.Equal(t, pt, decryptAll(t, ct))
}
