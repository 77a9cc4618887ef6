package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/leifwalsh/tea/cbc"
	"github.com/leifwalsh/tea/cipher"
)

// ErrMalformed is returned when the ciphertext cannot have been
// produced by a Writer: its length is not a multiple of the block
// size, or the padding trailer is out of range. Decryption does not
// recover from it.
var ErrMalformed = errors.New("tea: malformed ciphertext")

// Reader decrypts bytes pulled from source. The ciphertext must be a
// whole number of blocks with the Writer's padding trailer in the
// last one. Reader is not safe for concurrent use.
type Reader struct {
	source io.Reader
	key    cipher.Key
	chain  *cbc.ChainState

	out      []byte                 // decrypted bytes ready for the caller
	held     [cipher.BlockSize]byte // last decrypted block, finality unknown
	haveHeld bool
	done     bool // source exhausted, padding stripped
	err      error
}

// NewReader wraps source in a Reader decrypting with key and iv. They
// must match the Writer's exactly; a mismatch is undetectable and
// yields garbage.
func NewReader(source io.Reader, key cipher.Key, iv cipher.Block) *Reader {
	return &Reader{
		source: source,
		key:    key,
		chain:  cbc.New(iv),
	}
}

// fill reads and decrypts the next ciphertext block. The previously
// decrypted block is released to the drain buffer only once another
// block (or a clean end of stream) proves it is not the padded
// trailer, so padding is never stripped from an intermediate block.
func (r *Reader) fill() error {
	var blk [cipher.BlockSize]byte
	n, err := io.ReadFull(r.source, blk[:])
	switch {
	case err == io.EOF:
		return r.finish()
	case err == io.ErrUnexpectedEOF:
		return fmt.Errorf("%w: trailing %d-byte fragment, length must be a multiple of %d",
			ErrMalformed, n, cipher.BlockSize)
	case err != nil:
		return err
	}

	if r.haveHeld {
		r.out = append(r.out, r.held[:]...)
	}
	cipher.StoreBlock(r.held[:], r.chain.DecryptStep(r.key, cipher.LoadBlock(blk[:])))
	r.haveHeld = true
	return nil
}

// finish strips the self-describing padding from the final block. The
// trailer byte counts the padding, so pad must land in [1,8] and only
// the first 8-pad bytes of the block are plaintext.
func (r *Reader) finish() error {
	r.done = true
	if !r.haveHeld {
		// Source was empty: nothing was ever encrypted.
		return nil
	}
	pad := int(r.held[cipher.BlockSize-1])
	if pad < 1 || pad > cipher.BlockSize {
		return fmt.Errorf("%w: padding byte %d outside [1,%d]", ErrMalformed, pad, cipher.BlockSize)
	}
	r.out = append(r.out, r.held[:cipher.BlockSize-pad]...)
	r.haveHeld = false
	return nil
}

// Read decrypts into p, pulling ciphertext from the source as needed.
// Surplus decrypted bytes are retained for the next call. Errors are
// sticky: once the stream has failed, every later Read reports the
// same error.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}

	pos := 0
	for pos < len(p) {
		if len(r.out) > 0 {
			n := copy(p[pos:], r.out)
			pos += n
			r.out = r.out[n:]
			continue
		}
		if r.done {
			break
		}
		if err := r.fill(); err != nil {
			r.err = err
			break
		}
	}

	if pos > 0 {
		return pos, nil
	}
	if r.err != nil {
		return 0, r.err
	}
	if r.done {
		r.err = io.EOF
		return 0, io.EOF
	}
	return 0, nil
}
