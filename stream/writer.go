// Package stream composes the block primitive and CBC chaining into
// io.Writer and io.Reader adapters for byte streams of arbitrary
// length, with partial-block buffering and self-describing trailing
// padding. A Writer and Reader pair must be constructed with the same
// key and IV; neither is negotiated or verified in band.
package stream

import (
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/leifwalsh/tea/cbc"
	"github.com/leifwalsh/tea/cipher"
)

var (
	// ErrWriterClosed is returned by every operation after Close.
	ErrWriterClosed = errors.New("tea: writer is closed")

	// ErrPartialBlock is returned by Flush while buffered plaintext
	// does not end on a block boundary. The buffered bytes stay put;
	// the caller may keep writing to complete the block.
	ErrPartialBlock = errors.New("tea: cannot flush mid-block")

	// ErrShortClose reports ciphertext the sink refused during Close.
	// The chain has already advanced past those bytes, so they cannot
	// be regenerated; the stream is lost.
	ErrShortClose = errors.New("tea: sink refused already-encrypted bytes")
)

type flusher interface {
	Flush() error
}

// Writer encrypts bytes written to it and forwards the ciphertext to
// sink. Bytes short of a block boundary are held until more data
// arrives or Close appends the padding trailer. Writer is not safe
// for concurrent use.
type Writer struct {
	sink   io.Writer
	key    cipher.Key
	chain  *cbc.ChainState
	buf    []byte // plaintext awaiting a full block, len < BlockSize
	encBuf []byte // ciphertext the sink has not accepted yet
	closed bool
}

// NewWriter wraps sink in a Writer encrypting with key and iv.
func NewWriter(sink io.Writer, key cipher.Key, iv cipher.Block) *Writer {
	return &Writer{
		sink:   sink,
		key:    key,
		chain:  cbc.New(iv),
		buf:    make([]byte, 0, cipher.BlockSize),
		encBuf: make([]byte, 0, cipher.BlockSize),
	}
}

// step encrypts one full plaintext block into the pending buffer.
func (w *Writer) step(pt []byte) {
	var out [cipher.BlockSize]byte
	cipher.StoreBlock(out[:], w.chain.EncryptStep(w.key, cipher.LoadBlock(pt)))
	w.encBuf = append(w.encBuf, out[:]...)
}

// flushPending offers pending ciphertext to the sink. Whatever the
// sink does not take stays pending and is retried on the next call,
// never recomputed: recomputing would advance the chain twice and
// corrupt the rest of the stream. An underrun surfaces as
// io.ErrShortWrite.
func (w *Writer) flushPending() error {
	if len(w.encBuf) == 0 {
		return nil
	}
	n, err := w.sink.Write(w.encBuf)
	w.encBuf = w.encBuf[:copy(w.encBuf, w.encBuf[n:])]
	if err != nil {
		return err
	}
	if len(w.encBuf) > 0 {
		return io.ErrShortWrite
	}
	return nil
}

// Write encrypts p and forwards the ciphertext to the sink. A
// trailing fragment shorter than a block is retained for a later
// Write or Close. If the sink accepts fewer bytes than offered, Write
// reports the plaintext consumed so far together with
// io.ErrShortWrite; the unwritten ciphertext is retried on the next
// call.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrWriterClosed
	}
	if err := w.flushPending(); err != nil {
		return 0, err
	}

	written := 0
	if len(w.buf) > 0 {
		need := cipher.BlockSize - len(w.buf)
		if len(p) < need {
			w.buf = append(w.buf, p...)
			return len(p), nil
		}
		w.buf = append(w.buf, p[:need]...)
		written = need
		w.step(w.buf)
		w.buf = w.buf[:0]
		if err := w.flushPending(); err != nil {
			return written, err
		}
	}

	for len(p)-written >= cipher.BlockSize {
		w.step(p[written : written+cipher.BlockSize])
		written += cipher.BlockSize
		if err := w.flushPending(); err != nil {
			return written, err
		}
	}

	if rem := p[written:]; len(rem) > 0 {
		w.buf = append(w.buf, rem...)
		written += len(rem)
	}
	return written, nil
}

// Flush forwards pending ciphertext and, when the sink itself has a
// Flush method, the flush call. Flushing between block boundaries is
// refused with ErrPartialBlock: an incomplete block cannot be
// encrypted without padding, and padding is reserved for Close.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.flushPending(); err != nil {
		return err
	}
	if len(w.buf) > 0 {
		return fmt.Errorf("%w: %d plaintext bytes held back", ErrPartialBlock, len(w.buf))
	}
	if f, ok := w.sink.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Close encrypts the final padded block and flushes the sink. The pad
// value is 8-len(buffered), always in [1,8], so aligned input still
// gets one whole padding block and the Reader can always strip the
// trailer. Close is final whether or not it succeeds: a sink that
// refuses already-encrypted bytes here has lost them, which is
// surfaced as ErrShortClose.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}
	w.closed = true

	if err := w.flushPending(); err != nil {
		if errors.Is(err, io.ErrShortWrite) {
			return fmt.Errorf("%w: %d bytes still pending", ErrShortClose, len(w.encBuf))
		}
		return err
	}

	pad := byte(cipher.BlockSize - len(w.buf))
	for len(w.buf) < cipher.BlockSize {
		w.buf = append(w.buf, pad)
	}
	w.step(w.buf)
	w.buf = w.buf[:0]
	if err := w.flushPending(); err != nil {
		if errors.Is(err, io.ErrShortWrite) {
			return fmt.Errorf("%w: final block, %d bytes still pending", ErrShortClose, len(w.encBuf))
		}
		return err
	}
	log.Debugf("tea stream closed with %d padding bytes", pad)

	if f, ok := w.sink.(flusher); ok {
		return f.Flush()
	}
	return nil
}
