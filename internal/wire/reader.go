// Package wire reads and writes the engine's little-endian byte buffers.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer is reported when a read runs past the end of the buffer.
var ErrShortBuffer = errors.New("wire: read past end of buffer")

// Reader is a cursor over a borrowed byte slice. The first out-of-bounds
// read sets a sticky error; later reads return zero values and leave the
// cursor where it was.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a Reader positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Reset points the reader at a new buffer and clears any error.
func (r *Reader) Reset(b []byte) {
	r.buf = b
	r.off = 0
	r.err = nil
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.off, len(r.buf)-r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// U8 reads one byte.
func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// I32 reads a little-endian int32.
func (r *Reader) I32() int32 {
	return int32(r.U32())
}

// Bool reads one byte and reports whether it is non-zero.
func (r *Reader) Bool() bool {
	return r.U8() != 0
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) {
	r.take(n)
}

// SkipToEnd moves the cursor to the end of the buffer.
func (r *Reader) SkipToEnd() {
	if r.err == nil {
		r.off = len(r.buf)
	}
}

// Offset returns the cursor position.
func (r *Reader) Offset() int { return r.off }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.off }

// Done reports whether the cursor sits exactly at the end of the buffer.
func (r *Reader) Done() bool { return r.off == len(r.buf) }

// Err returns the first read error, if any.
func (r *Reader) Err() error { return r.err }
