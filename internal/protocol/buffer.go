package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// Writer accumulates a payload with the protocol's little-endian primitive
// encoding: fixed-width integers, u32-length-prefixed strings and byte
// blocks, u32-count-prefixed sequences.
type Writer struct {
	buf []byte
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Uint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) Int64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// String writes a u32 length prefix followed by the raw UTF-8 bytes.
func (w *Writer) String(s string) {
	w.Uint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// Block writes a u32 byte-length prefix followed by b. Nested composite
// elements are framed this way so readers can skip unknown trailing fields.
func (w *Writer) Block(b []byte) {
	w.Uint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// Count writes a sequence element count.
func (w *Writer) Count(n int) {
	w.Uint32(uint32(n))
}

// Reader decodes a payload written by Writer. It carries a sticky error:
// after the first failure every accessor returns a zero value and Err()
// reports the failure, so call sites can decode a whole struct and check
// once.
type Reader struct {
	data []byte
	pos  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Err returns the first decoding error, if any.
func (r *Reader) Err() error { return r.err }

// Remaining reports how many bytes are left.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) fail(what string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: reading %s at offset %d", common.ErrBufferUnderflow, what, r.pos)
	}
}

func (r *Reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.fail(what)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) Uint16() uint16 {
	b := r.take(2, "u16")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) Uint32() uint32 {
	b := r.take(4, "u32")
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) Int64() int64 {
	b := r.take(8, "i64")
	if b == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b))
}

func (r *Reader) String() string {
	n := r.Uint32()
	b := r.take(int(n), "string")
	if b == nil {
		return ""
	}
	return string(b)
}

// Block reads a u32-length-prefixed byte block.
func (r *Reader) Block() []byte {
	n := r.Uint32()
	return r.take(int(n), "block")
}

// Count reads a sequence element count. The count is validated against the
// remaining payload so a corrupt frame cannot force a huge allocation: every
// element carries at least a 4-byte prefix.
func (r *Reader) Count() int {
	n := int(r.Uint32())
	if r.err == nil && n*4 > r.Remaining() {
		r.fail("sequence count")
		return 0
	}
	return n
}
