package wire

import (
	"errors"
	"math"
	"sync"

	"github.com/riftlands/netcore/pkg/identity"
)

// MaxStringLen is the largest UTF-8 byte length a string encoding can
// carry. It is a hard protocol limit, not a soft truncation point.
const MaxStringLen = math.MaxUint16

// ErrStringTooLong is returned when a string's UTF-8 byte length exceeds
// MaxStringLen.
var ErrStringTooLong = errors.New("wire: string exceeds 65535 bytes")

// MaxBlockLen is the largest byte count a block encoding can carry; the
// prefix is a signed 32-bit length.
const MaxBlockLen = math.MaxInt32

// ErrBlockTooLong is returned when a block's byte length exceeds
// MaxBlockLen.
var ErrBlockTooLong = errors.New("wire: block exceeds 2147483647 bytes")

var writerPool = sync.Pool{
	New: func() any {
		return &Writer{buf: make([]byte, 0, 256)}
	},
}

// Writer encodes values into a growable buffer. Every write appends at
// the cursor and advances it by exactly the value's encoded width.
//
// Writers are pooled: obtain one with NewWriter, hand its Bytes to the
// transport, then Close it to return the buffer for reuse. A Writer is
// not safe for concurrent use.
type Writer struct {
	buf    []byte
	closed bool
}

// NewWriter returns a Writer drawn from the shared pool, rewound to
// empty.
func NewWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.buf = w.buf[:0]
	w.closed = false
	return w
}

// Close returns the Writer's buffer to the pool. The Writer and any slice
// previously returned by Bytes must not be used afterwards.
func (w *Writer) Close() {
	if w.closed {
		return
	}
	w.closed = true
	writerPool.Put(w)
}

// Reset rewinds the cursor to zero without discarding buffer capacity.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// Bytes returns the encoded bytes. The slice is valid until the next
// write, Reset, or Close.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes encoded so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteUint8 appends a single unsigned byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteInt8 appends a single signed byte.
func (w *Writer) WriteInt8(v int8) {
	w.buf = append(w.buf, byte(v))
}

// WriteUint16 appends a uint16 in little-endian byte order.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = append(w.buf, byte(v), byte(v>>8))
}

// WriteInt16 appends an int16 in little-endian byte order.
func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

// WriteUint32 appends a uint32 in little-endian byte order.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteInt32 appends an int32 in little-endian byte order.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint64 appends a uint64 in little-endian byte order.
func (w *Writer) WriteUint64(v uint64) {
	w.buf = append(w.buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

// WriteInt64 appends an int64 in little-endian byte order.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteFloat32 appends a float32 in IEEE 754 format (little-endian).
func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 appends a float64 in IEEE 754 format (little-endian).
func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteBool appends a boolean as a single byte (0x00 or 0x01).
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 0x01)
	} else {
		w.buf = append(w.buf, 0x00)
	}
}

// WriteString appends a length-prefixed UTF-8 string: a uint16 byte count
// followed by the bytes. The empty string encodes as a zero prefix with
// no following bytes. Strings longer than MaxStringLen fail with
// ErrStringTooLong and write nothing.
func (w *Writer) WriteString(s string) error {
	if len(s) > MaxStringLen {
		return ErrStringTooLong
	}
	w.WriteUint16(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// WriteBlock appends a length-prefixed opaque byte block: an int32 length
// followed by the raw bytes. A nil or empty block encodes as a zero
// prefix. Blocks longer than MaxBlockLen fail with ErrBlockTooLong and
// write nothing.
func (w *Writer) WriteBlock(b []byte) error {
	if len(b) > MaxBlockLen {
		return ErrBlockTooLong
	}
	w.WriteInt32(int32(len(b)))
	w.buf = append(w.buf, b...)
	return nil
}

// WriteID appends a packed entity identity as a plain uint64.
func (w *Writer) WriteID(id identity.ID) {
	w.WriteUint64(id.Uint64())
}
