package wire

import (
	"errors"
	"io"
	"math"

	"github.com/riftlands/netcore/pkg/identity"
)

// ErrInvalidLength is returned when a decoded length prefix is negative.
var ErrInvalidLength = errors.New("wire: negative block length")

// Reader decodes values from a fixed, fully received byte range. Every
// read advances a private cursor by exactly the value's encoded width;
// reading past the end fails with io.ErrUnexpectedEOF.
//
// The Reader does not own or mutate the underlying bytes, so one range
// may back many Readers concurrently — but a single Reader's cursor must
// not be advanced from multiple goroutines.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a Reader over the given byte range.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// EOF reports whether every byte has been consumed.
func (r *Reader) EOF() bool {
	return r.pos >= len(r.buf)
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 {
		return ErrInvalidLength
	}
	if r.pos+n > len(r.buf) {
		return io.ErrUnexpectedEOF
	}
	r.pos += n
	return nil
}

// ReadUint8 reads a single unsigned byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if r.pos >= len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadInt8 reads a single signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadUint16 reads a uint16 in little-endian byte order.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := uint16(r.buf[r.pos]) | uint16(r.buf[r.pos+1])<<8
	r.pos += 2
	return v, nil
}

// ReadInt16 reads an int16 in little-endian byte order.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 reads a uint32 in little-endian byte order.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := uint32(r.buf[r.pos]) | uint32(r.buf[r.pos+1])<<8 |
		uint32(r.buf[r.pos+2])<<16 | uint32(r.buf[r.pos+3])<<24
	r.pos += 4
	return v, nil
}

// ReadInt32 reads an int32 in little-endian byte order.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads a uint64 in little-endian byte order.
func (r *Reader) ReadUint64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := uint64(r.buf[r.pos]) | uint64(r.buf[r.pos+1])<<8 |
		uint64(r.buf[r.pos+2])<<16 | uint64(r.buf[r.pos+3])<<24 |
		uint64(r.buf[r.pos+4])<<32 | uint64(r.buf[r.pos+5])<<40 |
		uint64(r.buf[r.pos+6])<<48 | uint64(r.buf[r.pos+7])<<56
	r.pos += 8
	return v, nil
}

// ReadInt64 reads an int64 in little-endian byte order.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads a float32 in IEEE 754 format (little-endian).
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads a float64 in IEEE 754 format (little-endian).
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBool reads a boolean (0x00 = false, anything else = true).
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadString reads a length-prefixed UTF-8 string. On failure the cursor
// is left where the string started, prefix included.
func (r *Reader) ReadString() (string, error) {
	start := r.pos
	length, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	n := int(length)
	if r.pos+n > len(r.buf) {
		r.pos = start
		return "", io.ErrUnexpectedEOF
	}
	s := string(r.buf[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}

// ReadBlock reads a length-prefixed opaque byte block. The returned slice
// is a copy and safe to retain. On failure the cursor is left where the
// block started, prefix included.
func (r *Reader) ReadBlock() ([]byte, error) {
	start := r.pos
	length, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if length < 0 {
		r.pos = start
		return nil, ErrInvalidLength
	}
	n := int(length)
	if r.pos+n > len(r.buf) {
		r.pos = start
		return nil, io.ErrUnexpectedEOF
	}
	b := make([]byte, n)
	copy(b, r.buf[r.pos:r.pos+n])
	r.pos += n
	return b, nil
}

// ReadID reads a packed entity identity.
func (r *Reader) ReadID() (identity.ID, error) {
	v, err := r.ReadUint64()
	return identity.ID(v), err
}
