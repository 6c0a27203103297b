package wire

import (
	"bytes"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/riftlands/netcore/pkg/identity"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	defer w.Close()

	w.WriteUint8(0x42)
	w.WriteInt8(-7)
	w.WriteUint16(0x1234)
	w.WriteInt16(-1234)
	w.WriteUint32(0x12345678)
	w.WriteInt32(-12345678)
	w.WriteUint64(0x123456789ABCDEF0)
	w.WriteInt64(-123456789012345)
	w.WriteFloat32(3.14159)
	w.WriteFloat64(2.718281828459045)
	w.WriteBool(true)
	w.WriteBool(false)
	if err := w.WriteString("hello world"); err != nil {
		t.Fatalf("WriteString() error: %v", err)
	}
	w.WriteBlock([]byte{0xDE, 0xAD, 0xBE, 0xEF})

	r := NewReader(w.Bytes())

	if v, err := r.ReadUint8(); err != nil || v != 0x42 {
		t.Errorf("ReadUint8() = %x, %v; want 0x42, nil", v, err)
	}
	if v, err := r.ReadInt8(); err != nil || v != -7 {
		t.Errorf("ReadInt8() = %d, %v; want -7, nil", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 0x1234 {
		t.Errorf("ReadUint16() = %x, %v; want 0x1234, nil", v, err)
	}
	if v, err := r.ReadInt16(); err != nil || v != -1234 {
		t.Errorf("ReadInt16() = %d, %v; want -1234, nil", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0x12345678 {
		t.Errorf("ReadUint32() = %x, %v; want 0x12345678, nil", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -12345678 {
		t.Errorf("ReadInt32() = %d, %v; want -12345678, nil", v, err)
	}
	if v, err := r.ReadUint64(); err != nil || v != 0x123456789ABCDEF0 {
		t.Errorf("ReadUint64() = %x, %v; want 0x123456789ABCDEF0, nil", v, err)
	}
	if v, err := r.ReadInt64(); err != nil || v != -123456789012345 {
		t.Errorf("ReadInt64() = %d, %v; want -123456789012345, nil", v, err)
	}
	if v, err := r.ReadFloat32(); err != nil || v != 3.14159 {
		t.Errorf("ReadFloat32() = %v, %v; want 3.14159, nil", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != 2.718281828459045 {
		t.Errorf("ReadFloat64() = %v, %v; want 2.718281828459045, nil", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v != true {
		t.Errorf("ReadBool() = %v, %v; want true, nil", v, err)
	}
	if v, err := r.ReadBool(); err != nil || v != false {
		t.Errorf("ReadBool() = %v, %v; want false, nil", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "hello world" {
		t.Errorf("ReadString() = %q, %v; want \"hello world\", nil", v, err)
	}
	if v, err := r.ReadBlock(); err != nil || !bytes.Equal(v, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("ReadBlock() = %x, %v; want deadbeef, nil", v, err)
	}
	if !r.EOF() {
		t.Errorf("EOF() = false with %d bytes remaining", r.Remaining())
	}
}

func TestBoundaryValues(t *testing.T) {
	w := NewWriter()
	defer w.Close()

	w.WriteUint8(0)
	w.WriteUint8(math.MaxUint8)
	w.WriteInt8(math.MinInt8)
	w.WriteInt8(math.MaxInt8)
	w.WriteUint16(math.MaxUint16)
	w.WriteInt16(math.MinInt16)
	w.WriteUint32(math.MaxUint32)
	w.WriteInt32(math.MinInt32)
	w.WriteUint64(math.MaxUint64)
	w.WriteInt64(math.MinInt64)
	w.WriteInt64(-1)
	w.WriteFloat32(math.MaxFloat32)
	w.WriteFloat64(math.SmallestNonzeroFloat64)

	r := NewReader(w.Bytes())

	checks := []struct {
		name string
		read func() (any, error)
		want any
	}{
		{"uint8 zero", func() (any, error) { return r.ReadUint8() }, uint8(0)},
		{"uint8 max", func() (any, error) { return r.ReadUint8() }, uint8(math.MaxUint8)},
		{"int8 min", func() (any, error) { return r.ReadInt8() }, int8(math.MinInt8)},
		{"int8 max", func() (any, error) { return r.ReadInt8() }, int8(math.MaxInt8)},
		{"uint16 max", func() (any, error) { return r.ReadUint16() }, uint16(math.MaxUint16)},
		{"int16 min", func() (any, error) { return r.ReadInt16() }, int16(math.MinInt16)},
		{"uint32 max", func() (any, error) { return r.ReadUint32() }, uint32(math.MaxUint32)},
		{"int32 min", func() (any, error) { return r.ReadInt32() }, int32(math.MinInt32)},
		{"uint64 max", func() (any, error) { return r.ReadUint64() }, uint64(math.MaxUint64)},
		{"int64 min", func() (any, error) { return r.ReadInt64() }, int64(math.MinInt64)},
		{"int64 minus one", func() (any, error) { return r.ReadInt64() }, int64(-1)},
		{"float32 max", func() (any, error) { return r.ReadFloat32() }, float32(math.MaxFloat32)},
		{"float64 smallest", func() (any, error) { return r.ReadFloat64() }, math.SmallestNonzeroFloat64},
	}
	for _, c := range checks {
		got, err := c.read()
		if err != nil {
			t.Fatalf("%s: error %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: got %v; want %v", c.name, got, c.want)
		}
	}
}

func TestLittleEndianLayout(t *testing.T) {
	w := NewWriter()
	defer w.Close()

	w.WriteUint16(0x1122)
	w.WriteUint32(0x11223344)
	w.WriteUint64(0x1122334455667788)

	want := []byte{
		0x22, 0x11,
		0x44, 0x33, 0x22, 0x11,
		0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("layout = %x; want %x", w.Bytes(), want)
	}
}

func TestStringLengthGuard(t *testing.T) {
	w := NewWriter()
	defer w.Close()

	// Exactly the cap succeeds.
	max := strings.Repeat("a", MaxStringLen)
	if err := w.WriteString(max); err != nil {
		t.Fatalf("WriteString(65535 bytes) error: %v", err)
	}

	// One byte over fails, and fails before writing anything.
	mark := w.Len()
	if err := w.WriteString(max + "a"); !errors.Is(err, ErrStringTooLong) {
		t.Errorf("WriteString(65536 bytes) error = %v; want ErrStringTooLong", err)
	}
	if w.Len() != mark {
		t.Errorf("oversized WriteString advanced the cursor by %d bytes", w.Len()-mark)
	}

	r := NewReader(w.Bytes())
	got, err := r.ReadString()
	if err != nil || got != max {
		t.Errorf("ReadString() round-trip failed at the cap: err=%v len=%d", err, len(got))
	}
}

func TestEmptyStringAndBlock(t *testing.T) {
	w := NewWriter()
	defer w.Close()

	if err := w.WriteString(""); err != nil {
		t.Fatalf("WriteString(\"\") error: %v", err)
	}
	w.WriteBlock(nil)

	// Zero prefixes only: 2 bytes + 4 bytes.
	if w.Len() != 6 {
		t.Errorf("encoded length = %d; want 6", w.Len())
	}

	r := NewReader(w.Bytes())
	if s, err := r.ReadString(); err != nil || s != "" {
		t.Errorf("ReadString() = %q, %v; want \"\", nil", s, err)
	}
	if b, err := r.ReadBlock(); err != nil || len(b) != 0 {
		t.Errorf("ReadBlock() = %v, %v; want empty, nil", b, err)
	}
}

func TestReadPastEnd(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})

	if _, err := r.ReadUint32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadUint32() on 2 bytes: err = %v; want ErrUnexpectedEOF", err)
	}
	// The failed read must not move the cursor.
	if r.Remaining() != 2 {
		t.Errorf("failed read consumed bytes: Remaining() = %d", r.Remaining())
	}
	if v, err := r.ReadUint16(); err != nil || v != 0x0201 {
		t.Errorf("ReadUint16() = %x, %v; want 0x0201, nil", v, err)
	}
	if _, err := r.ReadUint8(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadUint8() at EOF: err = %v; want ErrUnexpectedEOF", err)
	}
}

func TestTruncatedString(t *testing.T) {
	// Prefix declares 5 bytes, only 2 follow.
	r := NewReader([]byte{0x05, 0x00, 'h', 'i'})
	if _, err := r.ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadString() error = %v; want ErrUnexpectedEOF", err)
	}
	// The cursor is restored so the prefix can be re-read once the rest
	// of the payload arrives.
	if got := r.Remaining(); got != 4 {
		t.Errorf("Remaining() after failed ReadString = %d; want 4", got)
	}
}

func TestTruncatedBlockRestoresCursor(t *testing.T) {
	// Prefix declares 8 bytes, only 3 follow.
	r := NewReader([]byte{0x08, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03})
	if _, err := r.ReadBlock(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadBlock() error = %v; want ErrUnexpectedEOF", err)
	}
	if got := r.Remaining(); got != 7 {
		t.Errorf("Remaining() after failed ReadBlock = %d; want 7", got)
	}
}

func TestBlockLengthGuard(t *testing.T) {
	if ^uint(0)>>32 == 0 {
		t.Skip("needs a 64-bit platform to build an over-length slice")
	}

	w := NewWriter()
	defer w.Close()
	w.WriteUint8(0x7F)
	mark := w.Len()

	// The guard fires on the length alone; the bytes are never touched,
	// so the kernel never commits pages for this slice.
	n := MaxBlockLen
	huge := make([]byte, n+1)
	if err := w.WriteBlock(huge); !errors.Is(err, ErrBlockTooLong) {
		t.Errorf("WriteBlock(2GiB+1) error = %v; want ErrBlockTooLong", err)
	}
	if w.Len() != mark {
		t.Errorf("oversized WriteBlock advanced the cursor by %d bytes", w.Len()-mark)
	}
}

func TestNegativeBlockLength(t *testing.T) {
	w := NewWriter()
	defer w.Close()
	w.WriteInt32(-1)

	r := NewReader(w.Bytes())
	if _, err := r.ReadBlock(); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("ReadBlock() error = %v; want ErrInvalidLength", err)
	}
	if got := r.Remaining(); got != 4 {
		t.Errorf("Remaining() after failed ReadBlock = %d; want 4", got)
	}
}

func TestSkip(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4})
	if err := r.Skip(3); err != nil {
		t.Fatalf("Skip(3) error: %v", err)
	}
	if v, _ := r.ReadUint8(); v != 4 {
		t.Errorf("byte after Skip = %d; want 4", v)
	}
	if err := r.Skip(1); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Skip past end error = %v; want ErrUnexpectedEOF", err)
	}
	if err := r.Skip(-1); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("Skip(-1) error = %v; want ErrInvalidLength", err)
	}
}

func TestWriterResetKeepsCapacity(t *testing.T) {
	w := NewWriter()
	defer w.Close()

	w.WriteBlock(make([]byte, 1024))
	grown := cap(w.buf)

	w.Reset()
	if w.Len() != 0 {
		t.Errorf("Len() = %d after Reset; want 0", w.Len())
	}
	if cap(w.buf) != grown {
		t.Errorf("Reset discarded capacity: %d -> %d", grown, cap(w.buf))
	}
}

func TestWriterPoolReuse(t *testing.T) {
	w := NewWriter()
	w.WriteUint64(0xFFFFFFFFFFFFFFFF)
	w.Close()
	w.Close() // second Close is a no-op

	// A fresh writer from the pool must start empty even if it is the
	// same instance.
	w2 := NewWriter()
	defer w2.Close()
	if w2.Len() != 0 {
		t.Errorf("pooled writer not rewound: Len() = %d", w2.Len())
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	gen, err := identity.NewGenerator(42)
	if err != nil {
		t.Fatal(err)
	}
	id := gen.Generate()

	w := NewWriter()
	defer w.Close()
	w.WriteID(id)
	w.WriteID(identity.Invalid)

	if w.Len() != 16 {
		t.Errorf("two identities encoded as %d bytes; want 16", w.Len())
	}

	r := NewReader(w.Bytes())
	if got, err := r.ReadID(); err != nil || got != id {
		t.Errorf("ReadID() = %v, %v; want %v, nil", got, err, id)
	}
	if got, err := r.ReadID(); err != nil || got.IsValid() {
		t.Errorf("ReadID() = %v, %v; want invalid, nil", got, err)
	}
}
