package wire

import "testing"

// FuzzReader checks that decoding arbitrary bytes never panics and never
// reads outside the range, whatever mix of operations runs against it.
func FuzzReader(f *testing.F) {
	seed := NewWriter()
	seed.WriteUint8(7)
	seed.WriteUint64(1 << 40)
	seed.WriteString("seed")
	seed.WriteBlock([]byte{1, 2, 3})
	f.Add(append([]byte(nil), seed.Bytes()...))
	seed.Close()

	f.Add([]byte{})
	f.Add([]byte{0xFF, 0xFF})             // string prefix with no body
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF}) // negative block prefix

	f.Fuzz(func(t *testing.T, data []byte) {
		r := NewReader(data)
		for !r.EOF() {
			before := r.pos
			_, _ = r.ReadString()
			_, _ = r.ReadBlock()
			_, _ = r.ReadUint64()
			_, _ = r.ReadFloat32()
			if _, err := r.ReadUint8(); err != nil && r.pos == before {
				// No operation can make progress; stop.
				break
			}
		}
		if r.pos > len(data) {
			t.Fatalf("cursor %d past end of %d-byte range", r.pos, len(data))
		}
	})
}

// FuzzStringRoundTrip checks encode/decode symmetry for arbitrary strings
// under the length cap.
func FuzzStringRoundTrip(f *testing.F) {
	f.Add("")
	f.Add("hello")
	f.Add("\x00\xFF\xFE")

	f.Fuzz(func(t *testing.T, s string) {
		w := NewWriter()
		defer w.Close()

		err := w.WriteString(s)
		if len(s) > MaxStringLen {
			if err == nil {
				t.Fatalf("WriteString accepted %d bytes", len(s))
			}
			return
		}
		if err != nil {
			t.Fatalf("WriteString(%d bytes) error: %v", len(s), err)
		}

		got, err := NewReader(w.Bytes()).ReadString()
		if err != nil {
			t.Fatalf("ReadString error: %v", err)
		}
		if got != s {
			t.Fatalf("round-trip mismatch: %q != %q", got, s)
		}
	})
}
