// Package wire implements the binary codec shared by every message that
// crosses the realm's network boundary.
//
// The codec is a paired Writer and Reader over a flat byte sequence. It
// defines no message-type enumeration of its own: consumers compose their
// own formats out of the primitive and domain scalar encodings and ship
// the resulting payloads inside transport frames.
//
// # Encodings
//
// All multi-byte values are little-endian:
//
//   - int8/uint8: 1 byte
//   - int16/uint16: 2 bytes
//   - int32/uint32: 4 bytes
//   - int64/uint64: 8 bytes
//   - float32: 4 bytes (IEEE 754)
//   - float64: 8 bytes (IEEE 754)
//   - bool: 1 byte, 0 or 1
//   - string: uint16 byte-count prefix + UTF-8 bytes, max 65535
//   - block: int32 length prefix + raw bytes (opaque blobs)
//   - identity: the packed value as a plain uint64
//
// # Writers are pooled
//
// NewWriter draws a buffer from a shared pool and Close returns it, so a
// hot loop can encode every tick without reallocating. A Writer must not
// be used after Close, and a single instance must not be shared across
// concurrent writers.
//
// # Readers are borrowed views
//
// A Reader walks a fully received, read-only byte range with a private
// cursor. It never mutates or retains the range; reading past the end
// fails with io.ErrUnexpectedEOF.
package wire
