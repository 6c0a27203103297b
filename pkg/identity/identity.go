// Package identity mints 64-bit entity identities that are unique across
// every shard of a deployment and roughly ordered by creation time.
//
// An ID packs a millisecond timestamp, the minting shard, and a
// per-millisecond sequence:
//
//	┌──────────────────────────────┬──────────────┬───────────────┐
//	│ ms since epoch (41 bits)     │ shard (10)   │ sequence (13) │
//	└──────────────────────────────┴──────────────┴───────────────┘
//
// IDs from the same shard compare in mint order as raw uint64 values; the
// zero value is reserved as invalid/unset and is never minted.
package identity

import (
	"fmt"
	"time"
)

// Epoch is the reference instant identity timestamps are measured from.
// Keeping it recent leaves 41 bits of millisecond headroom (~69 years).
var Epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

var epochMillis = Epoch.UnixMilli()

const (
	timestampBits = 41
	shardBits     = 10
	sequenceBits  = 13

	shardShift     = sequenceBits
	timestampShift = shardBits + sequenceBits

	// MaxShard is the largest valid shard id.
	MaxShard = (1 << shardBits) - 1

	maxSequence = (1 << sequenceBits) - 1
)

// ID is a packed 64-bit entity identity. The zero value is invalid.
type ID uint64

// Invalid is the reserved unset identity.
const Invalid ID = 0

// IsValid reports whether the identity has been set.
func (id ID) IsValid() bool {
	return id != Invalid
}

// Timestamp returns the instant the identity was minted, at millisecond
// precision.
func (id ID) Timestamp() time.Time {
	ms := int64(id>>timestampShift) + epochMillis
	return time.UnixMilli(ms)
}

// Shard returns the id of the shard that minted the identity.
func (id ID) Shard() uint16 {
	return uint16(id>>shardShift) & MaxShard
}

// Sequence returns the per-millisecond sequence number.
func (id ID) Sequence() uint16 {
	return uint16(id) & maxSequence
}

// Uint64 returns the raw packed value, which is also the wire encoding.
func (id ID) Uint64() uint64 {
	return uint64(id)
}

func (id ID) String() string {
	if !id.IsValid() {
		return "identity(invalid)"
	}
	return fmt.Sprintf("%d@%d.%d", uint64(id), id.Shard(), id.Sequence())
}

func pack(ms int64, shard uint16, seq uint16) ID {
	return ID(uint64(ms-epochMillis)<<timestampShift |
		uint64(shard)<<shardShift |
		uint64(seq))
}
