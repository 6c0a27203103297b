package identity

import (
	"fmt"
	"sync"
	"time"
)

// ErrInvalidShard is returned when constructing a Generator with a shard
// id outside [0, MaxShard].
var ErrInvalidShard = fmt.Errorf("identity: shard id out of range [0, %d]", MaxShard)

// Generator mints identities for one shard. It is safe for concurrent
// use: every generation is serialized end-to-end through one critical
// section, so callers never observe a half-updated sequence.
//
// When the wall clock moves backward (an NTP correction, say) Generate
// spins until it catches back up to the last-used millisecond rather than
// mint an out-of-order identity. The spin is bounded by the size of the
// jump, so badly misconfigured time sync can stall generation; that is a
// liveness caveat, not a correctness one.
type Generator struct {
	mu    sync.Mutex
	shard uint16

	lastMillis int64
	sequence   uint16

	// now is replaced in tests to simulate clock movement.
	now func() int64
}

// NewGenerator creates a Generator for the given shard id.
func NewGenerator(shard int) (*Generator, error) {
	if shard < 0 || shard > MaxShard {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShard, shard)
	}
	return &Generator{
		shard: uint16(shard),
		now:   func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// Shard returns the shard id this generator mints for.
func (g *Generator) Shard() uint16 {
	return g.shard
}

// Generate mints the next identity. It never returns Invalid.
func (g *Generator) Generate() ID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generateLocked()
}

// GenerateBatch mints n identities under a single critical section,
// preserving the same ordering discipline as n Generate calls.
func (g *Generator) GenerateBatch(n int) []ID {
	if n <= 0 {
		return nil
	}
	ids := make([]ID, n)
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range ids {
		ids[i] = g.generateLocked()
	}
	return ids
}

func (g *Generator) generateLocked() ID {
	ms := g.now()

	// Clock regression: never mint with a smaller timestamp than the last
	// one used. Spin until the wall clock catches up.
	for ms < g.lastMillis {
		ms = g.now()
	}

	if ms == g.lastMillis {
		g.sequence++
		if g.sequence > maxSequence {
			// Sequence space for this millisecond is exhausted; wait
			// for the next one.
			for ms <= g.lastMillis {
				ms = g.now()
			}
			g.sequence = 0
		}
	} else {
		g.sequence = 0
	}
	g.lastMillis = ms

	id := pack(ms, g.shard, g.sequence)
	if id == Invalid {
		// Only reachable in the first millisecond of the epoch on shard
		// 0. Burn the zero sequence slot so Invalid is never minted.
		g.sequence++
		id = pack(ms, g.shard, g.sequence)
	}
	return id
}
