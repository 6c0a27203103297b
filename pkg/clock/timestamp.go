package clock

// Timestamp is a server tick wrapped as a comparable, orderable scalar.
// Arithmetic produces a new Timestamp; values are never mutated in place.
type Timestamp uint64

// AddTicks returns the timestamp n ticks later.
func (t Timestamp) AddTicks(n uint64) Timestamp {
	return t + Timestamp(n)
}

// AddSeconds returns the timestamp s seconds later at DefaultTickRate.
// Fractional ticks are truncated.
func (t Timestamp) AddSeconds(s float64) Timestamp {
	if s <= 0 {
		return t
	}
	return t + Timestamp(s*DefaultTickRate)
}

// Sub returns the signed tick distance t - o.
func (t Timestamp) Sub(o Timestamp) int64 {
	return int64(t) - int64(o)
}

// Before reports whether t precedes o.
func (t Timestamp) Before(o Timestamp) bool {
	return t < o
}

// After reports whether t follows o.
func (t Timestamp) After(o Timestamp) bool {
	return t > o
}

// Uint64 returns the raw tick value, e.g. for wire encoding.
func (t Timestamp) Uint64() uint64 {
	return uint64(t)
}
