// Package clock provides the authoritative simulation time source: a
// fixed-rate tick counter driven by the monotonic wall clock.
//
// A Clock is owned by a single simulation goroutine. The scheduler calls
// AdvanceFrame once per iteration, applies ticks while ShouldTick reports
// the simulation is behind, and sleeps for MillisUntilNextTick between
// iterations. ShouldTick is level-triggered: a stalled scheduler observes
// that it owes multiple ticks and decides itself whether to catch up or
// drop them.
package clock

import (
	"sync/atomic"
	"time"
)

// DefaultTickRate is the number of simulation ticks per second.
const DefaultTickRate = 20

// DefaultTickInterval is the wall-clock duration of one tick at
// DefaultTickRate.
const DefaultTickInterval = time.Second / DefaultTickRate

// Clock is a fixed-rate tick counter. Mutation is confined to the
// goroutine that owns the simulation loop; the tick counter itself is
// atomic, so Current is safe to call from any goroutine as a read-only
// snapshot.
type Clock struct {
	rate     int
	interval time.Duration

	tick    atomic.Uint64
	started bool
	start   time.Time
	prev    time.Time
	delta   float64

	// now is replaced in tests to simulate wall-clock movement.
	now func() time.Time
}

// New creates a Clock ticking at the given rate (ticks per second).
// A rate <= 0 selects DefaultTickRate.
func New(rate int) *Clock {
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return &Clock{
		rate:     rate,
		interval: time.Second / time.Duration(rate),
		now:      time.Now,
	}
}

// Start records the monotonic reference point that all tick accounting is
// measured from. Calling Start again before the clock is discarded has no
// effect.
func (c *Clock) Start() {
	if c.started {
		return
	}
	t := c.now()
	c.started = true
	c.start = t
	c.prev = t
}

// Started reports whether Start has been called.
func (c *Clock) Started() bool {
	return c.started
}

// AdvanceFrame recomputes the wall-clock delta since the previous frame.
// It is called once per scheduler iteration, independent of the tick rate.
func (c *Clock) AdvanceFrame() {
	t := c.now()
	c.delta = t.Sub(c.prev).Seconds()
	if c.delta < 0 {
		c.delta = 0
	}
	c.prev = t
}

// Delta returns the seconds elapsed between the two most recent
// AdvanceFrame calls.
func (c *Clock) Delta() float64 {
	return c.delta
}

// ShouldTick reports whether the simulation owes the world at least one
// tick: the number of whole tick intervals elapsed since Start exceeds the
// tick counter. The check is level-triggered, so it stays true until the
// caller has applied every owed tick via Tick.
func (c *Clock) ShouldTick() bool {
	if !c.started {
		return false
	}
	elapsed := c.now().Sub(c.start)
	if elapsed < 0 {
		return false
	}
	return uint64(elapsed/c.interval) > c.tick.Load()
}

// Tick increments the tick counter by exactly one.
func (c *Clock) Tick() {
	c.tick.Add(1)
}

// Current returns the current tick as a Timestamp. Unlike the mutating
// methods it may be called from any goroutine.
func (c *Clock) Current() Timestamp {
	return Timestamp(c.tick.Load())
}

// Rate returns the tick rate in ticks per second.
func (c *Clock) Rate() int {
	return c.rate
}

// Interval returns the duration of one tick.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// MillisUntilNextTick returns the non-negative number of milliseconds
// until the next tick is due, letting a scheduler sleep instead of
// busy-waiting. It returns 0 when a tick is already owed.
func (c *Clock) MillisUntilNextTick() int64 {
	if !c.started {
		return c.interval.Milliseconds()
	}
	next := c.start.Add(time.Duration(c.tick.Load()+1) * c.interval)
	ms := next.Sub(c.now()).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}

// DurationFor converts a tick count into wall-clock duration at this
// clock's rate.
func (c *Clock) DurationFor(ticks uint64) time.Duration {
	return time.Duration(ticks) * c.interval
}

// TicksIn converts a duration into the number of whole ticks it spans at
// this clock's rate.
func (c *Clock) TicksIn(d time.Duration) uint64 {
	if d < 0 {
		return 0
	}
	return uint64(d / c.interval)
}
