package world

import "time"

// Clock is the logical game clock in milliseconds. It never decreases and
// each step is bounded by the max delta passed to Advance.
type Clock struct {
	NowMs  int64
	PrevMs int64
	frac   float64 // sub-millisecond remainder carried to the next tick
}

// Advance moves the clock by dt clamped to [0, maxMs] and returns the whole
// milliseconds applied.
func (c *Clock) Advance(dt time.Duration, maxMs int64) int64 {
	ms := float64(dt)/float64(time.Millisecond) + c.frac
	if ms < 0 {
		ms = 0
	}
	step := int64(ms)
	c.frac = ms - float64(step)
	if step > maxMs {
		step = maxMs
		c.frac = 0
	}
	c.PrevMs = c.NowMs
	c.NowMs += step
	return step
}

// Hold records a tick without movement so swept checks see an empty interval.
func (c *Clock) Hold() {
	c.PrevMs = c.NowMs
}

func (c *Clock) Reset() {
	*c = Clock{}
}
