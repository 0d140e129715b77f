package physics

import "math"

// BounceState is the lifecycle of a dropped prop.
type BounceState int

const (
	Waiting BounceState = iota
	Falling
	Bouncing
	Settled
)

func (s BounceState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Falling:
		return "falling"
	case Bouncing:
		return "bouncing"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// BounceParams are per-step constants. Units are screen percent per step.
type BounceParams struct {
	StartY  float64
	Floor   float64
	Gravity float64
	Damping float64 // fraction of speed kept on each floor contact
	Epsilon float64 // settle once rebound speed drops below this
}

// Bounce is a discrete-step drop integrator. It advances only when Step is
// called, so it pauses with the logical clock that drives it.
type Bounce struct {
	Params  BounceParams
	Y       float64
	V       float64
	State   BounceState
	Bounces int
}

func NewBounce(p BounceParams) *Bounce {
	return &Bounce{Params: p, Y: p.StartY}
}

// Drop releases the prop from its start height.
func (b *Bounce) Drop() {
	b.Y = b.Params.StartY
	b.V = 0
	b.Bounces = 0
	b.State = Falling
}

// Step advances one fixed step and reports whether the prop is settled.
func (b *Bounce) Step() bool {
	if b.State == Waiting || b.State == Settled {
		return b.State == Settled
	}
	b.Y += b.V
	if b.Y < b.Params.Floor {
		b.V += b.Params.Gravity
		return false
	}
	// Contact reflects the arrival speed; gravity is skipped for that step.
	b.Y = b.Params.Floor
	b.V = -b.V * b.Params.Damping
	b.Bounces++
	if math.Abs(b.V) < b.Params.Epsilon {
		b.V = 0
		b.State = Settled
		return true
	}
	b.State = Bouncing
	return false
}

// MaxRebound is the rebound speed repeated contacts converge under. An
// Epsilon above it guarantees the prop settles.
func (p BounceParams) MaxRebound() float64 {
	return p.Damping * p.Gravity / (1 - p.Damping)
}

// Run steps up to max times and returns the number of steps taken. It stops
// early on the step that settles the prop.
func (b *Bounce) Run(max int) int {
	for i := 0; i < max; i++ {
		if b.Step() {
			return i + 1
		}
	}
	return max
}
