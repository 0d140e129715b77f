package event

import "github.com/fullweasel/server/internal/core/ecs"

// Gameplay events. All timestamps are logical clock milliseconds.

type PhaseChanged struct {
	From    string
	To      string
	ClockMs int64
}

type RoundStarted struct {
	Round   int
	ClockMs int64
}

// Judged is emitted for every collectible resolution and for taps that
// matched nothing (EntityID zero, Outcome "tap_miss").
type Judged struct {
	EntityID   ecs.EntityID
	Lane       string
	Outcome    string
	DistanceMs int64
	MeterDelta float64
	Meter      float64
	ClockMs    int64
}

type HazardResolved struct {
	EntityID   ecs.EntityID
	Outcome    string // "dodge" or "hit"
	MeterDelta float64
	Meter      float64
	ClockMs    int64
}

type StageRemoved struct {
	Stage    string
	Index    int
	TapPower int
	ClockMs  int64
}

type RevealShown struct {
	ClockMs int64
}

type PropSettled struct {
	Y       float64
	Bounces int
	ClockMs int64
}
