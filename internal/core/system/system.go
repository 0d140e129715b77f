package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain client message queues, debug requests
	PhasePreUpdate               // 1: dispatch last tick's events, advance the clock
	PhaseUpdate                  // 2: spawn, move, resolve
	PhasePostUpdate              // 3: phase transitions, effect expiry
	PhaseOutput                  // 4: build + send snapshots
	PhasePersist                 // 5: trace frames
	PhaseCleanup                 // 6: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "Input"
	case PhasePreUpdate:
		return "PreUpdate"
	case PhaseUpdate:
		return "Update"
	case PhasePostUpdate:
		return "PostUpdate"
	case PhaseOutput:
		return "Output"
	case PhasePersist:
		return "Persist"
	case PhaseCleanup:
		return "Cleanup"
	default:
		return "Unknown"
	}
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
