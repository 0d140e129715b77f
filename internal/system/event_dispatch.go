package system

import (
	"time"

	"github.com/fullweasel/server/internal/core/event"
	coresys "github.com/fullweasel/server/internal/core/system"
)

// EventDispatchSystem delivers last tick's events at the start of this one.
// Phase 1 (PreUpdate); register it before ClockSystem.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
