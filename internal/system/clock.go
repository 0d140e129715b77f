package system

import (
	"time"

	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/world"
)

// ClockSystem advances the logical clock while the phase allows it.
// Phase 1 (PreUpdate), after EventDispatchSystem.
type ClockSystem struct {
	state *world.State
}

func NewClockSystem(state *world.State) *ClockSystem {
	return &ClockSystem{state: state}
}

func (s *ClockSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *ClockSystem) Update(dt time.Duration) {
	if !s.state.Phase.ClockRuns() {
		s.state.Clock.Hold()
		return
	}
	s.state.Clock.Advance(dt, s.state.Cfg.MaxDeltaMs)
}
