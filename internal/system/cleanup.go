package system

import (
	"time"

	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/world"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	state *world.State
}

func NewCleanupSystem(state *world.State) *CleanupSystem {
	return &CleanupSystem{state: state}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	// The world is swapped on every new game, so resolve it per tick.
	s.state.World.FlushDestroyQueue()
}
