package system

import (
	"time"

	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/world"
)

// EffectsSystem expires transient presentation effects by logical clock.
// Phase 3 (PostUpdate).
type EffectsSystem struct {
	state *world.State
}

func NewEffectsSystem(state *world.State) *EffectsSystem {
	return &EffectsSystem{state: state}
}

func (s *EffectsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *EffectsSystem) Update(_ time.Duration) {
	s.state.ExpireEffects()
}
