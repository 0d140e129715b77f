package system

import (
	"time"

	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/world"
)

// MotionSystem culls entities whose derived progress left the playable
// window. Positions themselves are never stored. Phase 2 (Update), after the
// resolvers.
type MotionSystem struct {
	state *world.State
	judge *Judge
}

func NewMotionSystem(state *world.State, judge *Judge) *MotionSystem {
	return &MotionSystem{state: state, judge: judge}
}

func (s *MotionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MotionSystem) Update(_ time.Duration) {
	st := s.state
	if st.Phase != world.PhaseRhythm {
		return
	}
	now := st.Clock.NowMs
	missAt := 1 + st.Cfg.MissTolerance
	goneAt := 1 + st.Cfg.ResolvedGrace

	for _, id := range st.LiveEntities() {
		e, _ := st.Entities.Get(id)
		p := world.EntityProgress(e, now, st.Rounds.Get(e.Round))
		switch {
		case !e.Resolved && p > missAt:
			s.judge.Miss(id)
			st.Cull(id)
		case e.Resolved && p > goneAt:
			st.Cull(id)
		}
	}
}
