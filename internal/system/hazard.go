package system

import (
	"math"
	"time"

	"github.com/fullweasel/server/internal/component"
	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/world"
)

// HazardSystem resolves horizontal hazards as they sweep past the player.
// Phase 2 (Update), rhythm only, both interaction modes.
type HazardSystem struct {
	state *world.State
	judge *Judge
}

func NewHazardSystem(state *world.State, judge *Judge) *HazardSystem {
	return &HazardSystem{state: state, judge: judge}
}

func (s *HazardSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *HazardSystem) Update(_ time.Duration) {
	st := s.state
	if st.Phase != world.PhaseRhythm {
		return
	}
	now := st.Clock.NowMs
	px := world.PlayerX(st.Player.Lane)
	tol := st.Cfg.DodgeTolerance

	for _, id := range st.LiveEntities() {
		e, _ := st.Entities.Get(id)
		if e.Kind != component.KindHazard || !e.Active() {
			continue
		}
		r := st.Rounds.Get(e.Round)
		from := st.Clock.PrevMs
		if from < e.SpawnMs {
			from = e.SpawnMs
		}
		x0 := world.HazardX(e.Side, world.HazardProgress(e.SpawnMs, from, r))
		x1 := world.HazardX(e.Side, world.HazardProgress(e.SpawnMs, now, r))
		// Swept test: a fast hazard cannot skip over the player between ticks.
		if math.Max(x0, x1) < px-tol || math.Min(x0, x1) > px+tol {
			continue
		}
		s.judge.Hazard(id, st.Player.Airborne(now, st.Cfg.JumpMs))
	}
}
