package system

import (
	"time"

	"github.com/fullweasel/server/internal/core/event"
	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/physics"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

// VictorySystem plays the scripted ending: censor reveal, then the prop
// drop integrated at fixed steps from the logical clock. Phase 2 (Update).
type VictorySystem struct {
	state *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewVictorySystem(state *world.State, bus *event.Bus, log *zap.Logger) *VictorySystem {
	return &VictorySystem{state: state, bus: bus, log: log}
}

func (s *VictorySystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *VictorySystem) Update(_ time.Duration) {
	st := s.state
	if st.Phase != world.PhaseVictory {
		return
	}
	v := &st.Victory
	now := st.Clock.NowMs
	elapsed := now - v.EnteredAtMs
	cfg := st.Cfg

	if !v.RevealShown && elapsed >= cfg.CensorDelayMs {
		v.RevealShown = true
		event.Emit(s.bus, event.RevealShown{ClockMs: now})
	}

	if v.Settled || v.Prop == nil || elapsed < cfg.PropDropDelayMs {
		return
	}
	if v.Prop.State == physics.Waiting {
		v.Prop.Drop()
	}
	dropped := elapsed - cfg.PropDropDelayMs
	due := int(dropped/cfg.PropStepMs) - v.PropSteps
	if due <= 0 {
		return
	}
	v.PropSteps += v.Prop.Run(due)
	v.PropAccMs = dropped - int64(v.PropSteps)*cfg.PropStepMs
	if v.Prop.State != physics.Settled {
		return
	}
	v.Settled = true
	v.SettledAtMs = now
	event.Emit(s.bus, event.PropSettled{Y: v.Prop.Y, Bounces: v.Prop.Bounces, ClockMs: now})
	s.log.Debug("prop settled", zap.Float64("y", v.Prop.Y), zap.Int("bounces", v.Prop.Bounces))
}
