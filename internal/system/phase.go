package system

import (
	"time"

	"github.com/fullweasel/server/internal/core/event"
	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/data"
	"github.com/fullweasel/server/internal/physics"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

// PhaseSystem owns every phase transition. Condition-gated transitions are
// checked each tick; input-gated ones arrive through Fire from the engine.
// Phase 3 (PostUpdate).
type PhaseSystem struct {
	state  *world.State
	bus    *event.Bus
	banner string
	log    *zap.Logger
}

func NewPhaseSystem(state *world.State, bus *event.Bus, banner string, log *zap.Logger) *PhaseSystem {
	return &PhaseSystem{state: state, bus: bus, banner: banner, log: log}
}

func (s *PhaseSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *PhaseSystem) Update(_ time.Duration) {
	st := s.state
	now := st.Clock.NowMs
	switch st.Phase {
	case world.PhaseRhythm:
		if st.Progress.Meter >= 100 {
			s.Fire(world.TriggerMeterFull)
			return
		}
		if now-st.RoundStartMs < st.Round().DurationMs {
			return
		}
		if st.FinalRound() && st.Progress.Meter >= st.Cfg.GraceMeterThreshold {
			s.Fire(world.TriggerFinalRoundGrace)
			return
		}
		s.Fire(world.TriggerRoundElapsed)

	case world.PhaseStrip:
		if st.Strip.VictoryScheduled && now >= st.Strip.VictoryAtMs {
			s.Fire(world.TriggerStripComplete)
		}

	case world.PhaseVictory:
		if st.Victory.Settled && now-st.Victory.SettledAtMs >= st.Cfg.EndDelayMs {
			s.Fire(world.TriggerVictoryDone)
		}
	}
}

// Fire applies trigger to the current phase and runs the entry actions of
// the new phase. It reports false when the trigger does nothing here.
func (s *PhaseSystem) Fire(trigger world.Trigger) bool {
	st := s.state
	from := st.Phase
	to, ok := world.NextPhase(from, trigger)
	if !ok {
		return false
	}
	st.Phase = to

	switch to {
	case world.PhaseTitle:
		// Nothing queued by the finished game reaches the next one.
		s.bus.Reset()
		st.ResetForNewGame()
		st.Say(data.PoolWelcome)
	case world.PhaseRhythm:
		s.enterRhythm(from)
	case world.PhaseInterstitial:
		s.enterInterstitial()
	case world.PhaseStrip:
		s.enterStrip(trigger)
	case world.PhaseVictory:
		s.enterVictory()
	}

	event.Emit(s.bus, event.PhaseChanged{From: from.String(), To: to.String(), ClockMs: st.Clock.NowMs})
	s.log.Info("phase changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Stringer("trigger", trigger),
		zap.Int64("clock_ms", st.Clock.NowMs),
		zap.Int("round", st.Progress.Round),
		zap.Float64("meter", st.Progress.Meter),
	)
	return true
}

func (s *PhaseSystem) enterRhythm(from world.Phase) {
	st := s.state
	if from == world.PhaseReady {
		st.ResetForNewGame()
	} else {
		// Overtime replays the final round: the increment saturates.
		if st.Progress.Round < st.Rounds.Count() {
			st.Progress.Round++
		}
		st.Quote = ""
		st.StartRound()
	}
	event.Emit(s.bus, event.RoundStarted{Round: st.Progress.Round, ClockMs: st.Clock.NowMs})
}

func (s *PhaseSystem) enterInterstitial() {
	st := s.state
	st.ClearEntities()
	st.Quote = st.Lines.Pick(data.PoolQuote, st.Rng)
	st.Overtime = st.FinalRound()
	if st.Overtime {
		st.Say(data.PoolOvertime)
	}
}

func (s *PhaseSystem) enterStrip(trigger world.Trigger) {
	st := s.state
	if trigger == world.TriggerFinalRoundGrace {
		st.Progress.Meter = 100
	}
	st.ClearEntities()
	st.Overtime = false
	st.Progress.TapPower = 0
	st.Progress.StageIndex = 0
	st.Strip = world.Strip{}
	st.Say(data.PoolStrip)
}

func (s *PhaseSystem) enterVictory() {
	st := s.state
	cfg := st.Cfg
	st.Victory = world.Victory{
		EnteredAtMs: st.Clock.NowMs,
		Confetti:    makeConfetti(cfg.ConfettiCount, st),
		Prop: physics.NewBounce(physics.BounceParams{
			StartY:  cfg.PropStartY,
			Floor:   cfg.PropRestY,
			Gravity: cfg.PropGravity,
			Damping: cfg.PropDamping,
			Epsilon: cfg.PropEpsilon,
		}),
	}
	if s.banner != "" {
		st.Feedback = s.banner
	}
}

func makeConfetti(n int, st *world.State) []world.Confetti {
	out := make([]world.Confetti, n)
	for i := range out {
		out[i] = world.Confetti{
			ID:         i,
			Left:       st.Rng.Float64() * 100,
			Size:       6 + st.Rng.Float64()*12,
			DelayMs:    st.Rng.Float64() * 1200,
			DurationMs: 2200 + st.Rng.Float64()*2600,
			Hue:        st.Rng.Intn(361),
		}
	}
	return out
}
