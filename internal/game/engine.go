// Package game assembles the simulation core: session state, systems and
// the runner, driven by wall ticks, debug advances and player input.
package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/fullweasel/server/internal/assets"
	"github.com/fullweasel/server/internal/config"
	"github.com/fullweasel/server/internal/core/event"
	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/data"
	"github.com/fullweasel/server/internal/system"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Options configures a new Engine. Nil tables fall back to the built-in
// defaults; a nil Scorer uses the configured numbers unchanged.
type Options struct {
	Gameplay config.GameplayConfig
	Rounds   *data.RoundTable
	Stages   *data.StageTable
	Lines    *data.LineTable
	Scorer   system.Scorer
	Seed     int64
	Name     string
	Honoree  string
	Log      *zap.Logger
}

// Media is the presentation choice made once at startup.
type Media struct {
	Background assets.Background
	Slideshow  assets.Slideshow
	Degraded   bool
}

// Engine owns one game session. Every method must be called from the game
// loop goroutine.
type Engine struct {
	state    *world.State
	bus      *event.Bus
	runner   *coresys.Runner
	phases   *system.PhaseSystem
	resolver system.Resolver
	judge    *system.Judge

	name   string
	banner string
	media  *Media
	uptime time.Duration
	log    *zap.Logger
}

func New(opts Options) (*Engine, error) {
	if err := opts.Gameplay.Validate(); err != nil {
		return nil, fmt.Errorf("gameplay config: %w", err)
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	rounds, stages, lines := opts.Rounds, opts.Stages, opts.Lines
	if rounds == nil {
		rounds = data.DefaultRoundTable()
	}
	if stages == nil {
		stages = data.DefaultStageTable()
	}
	if lines == nil {
		lines = data.DefaultLineTable()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	state := world.NewState(opts.Gameplay, rounds, stages, lines, rand.New(rand.NewSource(seed)))
	bus := event.NewBus()
	judge := system.NewJudge(state, bus, opts.Scorer, log)
	resolver, err := system.NewResolver(opts.Gameplay.Mode, state, judge)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		state:    state,
		bus:      bus,
		runner:   coresys.NewRunner(),
		resolver: resolver,
		judge:    judge,
		name:     cases.Title(language.English).String(opts.Name),
		banner:   Banner(opts.Honoree),
		log:      log,
	}
	e.phases = system.NewPhaseSystem(state, bus, e.banner, log)

	// Same-phase systems run in registration order: the clock moves before
	// anything reads it, and culling runs after the resolvers.
	e.runner.Register(system.NewEventDispatchSystem(bus))
	e.runner.Register(system.NewClockSystem(state))
	e.runner.Register(system.NewSpawnSystem(state, log))
	e.runner.Register(resolver)
	e.runner.Register(system.NewHazardSystem(state, judge))
	e.runner.Register(system.NewVictorySystem(state, bus, log))
	e.runner.Register(system.NewMotionSystem(state, judge))
	e.runner.Register(e.phases)
	e.runner.Register(system.NewEffectsSystem(state))
	e.runner.Register(system.NewCleanupSystem(state))

	log.Info("engine ready",
		zap.String("mode", resolver.Mode()),
		zap.Int("rounds", rounds.Count()),
		zap.Int("stages", stages.Count()),
		zap.Int64("seed", seed),
	)
	return e, nil
}

// Banner is the victory headline for honoree.
func Banner(honoree string) string {
	if honoree == "" {
		return ""
	}
	return cases.Upper(language.English).String("Happy Birthday " + honoree)
}

// Register adds a transport or persistence system to the runner.
func (e *Engine) Register(s coresys.System) {
	e.runner.Register(s)
}

// Tick runs one full frame with wall delta dt. The clock system clamps it.
func (e *Engine) Tick(dt time.Duration) {
	if dt > 0 {
		e.uptime += dt
	}
	e.runner.Tick(dt)
}

// Advance force-advances the logical clock by ms, split into ticks no
// larger than the max delta. Non-positive values are ignored. Outside the
// clock-running phases the ticks still run but the clock holds.
func (e *Engine) Advance(ms int64) {
	if ms <= 0 {
		return
	}
	step := e.state.Cfg.MaxDeltaMs
	for ms > 0 {
		d := min(ms, step)
		e.runner.Tick(time.Duration(d) * time.Millisecond)
		ms -= d
	}
}

// Input applies one player action between ticks.
func (e *Engine) Input(in world.Input) {
	st := e.state
	switch st.Phase {
	case world.PhaseTitle, world.PhaseHowTo, world.PhaseReady, world.PhaseInterstitial:
		if in.Kind != world.InputPlayAgain {
			e.phases.Fire(world.TriggerInput)
		}
	case world.PhaseRhythm:
		e.rhythmInput(in)
	case world.PhaseStrip:
		if in.Kind == world.InputTap || in.Kind == world.InputSwipe || in.Kind == world.InputPress {
			e.stripTap()
		}
	case world.PhaseEnd:
		if in.Kind == world.InputPlayAgain {
			e.phases.Fire(world.TriggerPlayAgain)
		}
	}
}

func (e *Engine) rhythmInput(in world.Input) {
	st := e.state
	now := st.Clock.NowMs
	switch in.Kind {
	case world.InputTap:
		if !in.Lane.Valid() {
			return
		}
		st.Player.Lane = in.Lane
		st.AddEffect(world.EffectLaneFlash, in.Lane.String(), world.LaneX(in.Lane), world.PlayerY)
		e.resolver.Tap(in.Lane)
	case world.InputSwipe:
		if st.Player.Airborne(now, st.Cfg.JumpMs) {
			return
		}
		st.Player.Jumped = true
		st.Player.JumpStartMs = now
	}
}

// stripTap adds one unit of tap power and removes every costume stage whose
// threshold has now been reached, in order.
func (e *Engine) stripTap() {
	st := e.state
	if st.Strip.VictoryScheduled {
		return
	}
	now := st.Clock.NowMs
	final := st.Stages.Final()
	if st.Progress.TapPower < final {
		st.Progress.TapPower++
	}
	st.AddEffect(world.EffectSparkle, "", world.PlayerX(st.Player.Lane), world.PlayerY)

	for st.Progress.StageIndex < st.Stages.Count() {
		stage := st.Stages.Get(st.Progress.StageIndex)
		if st.Progress.TapPower < stage.Threshold {
			break
		}
		st.Progress.StageIndex++
		st.AddEffect(world.EffectStagePop, "", world.PlayerX(st.Player.Lane), world.PlayerY)
		st.Say(data.PoolStage)
		event.Emit(e.bus, event.StageRemoved{
			Stage:    stage.Name,
			Index:    st.Progress.StageIndex - 1,
			TapPower: st.Progress.TapPower,
			ClockMs:  now,
		})
		e.log.Debug("costume stage removed",
			zap.String("stage", stage.Name),
			zap.Int("tap_power", st.Progress.TapPower),
		)
	}

	if st.Progress.StageIndex == st.Stages.Count() {
		st.Strip.VictoryScheduled = true
		st.Strip.VictoryAtMs = now + st.Cfg.StripFinaleDelayMs
	}
}

// SetMedia records the background selection shown in snapshots.
func (e *Engine) SetMedia(m Media) {
	e.media = &m
}

// Snapshot returns the current read-only view.
func (e *Engine) Snapshot() world.Snapshot {
	snap := world.BuildSnapshot(e.state)
	if e.state.Phase == world.PhaseVictory || e.state.Phase == world.PhaseEnd {
		snap.Banner = e.banner
	}
	if m := e.media; m != nil {
		view := &world.MediaView{
			Background: m.Background.Mode,
			Video:      m.Background.Video,
			Degraded:   m.Degraded,
		}
		if m.Background.Mode == assets.BackgroundPNG {
			view.Frame, view.PrevFrame = m.Slideshow.FrameAt(e.uptime)
		}
		snap.Media = view
	}
	return snap
}

// SnapshotJSON is the serialized form of Snapshot for the debug hook.
func (e *Engine) SnapshotJSON() ([]byte, error) {
	return json.Marshal(e.Snapshot())
}

func (e *Engine) Phase() world.Phase  { return e.state.Phase }
func (e *Engine) State() *world.State { return e.state }
func (e *Engine) Bus() *event.Bus     { return e.bus }
func (e *Engine) Ticks() uint64       { return e.runner.Ticks() }
func (e *Engine) Mode() string        { return e.resolver.Mode() }
func (e *Engine) Name() string        { return e.name }
func (e *Engine) BannerText() string  { return e.banner }
