package world

import (
	"math/rand"
	"sort"

	"github.com/fullweasel/server/internal/component"
	"github.com/fullweasel/server/internal/config"
	"github.com/fullweasel/server/internal/core/ecs"
	"github.com/fullweasel/server/internal/data"
	"github.com/fullweasel/server/internal/physics"
)

// Player is the single dancer. Airborne is derived from the clock.
type Player struct {
	Lane        component.Lane
	JumpStartMs int64
	Jumped      bool
}

// Airborne reports whether a jump is in progress at nowMs.
func (p *Player) Airborne(nowMs, jumpMs int64) bool {
	return p.Jumped && nowMs >= p.JumpStartMs && nowMs-p.JumpStartMs < jumpMs
}

// Progress holds the accumulators that gate phase changes.
type Progress struct {
	Meter      float64
	TapPower   int
	Round      int // 1-based
	StageIndex int // costume stages removed so far
}

// AddMeter applies delta clamped to [0,100] and returns the applied change.
func (p *Progress) AddMeter(delta float64) float64 {
	before := p.Meter
	p.Meter += delta
	if p.Meter < 0 {
		p.Meter = 0
	}
	if p.Meter > 100 {
		p.Meter = 100
	}
	return p.Meter - before
}

// SpawnCursors are the scheduler's next-due positions.
type SpawnCursors struct {
	NextBeatMs   int64
	Beat         int
	NextHazardMs int64
	Hazards      int
}

// Effect kinds.
const (
	EffectPerfectPop  = "perfect_pop"
	EffectSparkle     = "sparkle"
	EffectLaneFlash   = "lane_flash"
	EffectHitReaction = "hit_reaction"
	EffectStagePop    = "stage_pop"
)

var effectLifetimeMs = map[string]int64{
	EffectPerfectPop: 360,
	EffectSparkle:    900,
	EffectLaneFlash:  180,
	EffectStagePop:   600,
}

// Effect is a transient presentation record stamped with the logical clock.
type Effect struct {
	ID      int     `json:"id"`
	Kind    string  `json:"kind"`
	Lane    string  `json:"lane,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	AtMs    int64   `json:"atMs"`
	UntilMs int64   `json:"untilMs"`
}

// Confetti is one decorative piece generated on entering Victory.
type Confetti struct {
	ID         int     `json:"id"`
	Left       float64 `json:"left"`
	Size       float64 `json:"size"`
	DelayMs    float64 `json:"delayMs"`
	DurationMs float64 `json:"durationMs"`
	Hue        int     `json:"hue"`
}

// Strip tracks the finale schedule. Taps live in Progress.TapPower.
type Strip struct {
	VictoryScheduled bool
	VictoryAtMs      int64
}

// Victory is the scripted ending sequence.
type Victory struct {
	EnteredAtMs int64
	Confetti    []Confetti
	RevealShown bool
	Prop        *physics.Bounce
	PropSteps   int   // integrator steps taken since the drop
	PropAccMs   int64 // logical ms not yet consumed by a whole step
	Settled     bool
	SettledAtMs int64
}

// State is the session context: every piece of mutable game state, owned by
// the game loop goroutine. No locks.
type State struct {
	Cfg    config.GameplayConfig
	Rounds *data.RoundTable
	Stages *data.StageTable
	Lines  *data.LineTable
	Rng    *rand.Rand

	Phase    Phase
	Clock    Clock
	Player   Player
	Progress Progress
	Spawn    SpawnCursors

	RoundStartMs int64
	Overtime     bool

	World    *ecs.World
	Entities *ecs.PtrComponentStore[component.Entity]

	Feedback   string
	Quote      string
	Effects    []Effect
	nextEffect int
	ShakeUntil int64
	Strip      Strip
	Victory    Victory
}

func NewState(cfg config.GameplayConfig, rounds *data.RoundTable, stages *data.StageTable, lines *data.LineTable, rng *rand.Rand) *State {
	s := &State{
		Cfg:    cfg,
		Rounds: rounds,
		Stages: stages,
		Lines:  lines,
		Rng:    rng,
	}
	s.resetSession()
	s.Phase = PhaseTitle
	s.Feedback = lines.Pick(data.PoolWelcome, rng)
	return s
}

// Round returns the tuning of the current round.
func (s *State) Round() data.RoundConfig {
	return s.Rounds.Get(s.Progress.Round)
}

// FinalRound reports whether the current round is the last configured one.
func (s *State) FinalRound() bool {
	return s.Progress.Round >= s.Rounds.Count()
}

// ResetForNewGame is the single authoritative new-game entry point:
// clock, progress, entities, round and cursors return to their initial values.
func (s *State) ResetForNewGame() {
	s.resetSession()
	s.Feedback = s.Lines.Pick(data.PoolStart, s.Rng)
}

func (s *State) resetSession() {
	s.Clock.Reset()
	s.Player = Player{Lane: component.LaneCenter}
	s.Progress = Progress{Round: 1}
	s.Spawn = SpawnCursors{NextHazardMs: s.Cfg.HazardFirstDelayMs}
	s.RoundStartMs = 0
	s.Overtime = false
	s.World = ecs.NewWorld()
	s.Entities = ecs.NewPtrComponentStore[component.Entity]()
	s.World.Registry().Register(s.Entities)
	s.Feedback = ""
	s.Quote = ""
	s.Effects = s.Effects[:0]
	s.nextEffect = 0
	s.ShakeUntil = 0
	s.Strip = Strip{}
	s.Victory = Victory{}
}

// StartRound points the spawn cursors at the current clock so nothing
// scheduled for the previous round can fire.
func (s *State) StartRound() {
	now := s.Clock.NowMs
	s.RoundStartMs = now
	s.Spawn = SpawnCursors{
		NextBeatMs:   now,
		NextHazardMs: now + s.Cfg.HazardFirstDelayMs,
	}
}

// SpawnEntity allocates an id and stores e under it.
func (s *State) SpawnEntity(e component.Entity) ecs.EntityID {
	id := s.World.CreateEntity()
	s.Entities.Set(id, &e)
	return id
}

// Cull removes an entity from play now and destroys it in Cleanup.
func (s *State) Cull(id ecs.EntityID) {
	e, ok := s.Entities.Get(id)
	if !ok || e.Culled {
		return
	}
	e.Culled = true
	s.World.MarkForDestruction(id)
}

// ClearEntities culls every live entity.
func (s *State) ClearEntities() {
	for _, id := range s.Entities.Keys() {
		s.Cull(id)
	}
}

// LiveEntities returns the ids of non-culled entities ordered by spawn time
// then id, so iteration is deterministic.
func (s *State) LiveEntities() []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, s.Entities.Len())
	s.Entities.Each(func(id ecs.EntityID, e *component.Entity) {
		if !e.Culled {
			ids = append(ids, id)
		}
	})
	sort.Slice(ids, func(i, j int) bool {
		a, _ := s.Entities.Get(ids[i])
		b, _ := s.Entities.Get(ids[j])
		if a.SpawnMs != b.SpawnMs {
			return a.SpawnMs < b.SpawnMs
		}
		return ids[i].Index() < ids[j].Index()
	})
	return ids
}

// HazardInFlight reports whether an unresolved hazard is still live.
func (s *State) HazardInFlight() bool {
	inFlight := false
	s.Entities.Each(func(_ ecs.EntityID, e *component.Entity) {
		if e.Kind == component.KindHazard && e.Active() {
			inFlight = true
		}
	})
	return inFlight
}

// AddEffect records a transient effect at the current clock.
func (s *State) AddEffect(kind string, lane string, x, y float64) {
	now := s.Clock.NowMs
	life, ok := effectLifetimeMs[kind]
	if !ok {
		life = s.Cfg.HitReactionMs
	}
	s.nextEffect++
	s.Effects = append(s.Effects, Effect{
		ID:      s.nextEffect,
		Kind:    kind,
		Lane:    lane,
		X:       x,
		Y:       y,
		AtMs:    now,
		UntilMs: now + life,
	})
}

// ExpireEffects drops effects whose lifetime has passed.
func (s *State) ExpireEffects() {
	now := s.Clock.NowMs
	kept := s.Effects[:0]
	for _, fx := range s.Effects {
		if now < fx.UntilMs {
			kept = append(kept, fx)
		}
	}
	s.Effects = kept
}

// HasEffect reports whether an effect of kind is still showing.
func (s *State) HasEffect(kind string) bool {
	for _, fx := range s.Effects {
		if fx.Kind == kind {
			return true
		}
	}
	return false
}

// Shaking reports whether the hit shake is active.
func (s *State) Shaking() bool {
	return s.Clock.NowMs < s.ShakeUntil
}

// Say sets the feedback line from a pool.
func (s *State) Say(pool data.Pool) {
	if line := s.Lines.Pick(pool, s.Rng); line != "" {
		s.Feedback = line
	}
}

// Costume returns the names of stages not yet removed.
func (s *State) Costume() []string {
	out := make([]string, 0, s.Stages.Count())
	for i := s.Progress.StageIndex; i < s.Stages.Count(); i++ {
		out = append(out, s.Stages.Get(i).Name)
	}
	return out
}
