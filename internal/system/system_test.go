package system

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/fullweasel/server/internal/component"
	"github.com/fullweasel/server/internal/config"
	"github.com/fullweasel/server/internal/core/ecs"
	"github.com/fullweasel/server/internal/core/event"
	"github.com/fullweasel/server/internal/data"
	"github.com/fullweasel/server/internal/scripting"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

type fixture struct {
	state *world.State
	bus   *event.Bus
	judge *Judge
}

func newFixture(tune func(*config.GameplayConfig)) *fixture {
	cfg := config.DefaultGameplay()
	if tune != nil {
		tune(&cfg)
	}
	st := world.NewState(cfg, data.DefaultRoundTable(), data.DefaultStageTable(), data.DefaultLineTable(), rand.New(rand.NewSource(1)))
	st.Phase = world.PhaseRhythm
	bus := event.NewBus()
	return &fixture{state: st, bus: bus, judge: NewJudge(st, bus, nil, zap.NewNop())}
}

func (f *fixture) at(prev, now int64) {
	f.state.Clock.PrevMs = prev
	f.state.Clock.NowMs = now
}

func (f *fixture) collectible(lane component.Lane, spawnMs int64) ecs.EntityID {
	return f.state.SpawnEntity(component.Entity{
		Kind:    component.KindCollectible,
		Subtype: component.SubtypeCheese,
		Lane:    lane,
		SpawnMs: spawnMs,
		Round:   1,
	})
}

func (f *fixture) hazard(side component.Side, spawnMs int64) ecs.EntityID {
	return f.state.SpawnEntity(component.Entity{
		Kind:    component.KindHazard,
		Subtype: component.SubtypeShark,
		Side:    side,
		SpawnMs: spawnMs,
		Round:   1,
	})
}

func (f *fixture) entity(id ecs.EntityID) *component.Entity {
	e, _ := f.state.Entities.Get(id)
	return e
}

func TestSpawnEmitsEveryDueBeat(t *testing.T) {
	f := newFixture(func(c *config.GameplayConfig) { c.HazardIntervalMs = 0 })
	f.at(0, 2000) // one long stalled tick

	NewSpawnSystem(f.state, zap.NewNop()).Update(0)

	ids := f.state.LiveEntities()
	wantSpawn := []int64{0, 650, 1300, 1950}
	if len(ids) != len(wantSpawn) {
		t.Fatalf("spawned %d, want %d", len(ids), len(wantSpawn))
	}
	for i, id := range ids {
		e := f.entity(id)
		if e.SpawnMs != wantSpawn[i] {
			t.Fatalf("beat %d spawned at %d, want %d", i, e.SpawnMs, wantSpawn[i])
		}
		wantLane := component.LaneLeft
		if i%2 == 1 {
			wantLane = component.LaneRight
		}
		if e.Lane != wantLane {
			t.Fatalf("beat %d lane %s", i, e.Lane)
		}
	}
	if f.state.Spawn.NextBeatMs != 2600 || f.state.Spawn.Beat != 4 {
		t.Fatalf("cursor %+v", f.state.Spawn)
	}
}

func TestSpawnScalesWithRound(t *testing.T) {
	f := newFixture(func(c *config.GameplayConfig) { c.HazardIntervalMs = 0 })
	f.state.Progress.Round = 3 // scale 1.3
	f.at(0, 0)
	NewSpawnSystem(f.state, zap.NewNop()).Update(0)
	if f.state.Spawn.NextBeatMs != 500 {
		t.Fatalf("next beat %d, want 500", f.state.Spawn.NextBeatMs)
	}
}

func TestHazardWaitsForLaneToClear(t *testing.T) {
	f := newFixture(nil)
	spawn := NewSpawnSystem(f.state, zap.NewNop())
	hazards := func() []*component.Entity {
		var out []*component.Entity
		for _, id := range f.state.LiveEntities() {
			if e := f.entity(id); e.Kind == component.KindHazard {
				out = append(out, e)
			}
		}
		return out
	}

	f.at(3800, 3900)
	spawn.Update(0)
	first := hazards()
	if len(first) != 1 || first[0].SpawnMs != 3900 || first[0].Side != component.SideLeft {
		t.Fatalf("first hazard %+v", first)
	}

	// Next one is due at 9100 but the first is still unresolved.
	f.at(9050, 9150)
	spawn.Update(0)
	if n := len(hazards()); n != 1 {
		t.Fatalf("%d hazards while one in flight", n)
	}

	first[0].Resolved = true
	f.at(9150, 9200)
	spawn.Update(0)
	all := hazards()
	if len(all) != 2 {
		t.Fatalf("%d hazards after lane cleared", len(all))
	}
	second := all[1]
	if second.SpawnMs != 9200 || second.Side != component.SideRight {
		t.Fatalf("deferred hazard %+v", second)
	}
	if f.state.Spawn.NextHazardMs != 9200+5200 {
		t.Fatalf("next hazard %d", f.state.Spawn.NextHazardMs)
	}
}

func TestHazardDeferredOnItsDueTickSpawnsLate(t *testing.T) {
	f := newFixture(nil)
	spawn := NewSpawnSystem(f.state, zap.NewNop())
	blocker := f.hazard(component.SideLeft, 3900)
	f.state.Spawn.Hazards = 1
	f.state.Spawn.NextHazardMs = 9100

	// Due exactly on this tick but blocked.
	f.at(9000, 9100)
	spawn.Update(0)
	f.entity(blocker).Resolved = true

	f.at(9100, 9150)
	spawn.Update(0)
	var late *component.Entity
	for _, id := range f.state.LiveEntities() {
		if e := f.entity(id); id != blocker && e.Kind == component.KindHazard {
			late = e
		}
	}
	if late == nil || late.SpawnMs != 9150 {
		t.Fatalf("deferred hazard %+v, want spawn at 9150", late)
	}
}

func TestTapWindowEdges(t *testing.T) {
	cases := []struct {
		name    string
		offset  int64
		outcome component.Outcome
	}{
		{"exact", 0, component.OutcomePerfect},
		{"perfect edge", 140, component.OutcomePerfect},
		{"just good", 141, component.OutcomeGood},
		{"window edge late", 430, component.OutcomeGood},
		{"window edge early", -430, component.OutcomeGood},
		{"outside", 431, component.OutcomeNone},
		{"outside early", -431, component.OutcomeNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for run := 0; run < 3; run++ {
				f := newFixture(nil)
				id := f.collectible(component.LaneLeft, 0)
				f.at(0, 2500+tc.offset)
				r, _ := NewResolver(config.ModeTap, f.state, f.judge)
				r.Tap(component.LaneLeft)

				e := f.entity(id)
				if e.Outcome != tc.outcome {
					t.Fatalf("run %d: outcome %s, want %s", run, e.Outcome, tc.outcome)
				}
				if tc.outcome == component.OutcomeNone && f.state.Progress.Meter != 0 {
					t.Fatalf("tap miss changed meter to %v", f.state.Progress.Meter)
				}
			}
		})
	}
}

func TestTapPicksClosestThenEarliest(t *testing.T) {
	f := newFixture(func(c *config.GameplayConfig) { c.HitWindowMs = 600 })
	early := f.collectible(component.LaneLeft, 0)
	late := f.collectible(component.LaneLeft, 1000)
	other := f.collectible(component.LaneRight, 500)
	f.at(0, 3000) // 500ms from both left items

	r, _ := NewResolver(config.ModeTap, f.state, f.judge)
	r.Tap(component.LaneLeft)
	if !f.entity(early).Resolved || f.entity(late).Resolved || f.entity(other).Resolved {
		t.Fatal("tie not broken toward the earlier spawn")
	}

	r.Tap(component.LaneLeft)
	if !f.entity(late).Resolved {
		t.Fatal("second tap did not take the remaining item")
	}
}

func TestCulledEntityIsNotTappable(t *testing.T) {
	f := newFixture(nil)
	id := f.collectible(component.LaneLeft, 0)
	f.at(0, 2500)
	f.state.Cull(id)
	r, _ := NewResolver(config.ModeTap, f.state, f.judge)
	r.Tap(component.LaneLeft)
	if f.entity(id).Resolved {
		t.Fatal("culled entity was judged")
	}
}

func TestMissIsIdempotent(t *testing.T) {
	f := newFixture(func(c *config.GameplayConfig) { c.MissPenalty = 5 })
	f.state.Progress.Meter = 50
	id := f.collectible(component.LaneRight, 0)

	if !f.judge.Miss(id) {
		t.Fatal("first miss rejected")
	}
	if f.judge.Miss(id) {
		t.Fatal("second miss accepted")
	}
	if f.state.Progress.Meter != 45 {
		t.Fatalf("meter %v, want 45", f.state.Progress.Meter)
	}
	if f.judge.Collect(id, component.OutcomePerfect, 0) {
		t.Fatal("missed entity collected")
	}
	if f.state.Progress.Meter != 45 {
		t.Fatalf("meter changed after terminal miss: %v", f.state.Progress.Meter)
	}
}

func TestMotionCullsPastWindow(t *testing.T) {
	f := newFixture(nil)
	judge := f.judge
	motion := NewMotionSystem(f.state, judge)

	missed := f.collectible(component.LaneLeft, 0)
	hit := f.collectible(component.LaneRight, 0)
	judge.Collect(hit, component.OutcomeGood, 100)

	f.at(2600, 2690) // p = 1.076, inside the tolerance
	motion.Update(0)
	if f.entity(missed).Culled {
		t.Fatal("culled at exactly the tolerance")
	}

	f.at(2690, 2800)
	motion.Update(0)
	if e := f.entity(missed); !e.Culled || e.Outcome != component.OutcomeMiss {
		t.Fatalf("unresolved item not missed: %+v", e)
	}
	if f.entity(hit).Culled {
		t.Fatal("resolved item culled before its grace")
	}

	f.at(3100, 3225) // p = 1.29
	motion.Update(0)
	if !f.entity(hit).Culled {
		t.Fatal("resolved item not culled after its grace")
	}
}

func TestHazardDodgeAndHit(t *testing.T) {
	// Player stands centre (x 50); a left hazard at speed 35 passes x 50
	// about 1714ms after spawning.
	f := newFixture(nil)
	hz := NewHazardSystem(f.state, f.judge)
	f.state.Progress.Meter = 20

	dodged := f.hazard(component.SideLeft, 0)
	f.state.Player.Jumped = true
	f.state.Player.JumpStartMs = 1600
	f.at(1700, 1720)
	hz.Update(0)
	if e := f.entity(dodged); e.Outcome != component.OutcomeDodge {
		t.Fatalf("airborne player got %s", e.Outcome)
	}
	if f.state.Progress.Meter != 25 {
		t.Fatalf("meter after dodge %v", f.state.Progress.Meter)
	}

	hit := f.hazard(component.SideLeft, 3000)
	f.state.Player.Jumped = false
	f.at(4700, 4720)
	hz.Update(0)
	if e := f.entity(hit); e.Outcome != component.OutcomeHit {
		t.Fatalf("grounded player got %s", e.Outcome)
	}
	if f.state.Progress.Meter != 18 {
		t.Fatalf("meter after hit %v", f.state.Progress.Meter)
	}
	if f.state.ShakeUntil != 4720+f.state.Cfg.HitReactionMs || !f.state.HasEffect(world.EffectHitReaction) {
		t.Fatalf("hit reaction missing: shake %d effects %+v", f.state.ShakeUntil, f.state.Effects)
	}

	// Resolution is final.
	f.at(4720, 4740)
	hz.Update(0)
	if f.state.Progress.Meter != 18 {
		t.Fatal("hazard judged twice")
	}
}

func TestHazardSweptAcrossLongTick(t *testing.T) {
	f := newFixture(nil)
	id := f.hazard(component.SideRight, 0)
	f.at(500, 3000) // x sweeps 92.5 -> 5 past the centre player
	NewHazardSystem(f.state, f.judge).Update(0)
	if !f.entity(id).Resolved {
		t.Fatal("hazard tunnelled past the player")
	}
}

func TestZoneCollectsOnlyInLaneAndBand(t *testing.T) {
	f := newFixture(func(c *config.GameplayConfig) { c.Mode = config.ModeZone })
	r, err := NewResolver(config.ModeZone, f.state, f.judge)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	inLane := f.collectible(component.LaneCenter, 0)
	otherLane := f.collectible(component.LaneLeft, 0)

	f.at(2100, 2200) // y 74.76, above the band
	r.Update(0)
	if f.entity(inLane).Resolved {
		t.Fatal("collected above the band")
	}
	f.at(2200, 2400) // y 82.92
	r.Update(0)
	if e := f.entity(inLane); e.Outcome != component.OutcomeCollect {
		t.Fatalf("in-lane outcome %s", e.Outcome)
	}
	if f.entity(otherLane).Resolved {
		t.Fatal("collected from a lane the player is not in")
	}
}

func TestPlayAgainDropsQueuedEvents(t *testing.T) {
	f := newFixture(nil)
	f.state.Phase = world.PhaseEnd
	judged, changed := 0, 0
	event.Subscribe(f.bus, func(event.Judged) { judged++ })
	event.Subscribe(f.bus, func(event.PhaseChanged) { changed++ })

	event.Emit(f.bus, event.Judged{Outcome: "perfect"})
	f.bus.SwapBuffers()
	event.Emit(f.bus, event.Judged{Outcome: "good"})

	phases := NewPhaseSystem(f.state, f.bus, "HAPPY BIRTHDAY", zap.NewNop())
	if !phases.Fire(world.TriggerPlayAgain) {
		t.Fatal("play again not accepted in end")
	}
	f.bus.DispatchAll()
	f.bus.SwapBuffers()
	f.bus.DispatchAll()
	if judged != 0 || changed != 1 {
		t.Fatalf("after reset: judged %d, phase changes %d", judged, changed)
	}
}

func TestNewResolverRejectsUnknownMode(t *testing.T) {
	f := newFixture(nil)
	if _, err := NewResolver("hybrid", f.state, f.judge); !errors.Is(err, config.ErrUnknownMode) {
		t.Fatalf("err = %v", err)
	}
}

func TestJudgeUsesScorer(t *testing.T) {
	f := newFixture(nil)
	f.judge = NewJudge(f.state, f.bus, doubling{}, zap.NewNop())
	id := f.collectible(component.LaneLeft, 0)
	f.judge.Collect(id, component.OutcomeGood, 200)
	if f.state.Progress.Meter != 2*f.state.Cfg.GoodAward {
		t.Fatalf("meter %v", f.state.Progress.Meter)
	}

	f.bus.SwapBuffers()
	var got []event.Judged
	event.Subscribe(f.bus, func(ev event.Judged) { got = append(got, ev) })
	f.bus.DispatchAll()
	if len(got) != 1 || got[0].Outcome != "good" || got[0].DistanceMs != 200 {
		t.Fatalf("judged events %+v", got)
	}
}

type doubling struct{}

func (doubling) MeterDelta(_ scripting.MeterContext, fallback float64) float64 { return 2 * fallback }

type fakeSink struct {
	events []string
	frames int
	err    error
}

func (s *fakeSink) AppendEvent(_ uint64, _ int64, eventType string, _ any) error {
	s.events = append(s.events, eventType)
	return s.err
}

func (s *fakeSink) AppendFrame(_ uint64, _ int64, _ []byte) error {
	s.frames++
	return s.err
}

type fakeSource struct{ state *world.State }

func (s fakeSource) Snapshot() world.Snapshot { return world.BuildSnapshot(s.state) }
func (s fakeSource) Ticks() uint64            { return 1 }

func TestTraceSystemRecordsEventsAndFrames(t *testing.T) {
	f := newFixture(nil)
	sink := &fakeSink{}
	tr := NewTraceSystem(sink, fakeSource{f.state}, f.bus, zap.NewNop())

	event.Emit(f.bus, event.RoundStarted{Round: 1})
	event.Emit(f.bus, event.RevealShown{ClockMs: 5})
	NewEventDispatchSystem(f.bus).Update(0)
	tr.Update(0)

	if len(sink.events) != 2 || sink.events[0] != "RoundStarted" || sink.events[1] != "RevealShown" {
		t.Fatalf("events %v", sink.events)
	}
	if sink.frames != 1 {
		t.Fatalf("frames %d", sink.frames)
	}

	sink.err = errors.New("disk full")
	tr.Update(0)
	tr.Update(0)
	if sink.frames != 2 {
		t.Fatalf("tracing continued after a write error: %d frames", sink.frames)
	}
}
