package world

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/fullweasel/server/internal/component"
	"github.com/fullweasel/server/internal/config"
	"github.com/fullweasel/server/internal/data"
)

func newTestState() *State {
	return NewState(config.DefaultGameplay(), data.DefaultRoundTable(), data.DefaultStageTable(),
		data.DefaultLineTable(), rand.New(rand.NewSource(1)))
}

func TestClockClampsAndNeverDecreases(t *testing.T) {
	var c Clock
	steps := []time.Duration{16 * time.Millisecond, 5 * time.Second, -40 * time.Millisecond, 0, 99 * time.Millisecond}
	prev := c.NowMs
	for _, d := range steps {
		applied := c.Advance(d, 100)
		if applied < 0 || applied > 100 {
			t.Fatalf("step %v applied %d ms", d, applied)
		}
		if c.NowMs < prev {
			t.Fatalf("clock went backwards: %d -> %d", prev, c.NowMs)
		}
		if c.NowMs-c.PrevMs != applied {
			t.Fatalf("prev/now mismatch: %d-%d != %d", c.NowMs, c.PrevMs, applied)
		}
		prev = c.NowMs
	}
}

func TestClockCarriesFraction(t *testing.T) {
	var c Clock
	for i := 0; i < 60; i++ {
		c.Advance(time.Second/60, 100)
	}
	if c.NowMs < 999 || c.NowMs > 1000 {
		t.Fatalf("60 ticks of 1/60s advanced %d ms", c.NowMs)
	}
}

func TestPositionIsPure(t *testing.T) {
	r := data.DefaultRoundTable().Get(2)
	entities := []component.Entity{
		{Kind: component.KindCollectible, Lane: component.LaneLeft, SpawnMs: 650},
		{Kind: component.KindHazard, Side: component.SideRight, SpawnMs: 3900},
	}
	for _, e := range entities {
		for _, now := range []int64{0, 700, 2500, 4000, 9000} {
			x1, y1 := Position(&e, now, r)
			x2, y2 := Position(&e, now, r)
			if x1 != x2 || y1 != y2 {
				t.Fatalf("%v at %d: (%v,%v) != (%v,%v)", e.Kind, now, x1, y1, x2, y2)
			}
		}
	}
}

func TestCollectibleReachesHitLineAtFallTime(t *testing.T) {
	r := data.DefaultRoundTable().Get(1)
	if p := CollectibleProgress(0, r.FallMs, r); p != 1 {
		t.Fatalf("progress at fall time = %v", p)
	}
	if y := CollectibleY(0); y != CollectibleStartY {
		t.Fatalf("start y = %v", y)
	}
	if y := CollectibleY(1); y != 87 {
		t.Fatalf("hit line y = %v", y)
	}
}

func TestHazardCrossesScreen(t *testing.T) {
	r := data.RoundConfig{FallMs: 1, SpawnIntervalScale: 1, HazardSpeed: 40, DurationMs: 1}
	crossMs := int64(HazardTravel / r.HazardSpeed * 1000)
	if p := HazardProgress(0, crossMs, r); p < 0.999 || p > 1.001 {
		t.Fatalf("progress after full crossing = %v", p)
	}
	if x := HazardX(component.SideLeft, 0); x != HazardStartX {
		t.Fatalf("left entry starts at %v", x)
	}
	if x := HazardX(component.SideRight, 0); x != HazardEndX {
		t.Fatalf("right entry starts at %v", x)
	}
}

func TestEntityProgressFollowsKind(t *testing.T) {
	r := data.DefaultRoundTable().Get(1)
	item := &component.Entity{Kind: component.KindCollectible, SpawnMs: 100}
	if p := EntityProgress(item, 100+r.FallMs, r); p != 1 {
		t.Fatalf("collectible progress = %v", p)
	}
	shark := &component.Entity{Kind: component.KindHazard, SpawnMs: 100}
	if p, want := EntityProgress(shark, 1100, r), HazardProgress(100, 1100, r); p != want {
		t.Fatalf("hazard progress = %v, want %v", p, want)
	}
}

func TestJump(t *testing.T) {
	p := Player{Jumped: true, JumpStartMs: 1000}
	if !p.Airborne(1000, 620) || !p.Airborne(1619, 620) {
		t.Fatalf("expected airborne during jump")
	}
	if p.Airborne(1620, 620) || p.Airborne(999, 620) {
		t.Fatalf("expected grounded outside jump")
	}
	if off := JumpOffset(1000, 1310, 620, 18); off != 18 {
		t.Fatalf("apex offset = %v", off)
	}
	if off := JumpOffset(1000, 1620, 620, 18); off != 0 {
		t.Fatalf("landed offset = %v", off)
	}
}

func TestNextPhaseIsTotal(t *testing.T) {
	for p := Phase(0); p < phaseCount; p++ {
		for tr := TriggerInput; tr <= TriggerPlayAgain; tr++ {
			to, ok := NextPhase(p, tr)
			if !ok && to != p {
				t.Fatalf("%v/%v: rejected transition changed phase to %v", p, tr, to)
			}
		}
	}
	path := []struct {
		from Phase
		on   Trigger
		to   Phase
	}{
		{PhaseTitle, TriggerInput, PhaseHowTo},
		{PhaseHowTo, TriggerInput, PhaseReady},
		{PhaseReady, TriggerInput, PhaseRhythm},
		{PhaseRhythm, TriggerRoundElapsed, PhaseInterstitial},
		{PhaseInterstitial, TriggerInput, PhaseRhythm},
		{PhaseRhythm, TriggerMeterFull, PhaseStrip},
		{PhaseStrip, TriggerStripComplete, PhaseVictory},
		{PhaseVictory, TriggerVictoryDone, PhaseEnd},
		{PhaseEnd, TriggerPlayAgain, PhaseTitle},
	}
	for _, step := range path {
		to, ok := NextPhase(step.from, step.on)
		if !ok || to != step.to {
			t.Fatalf("%v/%v = %v,%v want %v", step.from, step.on, to, ok, step.to)
		}
	}
	if _, ok := NextPhase(PhaseEnd, TriggerInput); ok {
		t.Fatalf("End must only leave on play again")
	}
	if _, ok := NextPhase(PhaseVictory, TriggerInput); ok {
		t.Fatalf("Victory must ignore input")
	}
}

func TestAddMeterClamps(t *testing.T) {
	p := Progress{Meter: 95}
	if got := p.AddMeter(12); got != 5 || p.Meter != 100 {
		t.Fatalf("applied %v meter %v", got, p.Meter)
	}
	p.Meter = 3
	if got := p.AddMeter(-7); got != -3 || p.Meter != 0 {
		t.Fatalf("applied %v meter %v", got, p.Meter)
	}
}

func TestLiveEntitiesOrderAndCull(t *testing.T) {
	s := newTestState()
	late := s.SpawnEntity(component.Entity{SpawnMs: 1300, Round: 1})
	early := s.SpawnEntity(component.Entity{SpawnMs: 0, Round: 1})
	mid := s.SpawnEntity(component.Entity{SpawnMs: 650, Round: 1})

	ids := s.LiveEntities()
	if len(ids) != 3 || ids[0] != early || ids[1] != mid || ids[2] != late {
		t.Fatalf("unexpected order %v", ids)
	}
	s.Cull(mid)
	s.Cull(mid)
	if got := s.LiveEntities(); len(got) != 2 {
		t.Fatalf("culled entity still live: %v", got)
	}
	s.World.FlushDestroyQueue()
	if _, ok := s.Entities.Get(mid); ok || s.World.Alive(mid) {
		t.Fatalf("culled entity not destroyed on flush")
	}
}

func TestEffectsExpire(t *testing.T) {
	s := newTestState()
	s.AddEffect(EffectLaneFlash, "left", 22, 0)
	s.AddEffect(EffectSparkle, "", 40, 40)
	s.Clock.NowMs = 180
	s.ExpireEffects()
	if s.HasEffect(EffectLaneFlash) || !s.HasEffect(EffectSparkle) {
		t.Fatalf("unexpected effects after 180ms: %+v", s.Effects)
	}
}

func TestSnapshotJSON(t *testing.T) {
	s := newTestState()
	s.Phase = PhaseRhythm
	s.SpawnEntity(component.Entity{Kind: component.KindCollectible, Lane: component.LaneLeft, Round: 1})
	s.Clock.NowMs = 1250

	raw, err := json.Marshal(BuildSnapshot(s))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"phase", "clockMs", "player", "partyMeter", "activeItems", "feedback", "coordinateSystem"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("snapshot missing %q", key)
		}
	}
	items := decoded["activeItems"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	item := items[0].(map[string]any)
	if item["x"].(float64) != 22 || item["y"].(float64) != 36 {
		t.Fatalf("unexpected item position %v,%v", item["x"], item["y"])
	}
}
