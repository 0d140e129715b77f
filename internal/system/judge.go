package system

import (
	"github.com/fullweasel/server/internal/component"
	"github.com/fullweasel/server/internal/core/ecs"
	"github.com/fullweasel/server/internal/core/event"
	"github.com/fullweasel/server/internal/data"
	"github.com/fullweasel/server/internal/scripting"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

// Judge applies the side effects of every resolution: resolved flag, meter
// change through the Scorer, feedback line, transient effects and events.
// All resolution paths go through it so each entity is judged at most once.
type Judge struct {
	state  *world.State
	bus    *event.Bus
	scorer Scorer
	log    *zap.Logger
}

func NewJudge(state *world.State, bus *event.Bus, scorer Scorer, log *zap.Logger) *Judge {
	if scorer == nil {
		scorer = StaticScorer{}
	}
	return &Judge{state: state, bus: bus, scorer: scorer, log: log}
}

func (j *Judge) award(outcome component.Outcome, distanceMs int64, fallback float64) (applied float64) {
	delta := j.scorer.MeterDelta(scripting.MeterContext{
		Outcome:    outcome.String(),
		Round:      j.state.Progress.Round,
		Meter:      j.state.Progress.Meter,
		DistanceMs: distanceMs,
	}, fallback)
	return j.state.Progress.AddMeter(delta)
}

func (j *Judge) markResolved(e *component.Entity, outcome component.Outcome) {
	e.Resolved = true
	e.ResolvedAt = j.state.Clock.NowMs
	e.Outcome = outcome
}

// Collect resolves a collectible as perfect, good or collect. It returns
// false when the entity is missing or already resolved.
func (j *Judge) Collect(id ecs.EntityID, outcome component.Outcome, distanceMs int64) bool {
	e, ok := j.state.Entities.Get(id)
	if !ok || !e.Active() || e.Kind != component.KindCollectible {
		return false
	}
	cfg := j.state.Cfg
	var fallback float64
	switch outcome {
	case component.OutcomePerfect:
		fallback = cfg.PerfectAward
	case component.OutcomeGood:
		fallback = cfg.GoodAward
	default:
		outcome = component.OutcomeCollect
		fallback = cfg.CollectAward
	}
	j.markResolved(e, outcome)
	applied := j.award(outcome, distanceMs, fallback)
	j.state.Say(data.PoolSuccess)

	now := j.state.Clock.NowMs
	x := world.LaneX(e.Lane)
	y := world.CollectibleY(world.CollectibleProgress(e.SpawnMs, now, j.state.Rounds.Get(e.Round)))
	if outcome == component.OutcomePerfect {
		j.state.AddEffect(world.EffectPerfectPop, e.Lane.String(), x, y)
	} else {
		j.state.AddEffect(world.EffectSparkle, e.Lane.String(), x, y)
	}

	event.Emit(j.bus, event.Judged{
		EntityID:   id,
		Lane:       e.Lane.String(),
		Outcome:    outcome.String(),
		DistanceMs: distanceMs,
		MeterDelta: applied,
		Meter:      j.state.Progress.Meter,
		ClockMs:    now,
	})
	j.log.Debug("collectible judged",
		zap.Stringer("entity", id),
		zap.Stringer("outcome", outcome),
		zap.Int64("distance_ms", distanceMs),
		zap.Float64("meter", j.state.Progress.Meter),
	)
	return true
}

// Miss is the terminal miss of a collectible that passed the hit line.
// A second call for the same entity does nothing.
func (j *Judge) Miss(id ecs.EntityID) bool {
	e, ok := j.state.Entities.Get(id)
	if !ok || e.Resolved {
		return false
	}
	j.markResolved(e, component.OutcomeMiss)
	if e.Kind != component.KindCollectible {
		return true
	}
	var applied float64
	if pen := j.state.Cfg.MissPenalty; pen > 0 {
		applied = j.award(component.OutcomeMiss, 0, -pen)
	}
	j.state.Say(data.PoolMiss)
	event.Emit(j.bus, event.Judged{
		EntityID:   id,
		Lane:       e.Lane.String(),
		Outcome:    component.OutcomeMiss.String(),
		MeterDelta: applied,
		Meter:      j.state.Progress.Meter,
		ClockMs:    j.state.Clock.NowMs,
	})
	return true
}

// TapMiss records a tap that matched nothing. The meter is untouched.
func (j *Judge) TapMiss(lane component.Lane) {
	j.state.Say(data.PoolTapMiss)
	event.Emit(j.bus, event.Judged{
		Lane:    lane.String(),
		Outcome: "tap_miss",
		Meter:   j.state.Progress.Meter,
		ClockMs: j.state.Clock.NowMs,
	})
}

// Hazard resolves a hazard crossing the player: dodge when airborne, hit
// otherwise. The result is final.
func (j *Judge) Hazard(id ecs.EntityID, airborne bool) bool {
	e, ok := j.state.Entities.Get(id)
	if !ok || !e.Active() || e.Kind != component.KindHazard {
		return false
	}
	cfg := j.state.Cfg
	now := j.state.Clock.NowMs
	px := world.PlayerX(j.state.Player.Lane)

	var outcome component.Outcome
	var applied float64
	if airborne {
		outcome = component.OutcomeDodge
		j.markResolved(e, outcome)
		applied = j.award(outcome, 0, cfg.DodgeAward)
		j.state.Say(data.PoolDodge)
		j.state.AddEffect(world.EffectSparkle, "", px, world.HazardY)
	} else {
		outcome = component.OutcomeHit
		j.markResolved(e, outcome)
		applied = j.award(outcome, 0, -cfg.HazardPenalty)
		j.state.Say(data.PoolHazardHit)
		j.state.ShakeUntil = now + cfg.HitReactionMs
		j.state.AddEffect(world.EffectHitReaction, "", px, world.PlayerY)
	}

	event.Emit(j.bus, event.HazardResolved{
		EntityID:   id,
		Outcome:    outcome.String(),
		MeterDelta: applied,
		Meter:      j.state.Progress.Meter,
		ClockMs:    now,
	})
	j.log.Debug("hazard resolved",
		zap.Stringer("entity", id),
		zap.Stringer("outcome", outcome),
		zap.Float64("meter", j.state.Progress.Meter),
	)
	return true
}
