package system

import (
	"fmt"
	"time"

	"github.com/fullweasel/server/internal/component"
	"github.com/fullweasel/server/internal/config"
	"github.com/fullweasel/server/internal/core/ecs"
	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/world"
)

// Resolver is the collectible interaction strategy. Exactly one is active
// per engine; taps reach it through Tap, per-tick checks through Update.
type Resolver interface {
	coresys.System
	Mode() string
	Tap(lane component.Lane)
}

// NewResolver builds the strategy named by mode.
func NewResolver(mode string, state *world.State, judge *Judge) (Resolver, error) {
	switch mode {
	case config.ModeTap:
		return &TapResolver{state: state, judge: judge}, nil
	case config.ModeZone:
		return &ZoneResolver{state: state, judge: judge}, nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownMode, mode)
	}
}

// TapResolver judges a tap against the ideal hit time of collectibles in
// the tapped lane.
type TapResolver struct {
	state *world.State
	judge *Judge
}

func (r *TapResolver) Mode() string           { return config.ModeTap }
func (r *TapResolver) Phase() coresys.Phase   { return coresys.PhaseUpdate }
func (r *TapResolver) Update(_ time.Duration) {}

// Tap picks the unresolved collectible of lane closest to its hit time,
// within HitWindowMs inclusive. Ties go to the earlier spawn, then the lower
// id (LiveEntities order).
func (r *TapResolver) Tap(lane component.Lane) {
	st := r.state
	now := st.Clock.NowMs
	var (
		best     ecs.EntityID
		bestDist int64 = -1
	)
	for _, id := range st.LiveEntities() {
		e, _ := st.Entities.Get(id)
		if e.Kind != component.KindCollectible || !e.Active() || e.Lane != lane {
			continue
		}
		dist := world.HitTimeMs(e.SpawnMs, st.Rounds.Get(e.Round)) - now
		if dist < 0 {
			dist = -dist
		}
		if dist > st.Cfg.HitWindowMs {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = id, dist
		}
	}
	if bestDist < 0 {
		r.judge.TapMiss(lane)
		return
	}
	outcome := component.OutcomeGood
	if bestDist <= st.Cfg.PerfectWindowMs {
		outcome = component.OutcomePerfect
	}
	r.judge.Collect(best, outcome, bestDist)
}

// ZoneResolver collects any collectible inside the catch band while the
// player stands in its lane. Taps only move the player.
type ZoneResolver struct {
	state *world.State
	judge *Judge
}

func (r *ZoneResolver) Mode() string         { return config.ModeZone }
func (r *ZoneResolver) Phase() coresys.Phase { return coresys.PhaseUpdate }
func (r *ZoneResolver) Tap(_ component.Lane) {}

func (r *ZoneResolver) Update(_ time.Duration) {
	st := r.state
	if st.Phase != world.PhaseRhythm {
		return
	}
	now := st.Clock.NowMs
	for _, id := range st.LiveEntities() {
		e, _ := st.Entities.Get(id)
		if e.Kind != component.KindCollectible || !e.Active() || e.Lane != st.Player.Lane {
			continue
		}
		y := world.CollectibleY(world.CollectibleProgress(e.SpawnMs, now, st.Rounds.Get(e.Round)))
		if y >= st.Cfg.ZoneTop && y <= st.Cfg.ZoneBottom {
			r.judge.Collect(id, component.OutcomeCollect, 0)
		}
	}
}
