package system

import (
	"math"
	"time"

	"github.com/fullweasel/server/internal/component"
	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

// SpawnSystem emits beat-aligned collectibles and periodic hazards from the
// next-due cursors. Phase 2 (Update), rhythm only.
type SpawnSystem struct {
	state *world.State
	log   *zap.Logger
}

func NewSpawnSystem(state *world.State, log *zap.Logger) *SpawnSystem {
	return &SpawnSystem{state: state, log: log}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SpawnSystem) Update(_ time.Duration) {
	st := s.state
	if st.Phase != world.PhaseRhythm {
		return
	}
	now := st.Clock.NowMs
	r := st.Round()

	// Every due beat is emitted, even when several elapsed in one tick.
	beatEvery := scaledInterval(st.Cfg.BeatMs, r.SpawnIntervalScale)
	for now >= st.Spawn.NextBeatMs {
		s.spawnBeat(st.Spawn.Beat, st.Spawn.NextBeatMs)
		st.Spawn.Beat++
		st.Spawn.NextBeatMs += beatEvery
	}

	if st.Cfg.HazardIntervalMs <= 0 || now < st.Spawn.NextHazardMs {
		return
	}
	if st.HazardInFlight() {
		return // wait for the lane to clear
	}
	spawnAt := st.Spawn.NextHazardMs
	if spawnAt <= st.Clock.PrevMs {
		spawnAt = now // deferred by backpressure
	}
	side := component.SideLeft
	if st.Spawn.Hazards%2 == 1 {
		side = component.SideRight
	}
	id := st.SpawnEntity(component.Entity{
		Kind:    component.KindHazard,
		Subtype: component.SubtypeShark,
		Side:    side,
		SpawnMs: spawnAt,
		Round:   st.Progress.Round,
	})
	st.Spawn.Hazards++
	st.Spawn.NextHazardMs = spawnAt + scaledInterval(st.Cfg.HazardIntervalMs, r.SpawnIntervalScale)
	s.log.Debug("hazard spawned", zap.Stringer("entity", id), zap.Stringer("side", side), zap.Int64("at", spawnAt))
}

// Even beats fall in the left lane as cheese, odd beats in the right as tea.
func (s *SpawnSystem) spawnBeat(beat int, atMs int64) {
	lane, sub := component.LaneLeft, component.SubtypeCheese
	if beat%2 == 1 {
		lane, sub = component.LaneRight, component.SubtypeTea
	}
	s.state.SpawnEntity(component.Entity{
		Kind:    component.KindCollectible,
		Subtype: sub,
		Lane:    lane,
		SpawnMs: atMs,
		Round:   s.state.Progress.Round,
	})
}

func scaledInterval(baseMs int64, scale float64) int64 {
	if scale <= 0 {
		scale = 1
	}
	ms := int64(math.Round(float64(baseMs) / scale))
	if ms < 1 {
		ms = 1
	}
	return ms
}
