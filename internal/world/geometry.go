package world

import (
	"math"

	"github.com/fullweasel/server/internal/component"
	"github.com/fullweasel/server/internal/data"
)

// Screen geometry in percent, origin top-left, +x right, +y down.
const (
	CoordinateSystem = "x/y are percentages in screen space, origin top-left, +x right, +y down"

	CollectibleStartY = -15.0
	CollectibleTravel = 102.0 // y distance covered at progress 1 (the hit line)

	HazardY      = 84.0
	HazardStartX = -10.0
	HazardEndX   = 110.0
	HazardTravel = HazardEndX - HazardStartX

	PlayerY = 86.0
)

var laneX = [...]float64{component.LaneLeft: 22, component.LaneCenter: 50, component.LaneRight: 78}
var playerX = [...]float64{component.LaneLeft: 28, component.LaneCenter: 50, component.LaneRight: 72}

// LaneX is the horizontal centre of items falling in a lane.
func LaneX(l component.Lane) float64 {
	if !l.Valid() {
		return laneX[component.LaneCenter]
	}
	return laneX[l]
}

// PlayerX is the horizontal centre of the player standing in a lane.
func PlayerX(l component.Lane) float64 {
	if !l.Valid() {
		return playerX[component.LaneCenter]
	}
	return playerX[l]
}

// CollectibleProgress is 0 at spawn and 1 at the ideal hit time.
func CollectibleProgress(spawnMs, nowMs int64, r data.RoundConfig) float64 {
	return float64(nowMs-spawnMs) / float64(r.FallMs)
}

func CollectibleY(p float64) float64 {
	return CollectibleStartY + p*CollectibleTravel
}

// HitTimeMs is when a collectible crosses the hit line.
func HitTimeMs(spawnMs int64, r data.RoundConfig) int64 {
	return spawnMs + r.FallMs
}

// HazardProgress is 0 at the entry edge and 1 at the far edge.
func HazardProgress(spawnMs, nowMs int64, r data.RoundConfig) float64 {
	return float64(nowMs-spawnMs) * r.HazardSpeed / 1000 / HazardTravel
}

func HazardX(side component.Side, p float64) float64 {
	if side == component.SideRight {
		return HazardEndX - p*HazardTravel
	}
	return HazardStartX + p*HazardTravel
}

// EntityProgress returns the normalized progress of an entity at nowMs.
func EntityProgress(e *component.Entity, nowMs int64, r data.RoundConfig) float64 {
	if e.Kind == component.KindHazard {
		return HazardProgress(e.SpawnMs, nowMs, r)
	}
	return CollectibleProgress(e.SpawnMs, nowMs, r)
}

// Position derives an entity's screen position. It holds no state: equal
// inputs always give equal outputs.
func Position(e *component.Entity, nowMs int64, r data.RoundConfig) (x, y float64) {
	p := EntityProgress(e, nowMs, r)
	if e.Kind == component.KindHazard {
		return HazardX(e.Side, p), HazardY
	}
	return LaneX(e.Lane), CollectibleY(p)
}

// JumpOffset is the upward offset of a parabolic jump, 0 when grounded.
func JumpOffset(startMs, nowMs, jumpMs int64, height float64) float64 {
	if nowMs < startMs || nowMs-startMs >= jumpMs {
		return 0
	}
	p := float64(nowMs-startMs) / float64(jumpMs)
	return height * 4 * p * (1 - p)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
