package system

import "github.com/fullweasel/server/internal/scripting"

// Scorer turns a resolution into a meter delta. The fallback is the
// configured award (positive) or penalty (negative).
type Scorer interface {
	MeterDelta(ctx scripting.MeterContext, fallback float64) float64
}

// StaticScorer applies the configured numbers unchanged.
type StaticScorer struct{}

func (StaticScorer) MeterDelta(_ scripting.MeterContext, fallback float64) float64 {
	return fallback
}
