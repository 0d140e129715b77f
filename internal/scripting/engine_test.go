package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newEngineWith(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if script != "" {
		scoring := filepath.Join(dir, "scoring")
		if err := os.MkdirAll(scoring, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(scoring, "meter.lua"), []byte(script), 0o644); err != nil {
			t.Fatalf("write script: %v", err)
		}
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestMeterDeltaMissingFunctionUsesFallback(t *testing.T) {
	e := newEngineWith(t, "")
	if e.Has("calc_meter_delta") {
		t.Fatalf("unexpected function in empty engine")
	}
	if got := e.MeterDelta(MeterContext{Outcome: "perfect", Round: 1}, 12); got != 12 {
		t.Fatalf("expected fallback 12, got %v", got)
	}
}

func TestMeterDeltaCallsScript(t *testing.T) {
	e := newEngineWith(t, `
function calc_meter_delta(ctx)
  if ctx.outcome == "hit" then return -ctx.round end
  return ctx.fallback * 2
end
`)
	if got := e.MeterDelta(MeterContext{Outcome: "good", Round: 1}, 9); got != 18 {
		t.Fatalf("expected 18, got %v", got)
	}
	if got := e.MeterDelta(MeterContext{Outcome: "hit", Round: 3}, -7); got != -3 {
		t.Fatalf("expected -3, got %v", got)
	}
}

func TestMeterDeltaScriptErrorFallsBack(t *testing.T) {
	e := newEngineWith(t, `
function calc_meter_delta(ctx)
  error("boom")
end
`)
	if got := e.MeterDelta(MeterContext{Outcome: "dodge"}, 5); got != 5 {
		t.Fatalf("expected fallback on error, got %v", got)
	}
	// VM still usable after a protected error.
	if got := e.MeterDelta(MeterContext{Outcome: "dodge"}, 4); got != 4 {
		t.Fatalf("expected fallback on second call, got %v", got)
	}
}

func TestMeterDeltaNonNumberFallsBack(t *testing.T) {
	e := newEngineWith(t, `function calc_meter_delta(ctx) return "lots" end`)
	if got := e.MeterDelta(MeterContext{Outcome: "collect"}, 8); got != 8 {
		t.Fatalf("expected fallback for string result, got %v", got)
	}
}

func TestBundledScriptLoads(t *testing.T) {
	e, err := NewEngine(filepath.Join("..", "..", "scripts"), zap.NewNop())
	if err != nil {
		t.Fatalf("load bundled scripts: %v", err)
	}
	defer e.Close()
	if got := e.MeterDelta(MeterContext{Outcome: "perfect", Round: 1}, 12); got != 12 {
		t.Fatalf("round 1 perfect: expected 12, got %v", got)
	}
	if got := e.MeterDelta(MeterContext{Outcome: "hit", Round: 3}, -7); got != -7 {
		t.Fatalf("penalties pass through unchanged, got %v", got)
	}
}
