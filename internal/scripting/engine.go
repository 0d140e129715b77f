package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for scoring formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under scriptsDir/scoring.
// A missing directory is not an error; calls then use their Go fallbacks.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadDir(filepath.Join(scriptsDir, "scoring")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scoring scripts: %w", err)
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// MeterContext is packed into the table passed to calc_meter_delta.
type MeterContext struct {
	Outcome    string // perfect, good, collect, miss, dodge, hit
	Round      int
	Meter      float64 // meter before the delta is applied
	DistanceMs int64   // timing error for tap judgments, 0 otherwise
}

// Has reports whether a global Lua function with the given name is loaded.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// MeterDelta calls calc_meter_delta(ctx). The fallback is used when the
// function is missing, errors, or returns a non-number.
func (e *Engine) MeterDelta(ctx MeterContext, fallback float64) float64 {
	fn, ok := e.vm.GetGlobal("calc_meter_delta").(*lua.LFunction)
	if !ok {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("outcome", lua.LString(ctx.Outcome))
	t.RawSetString("round", lua.LNumber(ctx.Round))
	t.RawSetString("meter", lua.LNumber(ctx.Meter))
	t.RawSetString("distance_ms", lua.LNumber(ctx.DistanceMs))
	t.RawSetString("fallback", lua.LNumber(fallback))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_meter_delta error", zap.String("outcome", ctx.Outcome), zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua calc_meter_delta returned non-number",
			zap.String("outcome", ctx.Outcome), zap.String("type", result.Type().String()))
		return fallback
	}
	return float64(n)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
