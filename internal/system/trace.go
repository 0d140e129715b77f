package system

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/fullweasel/server/internal/core/event"
	coresys "github.com/fullweasel/server/internal/core/system"
	"go.uber.org/zap"
)

// TraceSink is the persistence side of a session trace.
type TraceSink interface {
	AppendEvent(tick uint64, clockMs int64, eventType string, payload any) error
	AppendFrame(tick uint64, clockMs int64, payload []byte) error
}

// TraceSystem records every bus event and a snapshot frame per tick.
// Phase 5 (Persist).
type TraceSystem struct {
	sink   TraceSink
	source SnapshotSource
	log    *zap.Logger
	failed bool
}

// NewTraceSystem subscribes to all events on bus. Events are delivered at
// the start of the tick after they were emitted.
func NewTraceSystem(sink TraceSink, source SnapshotSource, bus *event.Bus, log *zap.Logger) *TraceSystem {
	s := &TraceSystem{sink: sink, source: source, log: log}
	bus.SubscribeAll(s.record)
	return s
}

func (s *TraceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *TraceSystem) Update(_ time.Duration) {
	if s.failed {
		return
	}
	snap := s.source.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		s.fail("encode trace frame", err)
		return
	}
	if err := s.sink.AppendFrame(s.source.Ticks(), snap.ClockMs, data); err != nil {
		s.fail("append trace frame", err)
	}
}

func (s *TraceSystem) record(ev any) {
	if s.failed {
		return
	}
	snap := s.source.Snapshot()
	if err := s.sink.AppendEvent(s.source.Ticks(), snap.ClockMs, EventName(ev), ev); err != nil {
		s.fail("append trace event", err)
	}
}

// fail stops tracing after the first write error; the game keeps running.
func (s *TraceSystem) fail(msg string, err error) {
	s.failed = true
	s.log.Error(msg+", tracing disabled", zap.Error(err))
}

// EventName is the trace label of an event: its Go type name.
func EventName(ev any) string {
	t := reflect.TypeOf(ev)
	if t == nil {
		return "nil"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
