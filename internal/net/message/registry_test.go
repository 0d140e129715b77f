package message

import (
	"testing"

	"github.com/fullweasel/server/internal/component"
	"github.com/fullweasel/server/internal/net"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

func TestDispatchRoutesByType(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got []Envelope
	reg.Register(TypeTap, []world.Phase{world.PhaseRhythm}, func(_ *net.Session, msg Envelope) {
		got = append(got, msg)
	})

	if err := reg.Dispatch(nil, world.PhaseRhythm, []byte(`{"type":"tap","lane":"left"}`)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(got) != 1 || got[0].Lane != "left" {
		t.Fatalf("handler not called with decoded message: %+v", got)
	}
}

func TestDispatchPhaseGate(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	called := false
	reg.Register(TypePlayAgain, []world.Phase{world.PhaseEnd}, func(*net.Session, Envelope) { called = true })

	if err := reg.Dispatch(nil, world.PhaseRhythm, []byte(`{"type":"play_again"}`)); err == nil {
		t.Fatalf("expected phase rejection")
	}
	if called {
		t.Fatalf("handler ran in a disallowed phase")
	}
}

func TestDispatchUnknownAndMalformed(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if err := reg.Dispatch(nil, world.PhaseTitle, []byte(`{"type":"dance"}`)); err != nil {
		t.Fatalf("unknown types should be ignored, got %v", err)
	}
	if err := reg.Dispatch(nil, world.PhaseTitle, []byte(`{not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDispatchRecoversPanics(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(TypePress, nil, func(*net.Session, Envelope) { panic("boom") })
	if err := reg.Dispatch(nil, world.PhaseTitle, []byte(`{"type":"press"}`)); err == nil {
		t.Fatalf("expected panic to surface as error")
	}
}

func TestPointerLane(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	cases := []struct {
		x    *float64
		want component.Lane
		ok   bool
	}{
		{f(10), component.LaneLeft, true},
		{f(50), component.LaneCenter, true},
		{f(90), component.LaneRight, true},
		{nil, component.LaneCenter, false},
		{f(140), component.LaneCenter, false},
	}
	for _, c := range cases {
		lane, ok := Envelope{Type: TypePointer, X: c.x}.PointerLane()
		if lane != c.want || ok != c.ok {
			t.Errorf("PointerLane(%v) = %v,%v want %v,%v", c.x, lane, ok, c.want, c.ok)
		}
	}
}

func TestSwipeUp(t *testing.T) {
	short, long := 20.0, 80.0
	if (Envelope{DY: &short}).SwipeUp() {
		t.Errorf("short swipe accepted")
	}
	if !(Envelope{DY: &long}).SwipeUp() || !(Envelope{}).SwipeUp() {
		t.Errorf("valid swipe rejected")
	}
}
