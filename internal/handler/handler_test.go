package handler

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/fullweasel/server/internal/assets"
	"github.com/fullweasel/server/internal/component"
	"github.com/fullweasel/server/internal/config"
	"github.com/fullweasel/server/internal/game"
	"github.com/fullweasel/server/internal/net"
	"github.com/fullweasel/server/internal/net/message"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

func newDeps(t *testing.T) (*Deps, *message.Registry) {
	t.Helper()
	eng, err := game.New(game.Options{
		Gameplay: config.DefaultGameplay(),
		Seed:     11,
		Name:     "the full weasel",
		Honoree:  "Nana Cheese",
	})
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	m := assets.FallbackManifest()
	deps := &Deps{
		Engine:   eng,
		Catalog:  assets.Resolve(m),
		Playlist: assets.NewPlaylist([]string{"a.mp3", "b.mp3", "c.mp3"}),
		Rng:      rand.New(rand.NewSource(5)),
		Log:      zap.NewNop(),
		Media: game.Media{
			Background: assets.Background{Mode: assets.BackgroundPNG},
			Slideshow:  assets.Slideshow{Frames: m.SlideURLs(), Interval: 1400 * time.Millisecond},
			Degraded:   true,
		},
	}
	reg := message.NewRegistry(zap.NewNop())
	RegisterAll(reg, deps)
	return deps, reg
}

func testSession() *net.Session {
	return &net.Session{ID: 9, OutQueue: make(chan []byte, 8)}
}

func dispatch(t *testing.T, reg *message.Registry, deps *Deps, raw string) error {
	t.Helper()
	return reg.Dispatch(testSession(), deps.Engine.Phase(), []byte(raw))
}

func TestMenuFlowThroughMessages(t *testing.T) {
	deps, reg := newDeps(t)

	if err := dispatch(t, reg, deps, `{"type":"press"}`); err != nil {
		t.Fatalf("press: %v", err)
	}
	if err := dispatch(t, reg, deps, `{"type":"pointer","x":80}`); err != nil {
		t.Fatalf("pointer: %v", err)
	}
	if err := dispatch(t, reg, deps, `{"type":"swipe","dy":90}`); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if deps.Engine.Phase() != world.PhaseRhythm {
		t.Fatalf("expected rhythm, got %s", deps.Engine.Phase())
	}

	if err := dispatch(t, reg, deps, `{"type":"press"}`); err == nil {
		t.Fatal("press accepted during rhythm")
	}
	if err := dispatch(t, reg, deps, `{"type":"play_again"}`); err == nil {
		t.Fatal("play_again accepted during rhythm")
	}
}

func TestPointerMovesPlayerByThird(t *testing.T) {
	deps, reg := newDeps(t)
	for i := 0; i < 3; i++ {
		deps.Engine.Input(world.Input{Kind: world.InputPress})
	}

	cases := []struct {
		x    string
		lane component.Lane
	}{
		{"10", component.LaneLeft},
		{"50", component.LaneCenter},
		{"90", component.LaneRight},
	}
	for _, tc := range cases {
		if err := dispatch(t, reg, deps, `{"type":"pointer","x":`+tc.x+`}`); err != nil {
			t.Fatalf("pointer %s: %v", tc.x, err)
		}
		if got := deps.Engine.State().Player.Lane; got != tc.lane {
			t.Fatalf("x=%s moved player to %s, want %s", tc.x, got, tc.lane)
		}
	}

	// Out of range and unknown lanes are dropped.
	dispatch(t, reg, deps, `{"type":"pointer","x":140}`)
	dispatch(t, reg, deps, `{"type":"tap","lane":"up"}`)
	if got := deps.Engine.State().Player.Lane; got != component.LaneRight {
		t.Fatalf("invalid input moved player to %s", got)
	}
}

func TestShortSwipeDoesNotJump(t *testing.T) {
	deps, reg := newDeps(t)
	for i := 0; i < 3; i++ {
		deps.Engine.Input(world.Input{Kind: world.InputPress})
	}
	dispatch(t, reg, deps, `{"type":"swipe","dy":20}`)
	if deps.Engine.State().Player.Jumped {
		t.Fatal("short swipe jumped")
	}
	dispatch(t, reg, deps, `{"type":"swipe","dy":60}`)
	if !deps.Engine.State().Player.Jumped {
		t.Fatal("long swipe did not jump")
	}
}

func TestGreetSendsHello(t *testing.T) {
	deps, _ := newDeps(t)
	sess := testSession()
	Greet(sess, deps)
	sess.FlushOutput()

	var hello message.Hello
	select {
	case raw := <-sess.OutQueue:
		if err := json.Unmarshal(raw, &hello); err != nil {
			t.Fatalf("decode hello: %v", err)
		}
	default:
		t.Fatal("no hello queued")
	}
	if hello.Type != "hello" || hello.Session != 9 || hello.Mode != config.ModeTap {
		t.Fatalf("unexpected hello %+v", hello)
	}
	if hello.Banner != "HAPPY BIRTHDAY NANA CHEESE" || hello.Name != "The Full Weasel" {
		t.Fatalf("banner %q name %q", hello.Banner, hello.Name)
	}
	if hello.Background != assets.BackgroundPNG || !hello.Degraded || hello.SlideMs != 1400 {
		t.Fatalf("media fields %+v", hello)
	}
	if hello.Track == "" || len(hello.Catalog) == 0 || len(hello.DanceFrames) == 0 {
		t.Fatalf("catalog or track missing: %+v", hello)
	}
}

func TestNextTrackNeverRepeats(t *testing.T) {
	deps, reg := newDeps(t)
	sess := testSession()
	prev := deps.Playlist.Next(deps.Rng)
	for i := 0; i < 5; i++ {
		if err := reg.Dispatch(sess, world.PhaseVictory, []byte(`{"type":"next_track"}`)); err != nil {
			t.Fatalf("next_track: %v", err)
		}
		sess.FlushOutput()
		var tr message.Track
		if err := json.Unmarshal(<-sess.OutQueue, &tr); err != nil {
			t.Fatalf("decode track: %v", err)
		}
		if tr.URL == prev {
			t.Fatalf("track %q repeated", tr.URL)
		}
		prev = tr.URL
	}
}
