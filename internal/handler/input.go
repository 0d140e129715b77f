package handler

import (
	"github.com/fullweasel/server/internal/net"
	"github.com/fullweasel/server/internal/net/message"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

// HandlePress is the generic "continue" gesture (keyboard, title button).
func HandlePress(_ *net.Session, _ message.Envelope, deps *Deps) {
	deps.Engine.Input(world.Input{Kind: world.InputPress})
}

// HandleTap processes a tap that already names its lane.
func HandleTap(sess *net.Session, msg message.Envelope, deps *Deps) {
	lane, ok := msg.TapLane()
	if !ok {
		deps.Log.Debug("tap with unknown lane", zap.Uint64("session", sessionID(sess)), zap.String("lane", msg.Lane))
		return
	}
	deps.Engine.Input(world.Input{Kind: world.InputTap, Lane: lane})
}

// HandlePointer classifies a raw pointer-down by screen third.
func HandlePointer(sess *net.Session, msg message.Envelope, deps *Deps) {
	lane, ok := msg.PointerLane()
	if !ok {
		deps.Log.Debug("pointer outside screen", zap.Uint64("session", sessionID(sess)))
		return
	}
	deps.Engine.Input(world.Input{Kind: world.InputTap, Lane: lane})
}

// HandleSwipe jumps during rhythm and counts as any input elsewhere.
// Short swipes are ignored.
func HandleSwipe(_ *net.Session, msg message.Envelope, deps *Deps) {
	if !msg.SwipeUp() {
		return
	}
	deps.Engine.Input(world.Input{Kind: world.InputSwipe})
}

// HandlePlayAgain restarts from the end screen.
func HandlePlayAgain(sess *net.Session, _ message.Envelope, deps *Deps) {
	deps.Engine.Input(world.Input{Kind: world.InputPlayAgain})
	deps.Log.Info("game restarted", zap.Uint64("session", sessionID(sess)))
}

func sessionID(sess *net.Session) uint64 {
	if sess == nil {
		return 0
	}
	return sess.ID
}
