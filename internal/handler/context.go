package handler

import (
	"math/rand"

	"github.com/fullweasel/server/internal/assets"
	"github.com/fullweasel/server/internal/game"
	"github.com/fullweasel/server/internal/net"
	"github.com/fullweasel/server/internal/net/message"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all message handlers.
type Deps struct {
	Engine   *game.Engine
	Catalog  *assets.Catalog
	Media    game.Media
	Playlist *assets.Playlist
	Rng      *rand.Rand // music shuffling only; gameplay randomness lives in the engine
	Log      *zap.Logger
}

// Phases in which a press or tap counts as "any input".
var menuPhases = []world.Phase{
	world.PhaseTitle,
	world.PhaseHowTo,
	world.PhaseReady,
	world.PhaseInterstitial,
}

// RegisterAll registers all message handlers into the registry.
func RegisterAll(reg *message.Registry, deps *Deps) {
	pressPhases := append(append([]world.Phase{}, menuPhases...), world.PhaseStrip)
	playPhases := append(append([]world.Phase{}, pressPhases...), world.PhaseRhythm)

	reg.Register(message.TypePress, pressPhases,
		func(sess *net.Session, msg message.Envelope) {
			HandlePress(sess, msg, deps)
		},
	)
	reg.Register(message.TypeTap, playPhases,
		func(sess *net.Session, msg message.Envelope) {
			HandleTap(sess, msg, deps)
		},
	)
	reg.Register(message.TypePointer, playPhases,
		func(sess *net.Session, msg message.Envelope) {
			HandlePointer(sess, msg, deps)
		},
	)
	reg.Register(message.TypeSwipe, playPhases,
		func(sess *net.Session, msg message.Envelope) {
			HandleSwipe(sess, msg, deps)
		},
	)

	// End screen only
	reg.Register(message.TypePlayAgain, []world.Phase{world.PhaseEnd},
		func(sess *net.Session, msg message.Envelope) {
			HandlePlayAgain(sess, msg, deps)
		},
	)

	// Music is independent of the game phase.
	reg.Register(message.TypeNextTrack, nil,
		func(sess *net.Session, msg message.Envelope) {
			HandleNextTrack(sess, msg, deps)
		},
	)
}
