package handler

import (
	"time"

	"github.com/fullweasel/server/internal/net"
	"github.com/fullweasel/server/internal/net/message"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

// Greet sends the hello message: asset catalog, background choice and the
// current music track. Called once per new session from the game loop.
func Greet(sess *net.Session, deps *Deps) {
	track := deps.Playlist.Current()
	if track == "" {
		track = deps.Playlist.Next(deps.Rng)
	}
	media := deps.Media
	hello := message.Hello{
		Type:        "hello",
		Session:     sess.ID,
		Name:        deps.Engine.Name(),
		Banner:      deps.Engine.BannerText(),
		Mode:        deps.Engine.Mode(),
		Controls:    world.Controls,
		Catalog:     deps.Catalog.Map(),
		DanceFrames: deps.Catalog.DanceFrames(),
		HitFrames:   deps.Catalog.HitFrames(),
		Background:  media.Background.Mode,
		Video:       media.Background.Video,
		Slides:      media.Slideshow.Frames,
		SlideMs:     int64(media.Slideshow.Interval / time.Millisecond),
		Track:       track,
		Degraded:    media.Degraded,
	}
	send(sess, hello, deps)
}

// HandleNextTrack picks another track for the client that finished one.
func HandleNextTrack(sess *net.Session, _ message.Envelope, deps *Deps) {
	send(sess, message.Track{Type: "track", URL: deps.Playlist.Next(deps.Rng)}, deps)
}

func send(sess *net.Session, v any, deps *Deps) {
	data, err := message.Encode(v)
	if err != nil {
		deps.Log.Error("encode outbound message", zap.Error(err))
		return
	}
	sess.Send(data)
}
