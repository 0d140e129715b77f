package message

import (
	"encoding/json"
	"fmt"

	"github.com/fullweasel/server/internal/net"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

// Inbound client message types.
const (
	TypePress     = "press"
	TypeTap       = "tap"
	TypePointer   = "pointer"
	TypeSwipe     = "swipe"
	TypePlayAgain = "play_again"
	TypeNextTrack = "next_track"
)

// Envelope is the decoded form of every client message.
type Envelope struct {
	Type string   `json:"type"`
	Lane string   `json:"lane,omitempty"` // tap
	X    *float64 `json:"x,omitempty"`    // pointer, screen percent
	DY   *float64 `json:"dy,omitempty"`   // swipe, upward pixels
}

// HandlerFunc handles one decoded message on the game loop goroutine.
type HandlerFunc func(sess *net.Session, msg Envelope)

type handlerEntry struct {
	fn            HandlerFunc
	allowedPhases map[world.Phase]bool
}

// Registry maps message types to handlers with phase-based access control.
type Registry struct {
	handlers map[string]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]*handlerEntry),
		log:      log,
	}
}

// Register maps a message type to a handler, restricted to the given
// phases. A nil phase list allows every phase.
func (reg *Registry) Register(typ string, phases []world.Phase, fn HandlerFunc) {
	var allowed map[world.Phase]bool
	if phases != nil {
		allowed = make(map[world.Phase]bool, len(phases))
		for _, p := range phases {
			allowed[p] = true
		}
	}
	reg.handlers[typ] = &handlerEntry{fn: fn, allowedPhases: allowed}
}

// Dispatch decodes raw, checks the current phase, and calls the handler.
// Unknown types are ignored; disallowed phases are reported as errors.
func (reg *Registry) Dispatch(sess *net.Session, phase world.Phase, raw []byte) error {
	var msg Envelope
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	reg.log.Debug("message received",
		zap.String("type", msg.Type),
		zap.Int("size", len(raw)),
		zap.Stringer("phase", phase),
	)

	entry, ok := reg.handlers[msg.Type]
	if !ok {
		reg.log.Debug("unknown message type", zap.String("type", msg.Type))
		return nil
	}
	if entry.allowedPhases != nil && !entry.allowedPhases[phase] {
		return fmt.Errorf("message %q not allowed in phase %s", msg.Type, phase)
	}
	return reg.safeCall(entry.fn, sess, msg)
}

// safeCall runs a handler with panic recovery so one bad message cannot
// take down the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess *net.Session, msg Envelope) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.String("type", msg.Type),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for %q: %v", msg.Type, rec)
		}
	}()
	fn(sess, msg)
	return nil
}
