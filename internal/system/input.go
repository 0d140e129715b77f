package system

import (
	"time"

	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/net"
	"github.com/fullweasel/server/internal/net/message"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

// SessionSource hands newly accepted sessions to the game loop.
type SessionSource interface {
	NewSessions() <-chan *net.Session
}

// InputSystem accepts new sessions, drops closed ones and drains each
// session's inbound queue through the message registry. Phase 0 (Input).
type InputSystem struct {
	source     SessionSource
	registry   *message.Registry
	store      *net.SessionStore
	state      *world.State
	maxPerTick int
	onConnect  func(*net.Session)
	log        *zap.Logger
}

// NewInputSystem wires the input side. onConnect may be nil; it runs once per
// accepted session on the game loop goroutine.
func NewInputSystem(
	source SessionSource,
	registry *message.Registry,
	store *net.SessionStore,
	state *world.State,
	maxPerTick int,
	onConnect func(*net.Session),
	log *zap.Logger,
) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 1
	}
	return &InputSystem{
		source:     source,
		registry:   registry,
		store:      store,
		state:      state,
		maxPerTick: maxPerTick,
		onConnect:  onConnect,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	if s.source != nil {
	accept:
		for {
			select {
			case sess := <-s.source.NewSessions():
				s.store.Add(sess)
				if s.onConnect != nil {
					s.onConnect(sess)
				}
			default:
				break accept
			}
		}
	}

	var closed []uint64
	s.store.ForEach(func(sess *net.Session) {
		if sess.IsClosed() {
			closed = append(closed, sess.ID)
			return
		}
		s.drain(sess)
	})
	for _, id := range closed {
		s.store.Remove(id)
		s.log.Info("client disconnected", zap.Uint64("session", id))
	}

	// Early flush so replies to this tick's input start writing while the
	// simulation phases run. OutputSystem flushes the rest.
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case raw := <-sess.InQueue:
			// Phase is re-read per message: a press can move Title to HowTo
			// and the next message must be gated against the new phase.
			if err := s.registry.Dispatch(sess, s.state.Phase, raw); err != nil {
				s.log.Debug("message dispatch error",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}
