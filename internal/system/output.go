package system

import (
	"time"

	coresys "github.com/fullweasel/server/internal/core/system"
	"github.com/fullweasel/server/internal/net"
	"github.com/fullweasel/server/internal/net/message"
	"github.com/fullweasel/server/internal/world"
	"go.uber.org/zap"
)

// SnapshotSource produces the current view for broadcast and tracing.
type SnapshotSource interface {
	Snapshot() world.Snapshot
	Ticks() uint64
}

// OutputSystem broadcasts a state message every `every` ticks and flushes
// all session buffers each tick. Phase 4 (Output).
type OutputSystem struct {
	source SnapshotSource
	store  *net.SessionStore
	every  int
	count  int
	log    *zap.Logger
}

func NewOutputSystem(source SnapshotSource, store *net.SessionStore, every int, log *zap.Logger) *OutputSystem {
	if every <= 0 {
		every = 1
	}
	return &OutputSystem{source: source, store: store, every: every, log: log}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.count++
	if s.count >= s.every && s.store.Count() > 0 {
		s.count = 0
		s.broadcast()
	}
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

// broadcast encodes once and shares the bytes across sessions.
func (s *OutputSystem) broadcast() {
	data, err := message.Encode(message.State{
		Type:  "state",
		Tick:  s.source.Ticks(),
		State: s.source.Snapshot(),
	})
	if err != nil {
		s.log.Error("encode state", zap.Error(err))
		return
	}
	s.store.ForEach(func(sess *net.Session) {
		sess.Send(data)
	})
}
