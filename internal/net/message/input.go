package message

import "github.com/fullweasel/server/internal/component"

// SwipeMinDY is the upward travel in pixels that counts as a swipe.
const SwipeMinDY = 45

// TapLane returns the lane named by a tap message.
func (m Envelope) TapLane() (component.Lane, bool) {
	return component.ParseLane(m.Lane)
}

// PointerLane classifies a pointer-down x (screen percent) by third.
func (m Envelope) PointerLane() (component.Lane, bool) {
	if m.X == nil || *m.X < 0 || *m.X > 100 {
		return component.LaneCenter, false
	}
	return component.LaneFromX(*m.X), true
}

// SwipeUp reports whether a swipe travelled far enough. A swipe without a
// distance was already classified by the client.
func (m Envelope) SwipeUp() bool {
	return m.DY == nil || *m.DY > SwipeMinDY
}
