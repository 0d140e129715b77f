package world

import "github.com/fullweasel/server/internal/component"

// InputKind classifies a player action after transport decoding.
type InputKind int

const (
	InputPress     InputKind = iota // generic "continue" press on menu screens
	InputTap                        // pointer down in a lane
	InputSwipe                      // upward swipe, jumps during rhythm
	InputPlayAgain                  // explicit restart from the end screen
)

func (k InputKind) String() string {
	switch k {
	case InputPress:
		return "press"
	case InputTap:
		return "tap"
	case InputSwipe:
		return "swipe"
	case InputPlayAgain:
		return "play_again"
	default:
		return "unknown"
	}
}

// Input is one player action. Lane is meaningful for taps only.
type Input struct {
	Kind InputKind
	Lane component.Lane
}
