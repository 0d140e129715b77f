package component

// Lane is one of the three horizontal player positions.
type Lane int

const (
	LaneLeft Lane = iota
	LaneCenter
	LaneRight
)

var laneNames = [...]string{"left", "center", "right"}

func (l Lane) String() string {
	if l < LaneLeft || l > LaneRight {
		return "unknown"
	}
	return laneNames[l]
}

// Valid reports whether l is one of the three lanes.
func (l Lane) Valid() bool {
	return l >= LaneLeft && l <= LaneRight
}

// ParseLane maps a lane name back to its value.
func ParseLane(s string) (Lane, bool) {
	for i, n := range laneNames {
		if n == s {
			return Lane(i), true
		}
	}
	return LaneCenter, false
}

// LaneFromX classifies a horizontal screen percentage by third.
func LaneFromX(x float64) Lane {
	switch {
	case x < 33:
		return LaneLeft
	case x > 66:
		return LaneRight
	default:
		return LaneCenter
	}
}

// Side is the edge a hazard enters from.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}
