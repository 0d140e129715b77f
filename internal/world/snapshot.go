package world

import (
	"github.com/fullweasel/server/internal/component"
	"github.com/fullweasel/server/internal/physics"
)

// Controls lists the input gestures the game understands.
var Controls = []string{"tap-left", "tap-right", "tap-center", "swipe-up"}

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	Phase            string       `json:"phase"`
	ClockMs          int64        `json:"clockMs"`
	Mode             string       `json:"mode"`
	Controls         []string     `json:"controls"`
	CoordinateSystem string       `json:"coordinateSystem"`
	Player           PlayerView   `json:"player"`
	PartyMeter       float64      `json:"partyMeter"`
	Round            int          `json:"round"`
	Rounds           int          `json:"rounds"`
	Overtime         bool         `json:"overtime,omitempty"`
	Strip            StripView    `json:"strip"`
	ActiveItems      []ItemView   `json:"activeItems"`
	Effects          []Effect     `json:"effects"`
	Feedback         string       `json:"feedback"`
	Quote            string       `json:"quote,omitempty"`
	Banner           string       `json:"banner,omitempty"`
	Shaking          bool         `json:"shaking"`
	HitReaction      bool         `json:"hitReaction"`
	Victory          *VictoryView `json:"victory,omitempty"`
	Media            *MediaView   `json:"media,omitempty"`
}

type PlayerView struct {
	Lane     string  `json:"lane"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Airborne bool    `json:"airborne"`
}

type StripView struct {
	Taps          int      `json:"taps"`
	Target        int      `json:"target"`
	Thresholds    []int    `json:"thresholds"`
	StagesRemoved int      `json:"stagesRemoved"`
	Costume       []string `json:"costume"`
}

type ItemView struct {
	ID       uint64  `json:"id"`
	Kind     string  `json:"kind"`
	Subtype  string  `json:"subtype"`
	Lane     string  `json:"lane,omitempty"`
	Side     string  `json:"side,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Resolved bool    `json:"resolved"`
	Outcome  string  `json:"outcome,omitempty"`
}

type VictoryView struct {
	Confetti    []Confetti `json:"confetti"`
	RevealShown bool       `json:"revealShown"`
	PropY       float64    `json:"propY"`
	PropState   string     `json:"propState"`
	Settled     bool       `json:"settled"`
}

// MediaView carries the session's background and slideshow position.
type MediaView struct {
	Background string `json:"background"`
	Video      string `json:"video,omitempty"`
	Frame      int    `json:"frame"`
	PrevFrame  int    `json:"prevFrame"`
	Degraded   bool   `json:"degraded,omitempty"`
}

// BuildSnapshot derives the view from s. It never mutates s.
func BuildSnapshot(s *State) Snapshot {
	now := s.Clock.NowMs
	snap := Snapshot{
		Phase:            s.Phase.String(),
		ClockMs:          now,
		Mode:             s.Cfg.Mode,
		Controls:         Controls,
		CoordinateSystem: CoordinateSystem,
		Player: PlayerView{
			Lane:     s.Player.Lane.String(),
			X:        PlayerX(s.Player.Lane),
			Y:        round2(PlayerY - s.playerJumpOffset()),
			Airborne: s.Player.Airborne(now, s.Cfg.JumpMs),
		},
		PartyMeter: s.Progress.Meter,
		Round:      s.Progress.Round,
		Rounds:     s.Rounds.Count(),
		Overtime:   s.Overtime,
		Strip: StripView{
			Taps:          s.Progress.TapPower,
			Target:        s.Stages.Final(),
			Thresholds:    s.Stages.Thresholds(),
			StagesRemoved: s.Progress.StageIndex,
			Costume:       s.Costume(),
		},
		ActiveItems: make([]ItemView, 0, s.Entities.Len()),
		Effects:     append([]Effect{}, s.Effects...),
		Feedback:    s.Feedback,
		Quote:       s.Quote,
		Shaking:     s.Shaking(),
		HitReaction: s.HasEffect(EffectHitReaction),
	}

	for _, id := range s.LiveEntities() {
		e, _ := s.Entities.Get(id)
		x, y := Position(e, now, s.Rounds.Get(e.Round))
		item := ItemView{
			ID:       uint64(id),
			Kind:     e.Kind.String(),
			Subtype:  e.Subtype.String(),
			X:        round2(x),
			Y:        round2(y),
			Resolved: e.Resolved,
		}
		if e.Kind == component.KindHazard {
			item.Side = e.Side.String()
		} else {
			item.Lane = e.Lane.String()
		}
		if e.Resolved {
			item.Outcome = e.Outcome.String()
		}
		snap.ActiveItems = append(snap.ActiveItems, item)
	}

	if s.Phase == PhaseVictory || s.Phase == PhaseEnd {
		v := &VictoryView{
			Confetti:    s.Victory.Confetti,
			RevealShown: s.Victory.RevealShown,
			Settled:     s.Victory.Settled,
			PropState:   physics.Waiting.String(),
		}
		if p := s.Victory.Prop; p != nil {
			v.PropY = round2(p.Y)
			v.PropState = p.State.String()
		}
		snap.Victory = v
	}
	return snap
}

func (s *State) playerJumpOffset() float64 {
	if !s.Player.Jumped {
		return 0
	}
	return JumpOffset(s.Player.JumpStartMs, s.Clock.NowMs, s.Cfg.JumpMs, s.Cfg.JumpHeight)
}
