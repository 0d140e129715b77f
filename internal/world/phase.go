package world

// Phase is the top-level narrative state. Exactly one is active.
type Phase int

const (
	PhaseTitle Phase = iota
	PhaseHowTo
	PhaseReady
	PhaseRhythm
	PhaseInterstitial
	PhaseStrip
	PhaseVictory
	PhaseEnd

	phaseCount
)

var phaseNames = [phaseCount]string{
	"title", "howto", "ready", "rhythm", "interstitial", "strip", "victory", "end",
}

func (p Phase) String() string {
	if p < 0 || p >= phaseCount {
		return "unknown"
	}
	return phaseNames[p]
}

// ClockRuns reports whether the logical clock advances in this phase.
func (p Phase) ClockRuns() bool {
	switch p {
	case PhaseRhythm, PhaseStrip, PhaseVictory:
		return true
	}
	return false
}

// Trigger is a condition that can move the machine to another phase.
type Trigger int

const (
	TriggerInput           Trigger = iota // any press, tap or swipe
	TriggerMeterFull                      // meter reached 100
	TriggerRoundElapsed                   // round over, more rounds remain or overtime
	TriggerFinalRoundGrace                // final round over with meter above the grace threshold
	TriggerStripComplete                  // scheduled victory time reached
	TriggerVictoryDone                    // prop settled and end delay passed
	TriggerPlayAgain                      // explicit restart from End
)

func (t Trigger) String() string {
	switch t {
	case TriggerInput:
		return "input"
	case TriggerMeterFull:
		return "meter_full"
	case TriggerRoundElapsed:
		return "round_elapsed"
	case TriggerFinalRoundGrace:
		return "final_round_grace"
	case TriggerStripComplete:
		return "strip_complete"
	case TriggerVictoryDone:
		return "victory_done"
	case TriggerPlayAgain:
		return "play_again"
	default:
		return "unknown"
	}
}

type transitionKey struct {
	from Phase
	on   Trigger
}

var transitions = map[transitionKey]Phase{
	{PhaseTitle, TriggerInput}:            PhaseHowTo,
	{PhaseHowTo, TriggerInput}:            PhaseReady,
	{PhaseReady, TriggerInput}:            PhaseRhythm,
	{PhaseRhythm, TriggerMeterFull}:       PhaseStrip,
	{PhaseRhythm, TriggerFinalRoundGrace}: PhaseStrip,
	{PhaseRhythm, TriggerRoundElapsed}:    PhaseInterstitial,
	{PhaseInterstitial, TriggerInput}:     PhaseRhythm,
	{PhaseStrip, TriggerStripComplete}:    PhaseVictory,
	{PhaseVictory, TriggerVictoryDone}:    PhaseEnd,
	{PhaseEnd, TriggerPlayAgain}:          PhaseTitle,
}

// NextPhase is the total transition function. Pairs without a transition
// return (from, false).
func NextPhase(from Phase, on Trigger) (Phase, bool) {
	to, ok := transitions[transitionKey{from, on}]
	if !ok {
		return from, false
	}
	return to, true
}
