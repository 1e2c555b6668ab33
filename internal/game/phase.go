package game

// Phase is a step of the round cycle
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseDealing
	PhaseDiscarding
	PhasePlaying
	PhaseShowing
	PhaseRoundEnd
	PhaseGameOver
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseDealing:
		return "dealing"
	case PhaseDiscarding:
		return "discarding"
	case PhasePlaying:
		return "playing"
	case PhaseShowing:
		return "showing"
	case PhaseRoundEnd:
		return "round end"
	case PhaseGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

var transitions = map[Phase][]Phase{
	PhaseWaiting:    {PhaseDealing},
	PhaseDealing:    {PhaseDiscarding, PhasePlaying},
	PhaseDiscarding: {PhasePlaying},
	PhasePlaying:    {PhaseShowing},
	PhaseShowing:    {PhaseRoundEnd},
	PhaseRoundEnd:   {PhaseDealing, PhaseGameOver},
}

// CanTransition reports whether the round cycle allows moving from p to next.
// Dealing may go straight to Playing when no discards are required.
func (p Phase) CanTransition(next Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}
