package pipeline

// RunState is the only cross-round state of a run: how many detection rounds
// have completed and how many are allowed. It is created per Run call and
// never shared, so concurrent runs cannot interfere.
type RunState struct {
	Round              int // completed detection rounds
	MaxRounds          int
	RepromptingEnabled bool
}

// ShouldReprompt is the per-round decision rule, evaluated after a round's
// aggregation: mask and retry iff reprompting is on and the round budget is
// not exhausted. Pure function of the state, which guarantees termination
// after at most MaxRounds rounds.
func (s *RunState) ShouldReprompt() bool {
	return s.RepromptingEnabled && s.Round < s.MaxRounds
}

// CompleteRound records that one detection round finished aggregation.
func (s *RunState) CompleteRound() {
	s.Round++
}
