package goals

// Analyzer computes the goal card values of the goals screen. All
// methods are pure and reentrant - no storage access, no shared state.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// ActiveCount counts the goals still being worked on.
func (a *Analyzer) ActiveCount(goals []Goal) int {
	var count int
	for _, g := range goals {
		if g.Status == GoalStatusActive {
			count++
		}
	}
	return count
}

// ProgressPercent returns how far along a goal is, as a percentage of
// its target. Goals without a meaningful target report 0 instead of
// blowing up on the division.
func (a *Analyzer) ProgressPercent(goal Goal) float64 {
	if goal.TargetValue <= 0 {
		return 0
	}
	return goal.CurrentValue / goal.TargetValue * 100
}

// ClampProgress caps a raw progress percentage to the [0, 100] range
// of a progress bar. Overachieved goals keep their raw value available
// through ProgressPercent.
func (a *Analyzer) ClampProgress(percent float64) float64 {
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	default:
		return percent
	}
}
