package calibration

import (
	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/sysmon"
)

type staircaseState struct {
	baseline          uint32 // timeCost every memory level starts from
	memCeiling        uint32
	firstAttempt      bool // current parameters are the first at this memory level
	prevOvershotFirst bool // previous memory level overshot on its first attempt
}

type closestMatch struct{}

func (closestMatch) prepare(s *search[staircaseState], res sysmon.Resources) params.CostParameters {
	start, ceiling := initialBounds(s.baseline, s.limits, res)
	s.state = staircaseState{
		baseline:     start.TimeCost,
		memCeiling:   ceiling,
		firstAttempt: true,
	}
	return start
}

func (closestMatch) next(s *search[staircaseState], last Sample, current params.CostParameters) (params.CostParameters, bool) {
	st := &s.state
	overshot := last.Elapsed > s.budget
	overshotFirst := overshot && st.firstAttempt

	if !overshot && current.TimeCost < s.limits.TimeCost.Max {
		current.TimeCost++
		st.firstAttempt = false
		return current, true
	}

	// Overshoot, or timeCost exhausted at this memory level: climb one step.
	if overshotFirst && st.prevOvershotFirst {
		return current, false
	}
	if current.MemoryCost >= st.memCeiling {
		return current, false
	}
	st.prevOvershotFirst = overshotFirst
	st.firstAttempt = true
	current.MemoryCost++
	current.TimeCost = st.baseline
	return current, true
}

// done is never true: the staircase ends through next.
func (closestMatch) done(*search[staircaseState], Sample) bool { return false }
