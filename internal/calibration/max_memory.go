package calibration

import (
	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/sysmon"
)

type marchState struct {
	memCeiling uint32
}

type maxMemoryMarch struct{}

func (maxMemoryMarch) prepare(s *search[marchState], res sysmon.Resources) params.CostParameters {
	start, ceiling := initialBounds(s.baseline, s.limits, res)
	s.state = marchState{memCeiling: ceiling}
	return start
}

func (maxMemoryMarch) next(s *search[marchState], _ Sample, current params.CostParameters) (params.CostParameters, bool) {
	switch {
	case current.MemoryCost < s.state.memCeiling:
		current.MemoryCost++
	case current.TimeCost < s.limits.TimeCost.Max:
		current.TimeCost++
	default:
		return current, false
	}
	return current, true
}

func (maxMemoryMarch) done(s *search[marchState], last Sample) bool {
	return budgetReached(s.budget, last)
}
