package calibration

import (
	"strings"
	"time"

	apperrors "github.com/agbru/argontune/internal/errors"
	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/sysmon"
)

// Strategy names a calibration search policy.
type Strategy string

const (
	// ClosestMatch walks a staircase: raise timeCost until the budget is
	// overshot, then step memoryCost up and restart timeCost.
	ClosestMatch Strategy = "closest-match"
	// MaxMemory raises memoryCost to the host ceiling before touching timeCost.
	MaxMemory Strategy = "max-memory"
)

// Strategies lists every calibration strategy.
var Strategies = []Strategy{ClosestMatch, MaxMemory}

func (s Strategy) String() string { return string(s) }

// ParseStrategy resolves a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Strategies {
		if s == known {
			return s, nil
		}
	}
	return "", apperrors.UnknownPolicyError{Kind: "calibration", Name: name}
}

// search is the per-run context threaded through a policy.
type search[S any] struct {
	budget   time.Duration
	limits   params.Limits
	baseline params.CostParameters
	elapsed  time.Duration
	state    S
}

// policy is the set of decision points a strategy supplies to the driver.
type policy[S any] interface {
	// prepare returns the starting parameters and initializes s.state.
	prepare(s *search[S], res sysmon.Resources) params.CostParameters
	// next returns the parameters to measure after last, or false when the
	// search space is exhausted.
	next(s *search[S], last Sample, current params.CostParameters) (params.CostParameters, bool)
	// done reports whether last ends the run.
	done(s *search[S], last Sample) bool
}

// budgetReached is the default done predicate: the last sample hit the budget.
func budgetReached(budget time.Duration, last Sample) bool {
	return last.Elapsed >= budget
}

// initialBounds applies the hardware-derived bounds shared by every policy:
// two lanes per core and a memory ceiling from the free RAM. The starting
// memoryCost never exceeds the ceiling.
func initialBounds(base params.CostParameters, limits params.Limits, res sysmon.Resources) (params.CostParameters, uint32) {
	cores := res.CPUCores
	if cores < 1 {
		cores = 1
	}
	base.Parallelism = uint8(limits.Parallelism.Clamp(uint32(2 * cores)))

	ceiling := base.MemoryCost
	if kib := res.AvailableKiB(); kib > 0 {
		ceiling = params.MemoryExponent(kib)
	}
	ceiling = limits.MemoryCost.Clamp(ceiling)
	if base.MemoryCost > ceiling {
		base.MemoryCost = ceiling
	}
	return base, ceiling
}
