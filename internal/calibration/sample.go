package calibration

import (
	"fmt"
	"time"

	"github.com/agbru/argontune/internal/params"
)

// Sample is one timed hash. It is never modified once recorded.
type Sample struct {
	Params  params.CostParameters `json:"params"`
	Elapsed time.Duration         `json:"elapsed"`
	Cost    uint64                `json:"derivedCost"`
}

// NewSample records the elapsed time of p, deriving its cost.
func NewSample(p params.CostParameters, elapsed time.Duration) Sample {
	return Sample{Params: p, Elapsed: elapsed, Cost: p.DerivedCost()}
}

// ElapsedMs returns the elapsed time in fractional milliseconds.
func (s Sample) ElapsedMs() float64 {
	return float64(s.Elapsed) / float64(time.Millisecond)
}

func (s Sample) String() string {
	return fmt.Sprintf("%s elapsed=%s cost=%d", s.Params, s.Elapsed, s.Cost)
}

// Series holds the samples of one run in measurement order.
type Series []Sample

// Decision is returned by an OnSample callback after every measurement.
type Decision int

const (
	// Continue lets the run proceed.
	Continue Decision = iota
	// Stop ends the run; the samples recorded so far are returned.
	Stop
)

func (d Decision) String() string {
	if d == Stop {
		return "stop"
	}
	return "continue"
}
