package orchestration

import (
	"time"

	"github.com/agbru/argontune/internal/calibration"
)

// ProgressTracker follows a calibration run from its samples. Both the
// spinner and the verbose log use it to describe how far the search is from
// the budget.
type ProgressTracker struct {
	budget  time.Duration
	samples int
	last    calibration.Sample
	best    calibration.Sample
	hasBest bool
}

// NewProgressTracker creates a tracker for budget. Returns nil if budget <= 0.
func NewProgressTracker(budget time.Duration) *ProgressTracker {
	if budget <= 0 {
		return nil
	}
	return &ProgressTracker{budget: budget}
}

// TrackedProgress holds the result of processing a single sample.
type TrackedProgress struct {
	// Samples is the number of samples seen so far.
	Samples int
	// Last is the sample just processed.
	Last calibration.Sample
	// Fraction is Last.Elapsed relative to the budget, capped at 1.
	Fraction float64
	// Best is the slowest sample within budget so far.
	Best calibration.Sample
	// HasBest is false until a sample fits the budget.
	HasBest bool
}

// Update processes one sample and returns the tracked state.
func (p *ProgressTracker) Update(s calibration.Sample) TrackedProgress {
	p.samples++
	p.last = s
	if s.Elapsed <= p.budget && (!p.hasBest || s.Elapsed > p.best.Elapsed) {
		p.best, p.hasBest = s, true
	}
	return p.Current()
}

// Current returns the tracked state without updating.
func (p *ProgressTracker) Current() TrackedProgress {
	fraction := float64(p.last.Elapsed) / float64(p.budget)
	if fraction > 1 {
		fraction = 1
	}
	return TrackedProgress{
		Samples:  p.samples,
		Last:     p.last,
		Fraction: fraction,
		Best:     p.best,
		HasBest:  p.hasBest,
	}
}

// Budget returns the budget being tracked.
func (p *ProgressTracker) Budget() time.Duration { return p.budget }

// DrainChannel reads all samples from the channel without processing.
func DrainChannel(progressChan <-chan calibration.Sample) {
	for range progressChan {
	}
}
