package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/agbru/argontune/internal/calibration"
	"github.com/agbru/argontune/internal/format"
	"github.com/agbru/argontune/internal/orchestration"
	"github.com/agbru/argontune/internal/ui"
	"github.com/briandowns/spinner"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the budget bar.
	ProgressBarWidth = 30
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing and maintenance.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s: s}
}

// DisplayProgress shows a spinner whose suffix describes the last measured
// sample against the budget. It returns, calling wg.Done, once progressChan
// is closed.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan calibration.Sample, req orchestration.Request, out io.Writer) {
	defer wg.Done()

	tracker := orchestration.NewProgressTracker(req.Budget)
	if tracker == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(" Calibrating " + req.Key().String())
	s.Start()
	defer s.Stop()

	for sample := range progressChan {
		s.UpdateSuffix(FormatProgress(tracker.Update(sample), tracker.Budget()))
	}
	fmt.Fprintln(out)
}

// FormatProgress renders one progress line for the spinner suffix.
func FormatProgress(p orchestration.TrackedProgress, budget time.Duration) string {
	color := ui.ColorGreen()
	if p.Last.Elapsed > budget {
		color = ui.ColorRed()
	}
	return fmt.Sprintf(" %s%s%s %3.0f%%  #%d  m=2^%d t=%d p=%d  %s%s%s / %s",
		color, progressBar(p.Fraction, ProgressBarWidth), ui.ColorReset(),
		p.Fraction*100, p.Samples,
		p.Last.Params.MemoryCost, p.Last.Params.TimeCost, p.Last.Params.Parallelism,
		color, format.FormatExecutionDuration(p.Last.Elapsed), ui.ColorReset(),
		format.FormatExecutionDuration(budget))
}

// progressBar generates a string representing a textual progress bar.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}
