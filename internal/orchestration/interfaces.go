package orchestration

import (
	"io"
	"sync"

	"github.com/agbru/argontune/internal/calibration"
)

// ProgressReporter defines the interface for displaying calibration progress.
// It decouples the orchestration layer from spinners and other terminal
// concerns.
type ProgressReporter interface {
	// DisplayProgress consumes samples until progressChan is closed, then
	// calls wg.Done.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan calibration.Sample, req Request, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan calibration.Sample, req Request, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan calibration.Sample, req Request, out io.Writer) {
	f(wg, progressChan, req, out)
}

// NullProgressReporter drains the progress channel without output.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan calibration.Sample, _ Request, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter defines the interface for presenting a tuning result.
type ResultPresenter interface {
	// PresentResult displays the chosen parameters.
	PresentResult(res Result, out io.Writer)
	// PresentSamples displays the measured series, marking the chosen sample.
	PresentSamples(res Result, out io.Writer)
}
