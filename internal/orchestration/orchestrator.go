package orchestration

import (
	"context"
	"io"
	"sync"

	"github.com/agbru/argontune/internal/calibration"
)

// ProgressBufferSize is the capacity of the progress channel. Samples are
// cheap, and a buffer keeps a slow terminal from stretching the gap between
// two measurements.
const ProgressBufferSize = 64

// ExecuteTuning runs req on the tuner while a reporter displays progress.
//
// The reporter runs in its own goroutine and receives every measured sample;
// the channel is closed and the reporter awaited before returning, so output
// written afterwards never interleaves with progress output.
func ExecuteTuning(ctx context.Context, t *Tuner, req Request, reporter ProgressReporter, out io.Writer) (Result, error) {
	req = req.withDefaults()
	progressChan := make(chan calibration.Sample, ProgressBufferSize)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, req, out)

	userHook := req.OnSample
	req.OnSample = func(s calibration.Sample) calibration.Decision {
		select {
		case progressChan <- s:
		case <-ctx.Done():
		}
		if userHook != nil {
			return userHook(s)
		}
		return calibration.Continue
	}

	res, err := t.Tune(ctx, req)

	close(progressChan)
	displayWg.Wait()

	return res, err
}
