// Package orchestration ties calibration and selection together behind a
// memoizing Tuner, and drives a tuning request with progress reporting for
// the presentation layer through the ProgressReporter and ResultPresenter
// interfaces.
package orchestration
