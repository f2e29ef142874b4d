// Package logging provides a unified logging interface for argontune.
// It abstracts the underlying logging implementation, allowing consistent logging
// across the calibration, selection and orchestration layers while supporting
// multiple backends.
package logging
