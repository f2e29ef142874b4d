// Package calibration measures Argon2 hashing time across the cost-parameter
// space and records the measurements as an ordered Series.
//
// A run is driven by one of a closed set of strategies. Each strategy owns a
// typed search state and three decision points: prepare sets the starting
// parameters from the host resources, next proposes the following parameter
// set, and done reports whether the last sample ends the search. The driver
// runs the measurements strictly one after another so that timings are not
// disturbed by concurrent hashing.
//
// The package also persists calibration results as a Profile so a later
// process on the same hardware can skip recalibration.
package calibration
