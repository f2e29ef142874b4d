// Package metrics exposes calibration and cache instrumentation as
// Prometheus collectors on a private registry, plus a runtime heap reader.
//
// A nil *Metrics is valid and records nothing, so components can take one
// unconditionally.
package metrics
