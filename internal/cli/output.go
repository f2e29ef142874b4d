// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResultWithConfig], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatQuietResult], [FormatProgress].
//
//   - Write* functions serialize to a writer in a machine-readable form.
//     Examples: [WriteJSON].

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/agbru/argontune/internal/calibration"
	"github.com/agbru/argontune/internal/orchestration"
	"github.com/agbru/argontune/internal/params"
	"github.com/agbru/argontune/internal/ui"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// Quiet prints a single line with the chosen parameters.
	Quiet bool
	// JSON switches to a JSON document.
	JSON bool
	// ShowSamples adds the measured series.
	ShowSamples bool
}

// Verification is the outcome of hashing and verifying once with the
// chosen parameters.
type Verification struct {
	Digest  string        `json:"digest"`
	Elapsed time.Duration `json:"elapsed"`
	OK      bool          `json:"ok"`
}

// Report is the JSON document written by WriteJSON.
type Report struct {
	Budget      string                `json:"budget"`
	Calibration string                `json:"calibration"`
	Selection   string                `json:"selection"`
	Cached      bool                  `json:"cached"`
	Parameters  params.CostParameters `json:"parameters"`
	MemoryKiB   uint32                `json:"memoryKiB"`
	DerivedCost uint64                `json:"derivedCost"`
	ElapsedMs   float64               `json:"elapsedMs,omitempty"`
	Samples     calibration.Series    `json:"samples,omitempty"`
	Verify      *Verification         `json:"verify,omitempty"`
}

// NewReport builds the JSON view of res.
func NewReport(res orchestration.Result, verify *Verification, withSamples bool) Report {
	r := Report{
		Budget:      res.Key.Budget.String(),
		Calibration: string(res.Key.Calibration),
		Selection:   string(res.Key.Selection),
		Cached:      res.Cached,
		Parameters:  res.Params,
		MemoryKiB:   res.Params.MemoryKiB(),
		DerivedCost: res.Params.DerivedCost(),
		Verify:      verify,
	}
	if !res.Cached {
		r.ElapsedMs = res.Chosen.ElapsedMs()
	}
	if withSamples {
		r.Samples = res.Series
	}
	return r
}

// WriteJSON writes the indented JSON report for res.
func WriteJSON(out io.Writer, res orchestration.Result, verify *Verification, withSamples bool) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewReport(res, verify, withSamples)); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// FormatQuietResult renders p as a PHC parameter prefix, the part of an
// encoded hash that precedes the salt.
func FormatQuietResult(p params.CostParameters) string {
	return fmt.Sprintf("$%s$v=19$m=%d,t=%d,p=%d", p.Variant, p.MemoryKiB(), p.TimeCost, p.Parallelism)
}

// DisplayQuietResult outputs a result in quiet mode (minimal output).
func DisplayQuietResult(out io.Writer, p params.CostParameters) {
	fmt.Fprintln(out, FormatQuietResult(p))
}

// DisplayVerification prints the verify round-trip.
func DisplayVerification(out io.Writer, v Verification) {
	status := fmt.Sprintf("%sverified%s", ui.ColorGreen(), ui.ColorReset())
	if !v.OK {
		status = fmt.Sprintf("%sFAILED%s", ui.ColorRed(), ui.ColorReset())
	}
	fmt.Fprintf(out, "\nVerify round-trip: %s in %s\n  %s\n", status, v.Elapsed.Round(time.Microsecond), v.Digest)
}

// DisplayResultWithConfig displays res according to cfg. It is the single
// entry point used by the application for every output mode.
func DisplayResultWithConfig(out io.Writer, res orchestration.Result, verify *Verification, cfg OutputConfig) error {
	switch {
	case cfg.JSON:
		return WriteJSON(out, res, verify, cfg.ShowSamples)
	case cfg.Quiet:
		DisplayQuietResult(out, res.Params)
		return nil
	}

	var presenter CLIResultPresenter
	presenter.PresentResult(res, out)
	if cfg.ShowSamples {
		presenter.PresentSamples(res, out)
	}
	if verify != nil {
		DisplayVerification(out, *verify)
	}
	return nil
}
