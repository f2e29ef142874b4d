package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/agbru/argontune/internal/calibration"
	apperrors "github.com/agbru/argontune/internal/errors"
	"github.com/agbru/argontune/internal/format"
	"github.com/agbru/argontune/internal/orchestration"
	"github.com/agbru/argontune/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// terminal spinner.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner for an ongoing calibration run.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan calibration.Sample, req orchestration.Request, out io.Writer) {
	DisplayProgress(wg, progressChan, req, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for CLI output.
type CLIResultPresenter struct{}

// Verify interface compliance.
var _ orchestration.ResultPresenter = CLIResultPresenter{}

// PresentResult displays the chosen parameters.
func (CLIResultPresenter) PresentResult(res orchestration.Result, out io.Writer) {
	p := res.Params
	source := "fresh calibration"
	if res.Cached {
		source = "cached"
	}

	fmt.Fprintf(out, "\n--- Tuned Parameters ---\n")
	fmt.Fprintf(out, "Request:      budget %s%s%s, calibration %s, selection %s (%s)\n",
		ui.ColorYellow(), res.Key.Budget, ui.ColorReset(), res.Key.Calibration, res.Key.Selection, source)
	fmt.Fprintf(out, "Variant:      %s%s%s\n", ui.ColorBold(), p.Variant, ui.ColorReset())
	fmt.Fprintf(out, "Memory:       %s2^%d KiB%s (%s)\n",
		ui.ColorCyan(), p.MemoryCost, ui.ColorReset(), format.FormatKiB(uint64(p.MemoryKiB())))
	fmt.Fprintf(out, "Iterations:   %s%d%s\n", ui.ColorCyan(), p.TimeCost, ui.ColorReset())
	fmt.Fprintf(out, "Parallelism:  %s%d%s\n", ui.ColorCyan(), p.Parallelism, ui.ColorReset())
	fmt.Fprintf(out, "Hash length:  %d bytes\n", p.HashLength)
	fmt.Fprintf(out, "Derived cost: %d\n", p.DerivedCost())
	if !res.Cached && res.Chosen.Elapsed > 0 {
		fmt.Fprintf(out, "Measured:     %s%s%s (%s of budget, %d samples)\n",
			ui.ColorGreen(), format.FormatExecutionDuration(res.Chosen.Elapsed), ui.ColorReset(),
			format.FormatBudgetShare(res.Chosen.Elapsed, res.Key.Budget), len(res.Series))
	}
}

// PresentSamples renders the measured series as a table. The chosen sample
// and samples over budget are colored. Cached results carry no series.
func (CLIResultPresenter) PresentSamples(res orchestration.Result, out io.Writer) {
	if len(res.Series) == 0 {
		fmt.Fprintf(out, "\n%sNo samples: the result came from the cache.%s\n", ui.ColorGrey(), ui.ColorReset())
		return
	}
	fmt.Fprintf(out, "\n--- Samples ---\n")
	fmt.Fprintln(out, SamplesTable(res))
}

// SamplesTable builds the lipgloss table used by PresentSamples.
func SamplesTable(res orchestration.Result) *table.Table {
	theme := ui.GetCurrentTableTheme()
	chosen := -1
	rows := make([][]string, 0, len(res.Series))
	for i, s := range res.Series {
		if chosen < 0 && s == res.Chosen {
			chosen = i
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatUint(uint64(s.Params.MemoryCost), 10),
			format.FormatKiB(uint64(s.Params.MemoryKiB())),
			strconv.FormatUint(uint64(s.Params.TimeCost), 10),
			strconv.FormatUint(uint64(s.Params.Parallelism), 10),
			strconv.FormatUint(s.Cost, 10),
			format.FormatExecutionDuration(s.Elapsed),
		})
	}

	base := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers("#", "m", "memory", "t", "p", "cost", "elapsed").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return base.Bold(true).Foreground(theme.Header)
			case row == chosen:
				return base.Bold(true).Foreground(theme.Chosen)
			case row >= 0 && row < len(res.Series) && res.Series[row].Elapsed > res.Key.Budget:
				return base.Foreground(theme.Over)
			default:
				return base.Foreground(theme.Text)
			}
		})
}

// HandleError prints err and returns the matching exit code.
func HandleError(err error, out io.Writer) int {
	code := apperrors.ExitCodeFor(err)
	var policyErr apperrors.UnknownPolicyError
	switch {
	case code == apperrors.ExitSuccess:
		return code
	case code == apperrors.ExitErrorTimeout:
		fmt.Fprintf(out, "%sTuning timed out: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	case code == apperrors.ExitErrorCanceled:
		fmt.Fprintf(out, "%sTuning canceled.%s\n", ui.ColorYellow(), ui.ColorReset())
	case code == apperrors.ExitErrorNoFit:
		fmt.Fprintf(out, "%s%v%s\nTry a larger --budget.\n", ui.ColorRed(), err, ui.ColorReset())
	case errors.As(err, &policyErr):
		fmt.Fprintf(out, "%sUnknown %s strategy %q.%s\n", ui.ColorRed(), policyErr.Kind, policyErr.Name, ui.ColorReset())
	default:
		fmt.Fprintf(out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
	return code
}
