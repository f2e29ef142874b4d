package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/argontune/internal/config"
	"github.com/agbru/argontune/internal/format"
	"github.com/agbru/argontune/internal/sysmon"
	"github.com/agbru/argontune/internal/ui"
)

// PrintExecutionConfig displays the tuning request and the hardware it will
// be measured on.
func PrintExecutionConfig(cfg config.AppConfig, res sysmon.Resources, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Tuning %s%s%s for a budget of %s%s%s per hash (timeout %s).\n",
		ui.ColorMagenta(), cfg.Variant, ui.ColorReset(), ui.ColorYellow(), cfg.Budget, ui.ColorReset(), cfg.Timeout)
	fmt.Fprintf(out, "Strategies: calibration=%s%s%s, selection=%s%s%s.\n",
		ui.ColorCyan(), cfg.Calibration, ui.ColorReset(), ui.ColorCyan(), cfg.Selection, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, %s free of %s, Go %s.\n",
		ui.ColorCyan(), res.CPUCores, ui.ColorReset(),
		format.FormatBytes(res.AvailableMemory), format.FormatBytes(res.TotalMemory), runtime.Version())
}

// PrintProfileReuse tells the user that a saved profile answered the request.
func PrintProfileReuse(path string, out io.Writer) {
	fmt.Fprintf(out, "%sReusing calibration profile %s%s\n", ui.ColorGrey(), path, ui.ColorReset())
}
