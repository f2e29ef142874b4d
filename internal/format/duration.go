package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration formats a measured hash time. Sub-millisecond
// durations are shown in microseconds, sub-second ones in fractional
// milliseconds, longer ones with time.Duration's own notation.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%d\u00b5s", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	return d.String()
}

// FormatBudgetShare formats elapsed as a percentage of budget.
func FormatBudgetShare(elapsed, budget time.Duration) string {
	if budget <= 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(elapsed)/float64(budget))
}
