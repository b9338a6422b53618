package report

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration with a unit suited to its magnitude.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	switch abs := max(d, -d); {
	case abs < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case abs < time.Millisecond:
		return fmt.Sprintf("%.2fμs", float64(d.Nanoseconds())/1e3)
	case abs < time.Second:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// FormatNanos is FormatDuration for a raw nanosecond sample.
func FormatNanos(ns int64) string {
	return FormatDuration(time.Duration(ns))
}
