package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// PrintTimestamp prints the scan timestamp and duration
func PrintTimestamp(w io.Writer, scanStartTime time.Time, scanDuration time.Duration) {
	timeStr := scanStartTime.Format("2006-01-02 15:04:05")
	durationStr := fmt.Sprintf("%.2fs", scanDuration.Seconds())

	fmt.Fprintf(w, "Scan completed at %s (took %s)\n", timeStr, durationStr)
}

// formatCost renders a monthly cost, or N/A when it was not estimated
func formatCost(cost *float64) string {
	if cost == nil {
		return "N/A"
	}
	return "$" + humanize.FormatFloat("#,###.##", *cost)
}
