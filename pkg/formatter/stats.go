package formatter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/younsl/idlelb/pkg/pricing"
)

// PrintPricingAPIStats prints the statistics of pricing API calls
func PrintPricingAPIStats(w io.Writer, stats []pricing.APIStat) {
	if len(stats) == 0 {
		return
	}

	fmt.Fprintln(w, "\n## AWS Pricing API Call Statistics")

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tREGION\tAPI CALLS\tSUCCESS\tFAILURE\tCACHE HITS\tSUCCESS RATE")

	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.1f%%\n",
			s.Service,
			s.Region,
			s.Total(),
			s.Success,
			s.Failure,
			s.Cache,
			s.SuccessRate(),
		)
	}

	tw.Flush()
}
