package formatter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/younsl/idlelb/internal/models"
)

const (
	lbHeader     = "%s\tSTATE\tREGION\tVPC ID"
	lbFormat     = "%s\t%s\t%s\t%s"
	lbCostHeader = "\tMONTHLY COST"
	lbCostFormat = "\t%s"
)

// PrintLoadBalancerTable prints the records of one kind in a table format using tabwriter
func PrintLoadBalancerTable(w io.Writer, kind models.LoadBalancerKind, records []models.ResourceRecord, withCost bool) {
	fmt.Fprintf(w, "\n## %s\n", kind.DisplayName())

	if len(records) == 0 {
		fmt.Fprintf(w, "No inactive %s found.\n", kind.DisplayName())
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) // minwidth, tabwidth, padding, padchar, flags
	header := fmt.Sprintf(lbHeader, idColumn(kind))
	if withCost {
		header += lbCostHeader
	}
	fmt.Fprintln(tw, header)

	for _, r := range records {
		fmt.Fprintf(tw, lbFormat, r.ID, r.State, r.Region, valueOrDash(r.VpcID))
		if withCost {
			fmt.Fprintf(tw, lbCostFormat, formatCost(r.MonthlyCost))
		}
		fmt.Fprintln(tw)
	}

	tw.Flush()
}

// PrintLoadBalancerSummary prints totals for the inactive load balancers
func PrintLoadBalancerSummary(w io.Writer, account string, records []models.ResourceRecord, withCost bool) {
	fmt.Fprintf(w, "\nFound %s inactive load balancers in %s.\n", humanize.Comma(int64(len(records))), account)

	if withCost && len(records) > 0 {
		var total float64
		for _, r := range records {
			if r.MonthlyCost != nil {
				total += *r.MonthlyCost
			}
		}
		fmt.Fprintf(w, "Estimated monthly cost of inactive load balancers: %s\n", formatCost(&total))
	}
}

func idColumn(kind models.LoadBalancerKind) string {
	if kind == models.MultiStage {
		return "ARN"
	}
	return "NAME"
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
