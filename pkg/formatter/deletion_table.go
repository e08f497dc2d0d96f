package formatter

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/younsl/idlelb/internal/models"
)

const (
	deletionHeader = "ID\tKIND\tREGION\tRESULT\tERROR"
	deletionFormat = "%s\t%s\t%s\t%s\t%s\n"
)

// PrintDeletionTable prints one row per delete call
func PrintDeletionTable(w io.Writer, account string, outcomes []models.DeletionOutcome) {
	fmt.Fprintf(w, "\n## Deletions in %s\n", account)

	if len(outcomes) == 0 {
		fmt.Fprintln(w, "No inactive load balancers to delete.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, deletionHeader)

	failed := 0
	for _, o := range outcomes {
		result, errMsg := "deleted", "-"
		if !o.Succeeded {
			result = "failed"
			errMsg = deletionCause(o.Err)
			failed++
		}
		fmt.Fprintf(tw, deletionFormat, o.ID, o.Kind, o.Region, result, errMsg)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%s deleted, %s failed.\n",
		humanize.Comma(int64(len(outcomes)-failed)),
		humanize.Comma(int64(failed)))
}

// deletionCause drops the scope prefix the table already shows in its columns
func deletionCause(err error) string {
	if err == nil {
		return "-"
	}
	var e *models.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
