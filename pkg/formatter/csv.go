package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/younsl/idlelb/internal/models"
)

// WriteCSV writes one CSV block for a kind: a header line, then one row per record
func WriteCSV(w io.Writer, kind models.LoadBalancerKind, records []models.ResourceRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{kind.IDHeader(), "state", "region", "vpc_id"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.ID, r.State.String(), r.Region, r.VpcID}); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReportFileName is the per-account report file name for a kind
func ReportFileName(accountID string, kind models.LoadBalancerKind) string {
	if accountID == "" {
		accountID = "default"
	}
	return fmt.Sprintf("%s_inactive_%ss.csv", accountID, kind)
}

// WriteReportFiles writes one CSV file per kind under dir and returns the paths
func WriteReportFiles(dir, accountID string, kinds []models.LoadBalancerKind, records []models.ResourceRecord) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	var paths []string
	for _, kind := range kinds {
		path := filepath.Join(dir, ReportFileName(accountID, kind))
		if err := writeReportFile(path, kind, models.RecordsOfKind(records, kind)); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeReportFile(path string, kind models.LoadBalancerKind, records []models.ResourceRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	if err := WriteCSV(f, kind, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return f.Close()
}
