package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
)

var csvHeader = []string{
	"ID", "Title", "Severity", "Category", "Description", "Impact", "Recommendation", "Status", "Data Source",
}

type csvExporter struct{}

// Export writes one row per issue. Access warnings are not issues and are left out.
func (csvExporter) Export(w io.Writer, data domain.ScanData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, issue := range data.Issues {
		row := []string{
			issue.ID,
			issue.Type,
			issue.Severity.String(),
			categoryName(issue),
			issue.Description,
			issue.Impact,
			issue.Remediation,
			string(issue.Status),
			dataSource(issue),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write %s: %w", issue.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
