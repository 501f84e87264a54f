// Package export renders a scan as a CSV issue list or a PDF report.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
)

type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

type Exporter interface {
	Export(w io.Writer, data domain.ScanData) error
}

func New(format Format) (Exporter, error) {
	switch format {
	case FormatCSV:
		return csvExporter{}, nil
	case FormatPDF:
		return pdfExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %q", format)
	}
}

// FileName is the suggested download name, e.g. entra-atlas-contoso-20250601-1200.pdf.
func FileName(data domain.ScanData, format Format) string {
	tenant := strings.ToLower(strings.Join(strings.Fields(data.Summary.TenantName), "-"))
	if tenant == "" {
		tenant = data.Summary.TenantID
	}
	return fmt.Sprintf("entra-atlas-%s-%s.%s", tenant, data.Summary.Timestamp.UTC().Format("20060102-1504"), format)
}

func dataSource(issue domain.SecurityIssue) string {
	if issue.IsRealData {
		return "Live"
	}
	return "Demo"
}

func categoryName(issue domain.SecurityIssue) string {
	if category, ok := domain.CategoryOf(issue); ok {
		return string(category)
	}
	return "Other"
}
