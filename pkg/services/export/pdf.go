package export

import (
	"fmt"
	"io"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/go-pdf/fpdf"
)

type rgb struct{ r, g, b int }

var badgeColors = map[domain.RiskBadge]rgb{
	domain.RiskBadgeGood:             {46, 125, 50},
	domain.RiskBadgeNeedsImprovement: {239, 108, 0},
	domain.RiskBadgeCritical:         {198, 40, 40},
}

var severityColors = map[domain.Severity]rgb{
	domain.SeverityHigh:   {198, 40, 40},
	domain.SeverityMedium: {239, 108, 0},
	domain.SeverityLow:    {21, 101, 192},
}

type pdfExporter struct{}

func (pdfExporter) Export(w io.Writer, data domain.ScanData) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	summary := data.Summary

	pdf.SetTitle(tr("Entra ID security report - "+summary.TenantName), false)
	pdf.SetAuthor("entra-atlas", false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("Scan %s - page %d", summary.ID, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr("Security Assessment: "+summary.TenantName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	source := "Live tenant data"
	if !data.UsesRealData {
		source = "Demo data"
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Tenant %s | %s | %s",
		summary.TenantID, summary.Timestamp.UTC().Format("2006-01-02 15:04 MST"), source), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Overall score
	color := badgeColors[summary.RiskBadge]
	pdf.SetFillColor(color.r, color.g, color.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 12, fmt.Sprintf("Overall risk score: %d / 100  (%s)", summary.OverallRiskScore, summary.RiskBadge),
		"", 1, "C", true, 0, "")
	pdf.Ln(4)

	// Category scores and severity counts
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Category scores", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, category := range domain.Categories {
		pdf.CellFormat(70, 7, string(category), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", summary.CategoryScores[category]), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d issues", summary.IssueCountsByCategory[category]), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Issues by severity", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, severity := range domain.Severities {
		c := severityColors[severity]
		pdf.SetTextColor(c.r, c.g, c.b)
		pdf.CellFormat(40, 7, severity.String(), "1", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", summary.IssueCountsBySeverity[severity]), "1", 1, "C", false, 0, "")
	}
	if summary.AccessWarnings > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d categories could not be fully assessed because of missing Graph permissions.",
			summary.AccessWarnings)), "", "L", false)
	}
	pdf.Ln(4)

	// Issue table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Findings (%d)", len(data.Issues)), "", 1, "L", false, 0, "")
	for _, issue := range data.Issues {
		c := severityColors[issue.Severity]
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(c.r, c.g, c.b)
		pdf.CellFormat(20, 6, issue.Severity.String(), "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s  [%s, %s]", issue.Type, categoryName(issue), issue.Status)), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, tr(issue.Description), "", "L", false)
		if issue.Remediation != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(0, 5, tr("Recommendation: "+issue.Remediation), "", "L", false)
		}
		pdf.Ln(2)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return nil
}
