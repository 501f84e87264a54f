package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScan() domain.ScanData {
	return domain.ScanData{
		Summary: domain.ScanSummary{
			ID:               "scan-1",
			Timestamp:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			TenantID:         "tenant-1",
			TenantName:       "Contoso Demo",
			OverallRiskScore: 63,
			RiskBadge:        domain.RiskBadgeNeedsImprovement,
			IssueCountsByCategory: map[domain.Category]int{
				domain.CategoryIdentity: 2,
				domain.CategoryDevice:   1,
			},
			IssueCountsBySeverity: map[domain.Severity]int{domain.SeverityHigh: 2, domain.SeverityMedium: 1},
			CategoryScores: map[domain.Category]int{
				domain.CategorySecurityPosture: 100,
				domain.CategoryIdentity:        70,
				domain.CategoryDevice:          93,
				domain.CategoryDataProtection:  100,
				domain.CategoryLicensing:       100,
			},
			AccessWarnings: 1,
		},
		Issues: []domain.SecurityIssue{
			{
				ID: "mfa-not-configured", Type: "MFA Not Configured", Severity: domain.SeverityHigh,
				AffectedObject: domain.AffectedObject{Type: "User"},
				Description:    "2 users have not registered MFA, \"quoted\"", Impact: "Takeover",
				Remediation: "Require MFA", Status: domain.IssueStatusOpen, IsRealData: true,
			},
			{
				ID: "risky-users-detected", Type: "Risky Users Detected", Severity: domain.SeverityHigh,
				AffectedObject: domain.AffectedObject{Type: "User"},
				Description:    "Risky, with comma", Status: domain.IssueStatusFixed, IsRealData: false,
			},
			{
				ID: "non-compliant-devices", Type: "Non-Compliant Devices", Severity: domain.SeverityMedium,
				AffectedObject: domain.AffectedObject{Type: "Device"},
				Description:    "Ünïcödé device names", Status: domain.IssueStatusOpen, IsRealData: true,
			},
		},
		UsesRealData: true,
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)

	_, err = New("xlsx")
	assert.Error(t, err)
}

func TestCSVExport(t *testing.T) {
	exporter, err := New(FormatCSV)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(&buf, sampleScan()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"mfa-not-configured", "MFA Not Configured", "High", "Identity",
		"2 users have not registered MFA, \"quoted\"", "Takeover", "Require MFA", "Open", "Live",
	}, records[1])
	assert.Equal(t, "Fixed", records[2][7])
	assert.Equal(t, "Demo", records[2][8])
	assert.Equal(t, "Device", records[3][3])
}

func TestPDFExport(t *testing.T) {
	exporter, err := New(FormatPDF)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(&buf, sampleScan()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "entra-atlas-contoso-demo-20250601-1200.csv", FileName(sampleScan(), FormatCSV))

	scan := sampleScan()
	scan.Summary.TenantName = ""
	assert.Equal(t, "entra-atlas-tenant-1-20250601-1200.pdf", FileName(scan, FormatPDF))
}
