package scan

import (
	"encoding/json"
	"time"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/models/graph"
)

var severityWeights = map[domain.Severity]int{
	domain.SeverityHigh:   15,
	domain.SeverityMedium: 7,
	domain.SeverityLow:    3,
}

// RiskScore is 100 minus the severity weights of the open issues, clamped to [0, 100].
func RiskScore(issues []domain.SecurityIssue) int {
	score := 100
	for _, issue := range issues {
		if !issue.IsOpen() {
			continue
		}
		score -= severityWeights[issue.Severity]
	}
	return clamp(score, 0, 100)
}

// CategoryScores scores every category over the open issues classified into
// it. Unclassified issues count towards no category.
func CategoryScores(issues []domain.SecurityIssue) map[domain.Category]int {
	grouped := make(map[domain.Category][]domain.SecurityIssue, len(domain.Categories))
	for _, issue := range issues {
		if category, ok := domain.CategoryOf(issue); ok {
			grouped[category] = append(grouped[category], issue)
		}
	}

	scores := make(map[domain.Category]int, len(domain.Categories))
	for _, category := range domain.Categories {
		scores[category] = RiskScore(grouped[category])
	}
	return scores
}

func Badge(score int) domain.RiskBadge {
	switch {
	case score >= 80:
		return domain.RiskBadgeGood
	case score >= 50:
		return domain.RiskBadgeNeedsImprovement
	default:
		return domain.RiskBadgeCritical
	}
}

func SeverityCounts(issues []domain.SecurityIssue) map[domain.Severity]int {
	counts := make(map[domain.Severity]int, len(domain.Severities))
	for _, s := range domain.Severities {
		counts[s] = 0
	}
	for _, issue := range issues {
		counts[issue.Severity]++
	}
	return counts
}

func CategoryCounts(issues []domain.SecurityIssue) map[domain.Category]int {
	counts := make(map[domain.Category]int, len(domain.Categories))
	for _, category := range domain.Categories {
		counts[category] = 0
	}
	for _, issue := range issues {
		if category, ok := domain.CategoryOf(issue); ok {
			counts[category]++
		}
	}
	return counts
}

type SummaryInput struct {
	ID         string
	Timestamp  time.Time
	TenantID   string
	TenantName string
	Results    *Results
	Findings   Findings
}

func BuildSummary(in SummaryInput) domain.ScanSummary {
	score := RiskScore(in.Findings.Issues)
	tenantName := in.TenantName
	if name := organizationName(in.Results); name != "" {
		tenantName = name
	}
	if tenantName == "" {
		tenantName = in.TenantID
	}

	return domain.ScanSummary{
		ID:                    in.ID,
		Timestamp:             in.Timestamp,
		TenantID:              in.TenantID,
		TenantName:            tenantName,
		OverallRiskScore:      score,
		RiskBadge:             Badge(score),
		IssueCountsByCategory: CategoryCounts(in.Findings.Issues),
		IssueCountsBySeverity: SeverityCounts(in.Findings.Issues),
		CategoryScores:        CategoryScores(in.Findings.Issues),
		AccessWarnings:        len(in.Findings.AccessWarnings),
		Scanned:               CountEntities(in.Results),
	}
}

func CountEntities(results *Results) domain.EntityCounts {
	if results == nil {
		return domain.EntityCounts{}
	}

	counts := domain.EntityCounts{
		Users:          countItems(results, DatasetUsers),
		Guests:         countItems(results, DatasetGuests),
		Groups:         countItems(results, DatasetGroups),
		Devices:        countItems(results, DatasetDevices),
		Applications:   countItems(results, DatasetApplications),
		Policies:       countItems(results, DatasetConditionalAccess),
		DirectoryRoles: countItems(results, DatasetDirectoryRoles),
	}
	if counts.Devices == 0 {
		counts.Devices = countItems(results, DatasetManagedDevices)
	}
	return counts
}

func countItems(results *Results, name string) int {
	var items []json.RawMessage
	if err := json.Unmarshal(results.Data[name], &items); err != nil {
		return 0
	}
	return len(items)
}

func organizationName(results *Results) string {
	if results == nil {
		return ""
	}
	var orgs []graph.Organization
	if err := json.Unmarshal(results.Data[DatasetOrganization], &orgs); err != nil || len(orgs) == 0 {
		return ""
	}
	return orgs[0].DisplayName
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
