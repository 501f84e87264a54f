package adapters

import (
	"fmt"
	"maps"

	"github.com/de-tools/entra-atlas/pkg/models/api"
	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/models/store"
)

func MapSummaryDomainToStore(s domain.ScanSummary) store.ScanSummary {
	res := store.ScanSummary{
		ID:                    s.ID,
		Timestamp:             s.Timestamp,
		TenantID:              s.TenantID,
		TenantName:            s.TenantName,
		OverallRiskScore:      s.OverallRiskScore,
		RiskBadge:             string(s.RiskBadge),
		IssueCountsByCategory: map[string]int{},
		IssueCountsBySeverity: map[string]int{},
		CategoryScores:        map[string]int{},
		AccessWarnings:        s.AccessWarnings,
		Scanned: store.EntityCounts{
			Users:          s.Scanned.Users,
			Guests:         s.Scanned.Guests,
			Groups:         s.Scanned.Groups,
			Devices:        s.Scanned.Devices,
			Applications:   s.Scanned.Applications,
			Policies:       s.Scanned.Policies,
			DirectoryRoles: s.Scanned.DirectoryRoles,
		},
	}
	for k, v := range s.IssueCountsByCategory {
		res.IssueCountsByCategory[string(k)] = v
	}
	for k, v := range s.IssueCountsBySeverity {
		res.IssueCountsBySeverity[k.String()] = v
	}
	for k, v := range s.CategoryScores {
		res.CategoryScores[string(k)] = v
	}
	return res
}

func MapSummaryStoreToDomain(s store.ScanSummary) domain.ScanSummary {
	res := domain.ScanSummary{
		ID:                    s.ID,
		Timestamp:             s.Timestamp,
		TenantID:              s.TenantID,
		TenantName:            s.TenantName,
		OverallRiskScore:      s.OverallRiskScore,
		RiskBadge:             domain.RiskBadge(s.RiskBadge),
		IssueCountsByCategory: map[domain.Category]int{},
		IssueCountsBySeverity: map[domain.Severity]int{},
		CategoryScores:        map[domain.Category]int{},
		AccessWarnings:        s.AccessWarnings,
		Scanned: domain.EntityCounts{
			Users:          s.Scanned.Users,
			Guests:         s.Scanned.Guests,
			Groups:         s.Scanned.Groups,
			Devices:        s.Scanned.Devices,
			Applications:   s.Scanned.Applications,
			Policies:       s.Scanned.Policies,
			DirectoryRoles: s.Scanned.DirectoryRoles,
		},
	}
	for k, v := range s.IssueCountsByCategory {
		res.IssueCountsByCategory[domain.Category(k)] = v
	}
	for k, v := range s.IssueCountsBySeverity {
		res.IssueCountsBySeverity[MapSeverityStoreToDomain(k)] = v
	}
	for k, v := range s.CategoryScores {
		res.CategoryScores[domain.Category(k)] = v
	}
	return res
}

func MapScanDataDomainToStore(d domain.ScanData) store.ScanData {
	res := store.ScanData{
		Summary:        MapSummaryDomainToStore(d.Summary),
		Issues:         mapIssuesDomainToStore(d.Issues),
		AccessWarnings: mapIssuesDomainToStore(d.AccessWarnings),
		APIErrors:      make([]store.APIError, 0, len(d.APIErrors)),
		RawData:        maps.Clone(d.RawData),
		UsesRealData:   d.UsesRealData,
		IssuesFixed:    d.IssuesFixed,
	}
	for _, e := range d.APIErrors {
		res.APIErrors = append(res.APIErrors, store.APIError{
			Endpoint:   e.Endpoint,
			Path:       e.Path,
			StatusCode: e.StatusCode,
			Message:    e.Message,
		})
	}
	return res
}

func MapScanDataStoreToDomain(d store.ScanData) domain.ScanData {
	res := domain.ScanData{
		Summary:        MapSummaryStoreToDomain(d.Summary),
		Issues:         mapIssuesStoreToDomain(d.Issues),
		AccessWarnings: mapIssuesStoreToDomain(d.AccessWarnings),
		APIErrors:      make([]domain.APIError, 0, len(d.APIErrors)),
		RawData:        maps.Clone(d.RawData),
		UsesRealData:   d.UsesRealData,
		IssuesFixed:    d.IssuesFixed,
	}
	for _, e := range d.APIErrors {
		res.APIErrors = append(res.APIErrors, domain.APIError{
			Endpoint:   e.Endpoint,
			Path:       e.Path,
			StatusCode: e.StatusCode,
			Message:    e.Message,
		})
	}
	return res
}

func MapSummaryDomainToApi(s domain.ScanSummary) api.ScanSummary {
	stored := MapSummaryDomainToStore(s)
	return api.ScanSummary{
		ID:                    s.ID,
		Timestamp:             s.Timestamp,
		TenantID:              s.TenantID,
		TenantName:            s.TenantName,
		OverallRiskScore:      s.OverallRiskScore,
		RiskBadge:             string(s.RiskBadge),
		IssueCountsByCategory: stored.IssueCountsByCategory,
		IssueCountsBySeverity: stored.IssueCountsBySeverity,
		CategoryScores:        stored.CategoryScores,
		AccessWarnings:        s.AccessWarnings,
		Scanned: map[string]int{
			"users":           s.Scanned.Users,
			"guests":          s.Scanned.Guests,
			"groups":          s.Scanned.Groups,
			"devices":         s.Scanned.Devices,
			"applications":    s.Scanned.Applications,
			"policies":        s.Scanned.Policies,
			"directory_roles": s.Scanned.DirectoryRoles,
		},
	}
}

// MapScanDataDomainToApi renders a scan; currentScore reflects issues still open.
func MapScanDataDomainToApi(d domain.ScanData, currentScore int, currentBadge domain.RiskBadge) api.Scan {
	res := api.Scan{
		Summary:        MapSummaryDomainToApi(d.Summary),
		CurrentScore:   currentScore,
		CurrentBadge:   string(currentBadge),
		Issues:         mapIssuesDomainToApi(d.Issues),
		AccessWarnings: mapIssuesDomainToApi(d.AccessWarnings),
		FailedCalls:    make([]string, 0, len(d.APIErrors)),
		UsesRealData:   d.UsesRealData,
		IssuesFixed:    d.IssuesFixed,
	}
	for _, e := range d.APIErrors {
		res.FailedCalls = append(res.FailedCalls, fmt.Sprintf("%s (%s)", e.Endpoint, e.Path))
	}
	return res
}

func MapSummariesDomainToApi(summaries []domain.ScanSummary) []api.ScanSummary {
	res := make([]api.ScanSummary, 0, len(summaries))
	for _, s := range summaries {
		res = append(res, MapSummaryDomainToApi(s))
	}
	return res
}
