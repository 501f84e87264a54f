package adapters

import (
	"github.com/de-tools/entra-atlas/pkg/models/api"
	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/models/store"
)

func MapSeverityStoreToDomain(s string) domain.Severity {
	severity, err := domain.ParseSeverity(s)
	if err != nil {
		return domain.SeverityLow
	}
	return severity
}

func MapIssueStatusStoreToDomain(s string) domain.IssueStatus {
	if s == string(domain.IssueStatusFixed) {
		return domain.IssueStatusFixed
	}
	return domain.IssueStatusOpen
}

func MapIssueDomainToStore(i domain.SecurityIssue) store.SecurityIssue {
	res := store.SecurityIssue{
		ID:       i.ID,
		Type:     i.Type,
		Severity: i.Severity.String(),
		AffectedObject: store.AffectedObject{
			Type: i.AffectedObject.Type,
			ID:   i.AffectedObject.ID,
			Name: i.AffectedObject.Name,
		},
		Description: i.Description,
		Remediation: i.Remediation,
		Impact:      i.Impact,
		Details:     i.Details,
		Status:      string(i.Status),
		IsRealData:  i.IsRealData,
	}
	for _, item := range i.AffectedItems {
		res.AffectedItems = append(res.AffectedItems, store.AffectedItem{ID: item.ID, Name: item.Name, Detail: item.Detail})
	}
	return res
}

func MapIssueStoreToDomain(i store.SecurityIssue) domain.SecurityIssue {
	res := domain.SecurityIssue{
		ID:       i.ID,
		Type:     i.Type,
		Severity: MapSeverityStoreToDomain(i.Severity),
		AffectedObject: domain.AffectedObject{
			Type: i.AffectedObject.Type,
			ID:   i.AffectedObject.ID,
			Name: i.AffectedObject.Name,
		},
		Description: i.Description,
		Remediation: i.Remediation,
		Impact:      i.Impact,
		Details:     i.Details,
		Status:      MapIssueStatusStoreToDomain(i.Status),
		IsRealData:  i.IsRealData,
	}
	for _, item := range i.AffectedItems {
		res.AffectedItems = append(res.AffectedItems, domain.AffectedItem{ID: item.ID, Name: item.Name, Detail: item.Detail})
	}
	return res
}

func MapIssueDomainToApi(i domain.SecurityIssue) api.SecurityIssue {
	res := api.SecurityIssue{
		ID:       i.ID,
		Type:     i.Type,
		Severity: i.Severity.String(),
		AffectedObject: api.AffectedObject{
			Type: i.AffectedObject.Type,
			ID:   i.AffectedObject.ID,
			Name: i.AffectedObject.Name,
		},
		Description: i.Description,
		Remediation: i.Remediation,
		Impact:      i.Impact,
		Details:     i.Details,
		Status:      string(i.Status),
		IsRealData:  i.IsRealData,
	}
	if category, ok := domain.CategoryOf(i); ok {
		res.Category = string(category)
	}
	for _, item := range i.AffectedItems {
		res.AffectedItems = append(res.AffectedItems, api.AffectedItem{ID: item.ID, Name: item.Name, Detail: item.Detail})
	}
	return res
}

func mapIssuesDomainToStore(issues []domain.SecurityIssue) []store.SecurityIssue {
	res := make([]store.SecurityIssue, 0, len(issues))
	for _, i := range issues {
		res = append(res, MapIssueDomainToStore(i))
	}
	return res
}

func mapIssuesStoreToDomain(issues []store.SecurityIssue) []domain.SecurityIssue {
	res := make([]domain.SecurityIssue, 0, len(issues))
	for _, i := range issues {
		res = append(res, MapIssueStoreToDomain(i))
	}
	return res
}

func mapIssuesDomainToApi(issues []domain.SecurityIssue) []api.SecurityIssue {
	res := make([]api.SecurityIssue, 0, len(issues))
	for _, i := range issues {
		res = append(res, MapIssueDomainToApi(i))
	}
	return res
}
