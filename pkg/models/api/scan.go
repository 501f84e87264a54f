package api

import "time"

type AffectedObject struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AffectedItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

type SecurityIssue struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Category       string         `json:"category,omitempty"`
	Severity       string         `json:"severity"`
	AffectedObject AffectedObject `json:"affected_object"`
	Description    string         `json:"description"`
	Remediation    string         `json:"remediation,omitempty"`
	Impact         string         `json:"impact,omitempty"`
	Details        string         `json:"details,omitempty"`
	Status         string         `json:"status"`
	IsRealData     bool           `json:"is_real_data"`
	AffectedItems  []AffectedItem `json:"affected_items,omitempty"`
}

type ScanSummary struct {
	ID                    string         `json:"id"`
	Timestamp             time.Time      `json:"timestamp"`
	TenantID              string         `json:"tenant_id"`
	TenantName            string         `json:"tenant_name"`
	OverallRiskScore      int            `json:"overall_risk_score"`
	RiskBadge             string         `json:"risk_badge"`
	IssueCountsByCategory map[string]int `json:"issue_counts_by_category"`
	IssueCountsBySeverity map[string]int `json:"issue_counts_by_severity"`
	CategoryScores        map[string]int `json:"category_scores"`
	AccessWarnings        int            `json:"access_warnings"`
	Scanned               map[string]int `json:"scanned"`
}

type Scan struct {
	Summary        ScanSummary     `json:"summary"`
	CurrentScore   int             `json:"current_score"`
	CurrentBadge   string          `json:"current_badge"`
	Issues         []SecurityIssue `json:"issues"`
	AccessWarnings []SecurityIssue `json:"access_warnings"`
	FailedCalls    []string        `json:"failed_calls"`
	UsesRealData   bool            `json:"uses_real_data"`
	IssuesFixed    int             `json:"issues_fixed"`
}

type Error struct {
	Message string `json:"error"`
}

type ClearResult struct {
	Removed int `json:"removed"`
}
