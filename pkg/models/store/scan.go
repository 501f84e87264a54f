package store

import (
	"encoding/json"
	"time"
)

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
	Severity       string         `json:"severity"`
	AffectedObject AffectedObject `json:"affectedObject"`
	Description    string         `json:"description"`
	Remediation    string         `json:"remediation,omitempty"`
	Impact         string         `json:"impact,omitempty"`
	Details        string         `json:"details,omitempty"`
	Status         string         `json:"status"`
	IsRealData     bool           `json:"isRealData"`
	AffectedItems  []AffectedItem `json:"affectedItems,omitempty"`
}

type EntityCounts struct {
	Users          int `json:"users"`
	Guests         int `json:"guests"`
	Groups         int `json:"groups"`
	Devices        int `json:"devices"`
	Applications   int `json:"applications"`
	Policies       int `json:"policies"`
	DirectoryRoles int `json:"directoryRoles"`
}

type ScanSummary struct {
	ID                    string         `json:"id"`
	Timestamp             time.Time      `json:"timestamp"`
	TenantID              string         `json:"tenantId"`
	TenantName            string         `json:"tenantName"`
	OverallRiskScore      int            `json:"overallRiskScore"`
	RiskBadge             string         `json:"riskBadge"`
	IssueCountsByCategory map[string]int `json:"issueCountsByCategory"`
	IssueCountsBySeverity map[string]int `json:"issueCountsBySeverity"`
	CategoryScores        map[string]int `json:"categoryScores"`
	AccessWarnings        int            `json:"accessWarnings"`
	Scanned               EntityCounts   `json:"scanned"`
}

type APIError struct {
	Endpoint   string `json:"endpoint"`
	Path       string `json:"path"`
	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"message"`
}

// ScanData is the blob persisted under scan_<id>.
type ScanData struct {
	Summary        ScanSummary                `json:"summary"`
	Issues         []SecurityIssue            `json:"issues"`
	AccessWarnings []SecurityIssue            `json:"accessWarnings"`
	APIErrors      []APIError                 `json:"apiErrors"`
	RawData        map[string]json.RawMessage `json:"rawData,omitempty"`
	UsesRealData   bool                       `json:"usesRealData"`
	IssuesFixed    int                        `json:"issuesFixed"`
}
