package domain

import (
	"encoding/json"
	"time"
)

type RiskBadge string

const (
	RiskBadgeGood             RiskBadge = "Good"
	RiskBadgeNeedsImprovement RiskBadge = "Needs Improvement"
	RiskBadgeCritical         RiskBadge = "Critical"
)

type EntityCounts struct {
	Users          int
	Guests         int
	Groups         int
	Devices        int
	Applications   int
	Policies       int
	DirectoryRoles int
}

type ScanSummary struct {
	ID                    string
	Timestamp             time.Time
	TenantID              string
	TenantName            string
	OverallRiskScore      int // 0-100, higher is better
	RiskBadge             RiskBadge
	IssueCountsByCategory map[Category]int
	IssueCountsBySeverity map[Severity]int
	CategoryScores        map[Category]int
	AccessWarnings        int
	Scanned               EntityCounts
}

// APIError marks an endpoint whose data could not be collected.
type APIError struct {
	Endpoint   string // logical dataset name
	Path       string
	StatusCode int
	Message    string
}

type ScanData struct {
	Summary        ScanSummary
	Issues         []SecurityIssue
	AccessWarnings []SecurityIssue
	APIErrors      []APIError
	RawData        map[string]json.RawMessage
	UsesRealData   bool
	IssuesFixed    int
}

func (d *ScanData) FindIssue(id string) (*SecurityIssue, bool) {
	for i := range d.Issues {
		if d.Issues[i].ID == id {
			return &d.Issues[i], true
		}
	}
	return nil, false
}

func (d *ScanData) OpenIssues() []SecurityIssue {
	open := make([]SecurityIssue, 0, len(d.Issues))
	for _, issue := range d.Issues {
		if issue.IsOpen() {
			open = append(open, issue)
		}
	}
	return open
}
