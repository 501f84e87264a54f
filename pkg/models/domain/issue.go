package domain

import "fmt"

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "Low", "low":
		return SeverityLow, nil
	case "Medium", "medium":
		return SeverityMedium, nil
	case "High", "high":
		return SeverityHigh, nil
	default:
		return SeverityLow, fmt.Errorf("unknown severity %q", s)
	}
}

// Severities lists every severity from most to least severe.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

type IssueStatus string

const (
	IssueStatusOpen  IssueStatus = "Open"
	IssueStatusFixed IssueStatus = "Fixed"
)

type AffectedObject struct {
	Type string // User, Policy, Directory Role
	ID   string
	Name string
}

type AffectedItem struct {
	ID     string
	Name   string
	Detail string
}

type SecurityIssue struct {
	ID             string
	Type           string // "MFA Not Configured"
	Severity       Severity
	AffectedObject AffectedObject
	Description    string
	Remediation    string
	Impact         string
	Details        string
	Status         IssueStatus
	IsRealData     bool
	AffectedItems  []AffectedItem
}

// MarkFixed moves the issue to Fixed. It reports false when the issue was already fixed.
func (i *SecurityIssue) MarkFixed() bool {
	if i.Status == IssueStatusFixed {
		return false
	}
	i.Status = IssueStatusFixed
	return true
}

func (i *SecurityIssue) IsOpen() bool {
	return i.Status != IssueStatusFixed
}
