package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name     string
		issue    SecurityIssue
		expected Category
		ok       bool
	}{
		{
			name:     "user object is identity",
			issue:    SecurityIssue{Type: "MFA Not Configured", AffectedObject: AffectedObject{Type: "User"}},
			expected: CategoryIdentity,
			ok:       true,
		},
		{
			name:     "secure score is security posture",
			issue:    SecurityIssue{Type: "Low Secure Score", AffectedObject: AffectedObject{Type: "Secure Score"}},
			expected: CategorySecurityPosture,
			ok:       true,
		},
		{
			name:     "mailbox rule is data protection",
			issue:    SecurityIssue{Type: "External Email Forwarding", AffectedObject: AffectedObject{Type: "Mailbox Rule"}},
			expected: CategoryDataProtection,
			ok:       true,
		},
		{
			name:     "devices",
			issue:    SecurityIssue{Type: "Non-Compliant Devices", AffectedObject: AffectedObject{Type: "Device"}},
			expected: CategoryDevice,
			ok:       true,
		},
		{
			name:     "licensing",
			issue:    SecurityIssue{Type: "Unused Licenses", AffectedObject: AffectedObject{Type: "Subscription"}},
			expected: CategoryLicensing,
			ok:       true,
		},
		{
			name:     "first match wins",
			issue:    SecurityIssue{Type: "Security Defaults Disabled", AffectedObject: AffectedObject{Type: "User"}},
			expected: CategorySecurityPosture,
			ok:       true,
		},
		{
			name:  "unmatched",
			issue: SecurityIssue{Type: "Something Odd", AffectedObject: AffectedObject{Type: "Widget"}},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, ok := CategoryOf(tt.issue)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, category)
		})
	}
}

func TestSecurityIssue_MarkFixed(t *testing.T) {
	issue := SecurityIssue{ID: "mfa-not-configured", Status: IssueStatusOpen}

	assert.True(t, issue.MarkFixed())
	assert.Equal(t, IssueStatusFixed, issue.Status)
	assert.False(t, issue.MarkFixed())
	assert.False(t, issue.IsOpen())
}

func TestParseSeverity(t *testing.T) {
	for _, s := range Severities {
		parsed, err := ParseSeverity(s.String())
		assert.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseSeverity("Critical")
	assert.Error(t, err)
}
