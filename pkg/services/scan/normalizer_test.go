package scan

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/services/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testNormalizer() *normalizer {
	return newNormalizer(DefaultSettings(), func() time.Time { return fixedNow })
}

func resultsOf(data map[string]string) *Results {
	r := &Results{Data: map[string]json.RawMessage{}, Errors: []domain.APIError{}, RealData: true}
	for name, body := range data {
		r.Data[name] = json.RawMessage(body)
	}
	return r
}

func issueIDs(issues []domain.SecurityIssue) []string {
	ids := make([]string, 0, len(issues))
	for _, i := range issues {
		ids = append(ids, i.ID)
	}
	return ids
}

func TestNormalize_DemoTenant(t *testing.T) {
	results, err := NewDemoSource().Collect(context.Background())
	require.NoError(t, err)

	findings := testNormalizer().Normalize(context.Background(), results)

	assert.ElementsMatch(t, []string{
		"risky-users-detected",
		"mfa-not-configured",
		"inactive-accounts",
		"external-email-forwarding",
		"security-defaults-disabled",
		"excessive-global-administrators",
		"low-secure-score",
		"active-security-alerts",
		"non-compliant-devices",
		"legacy-authentication-allowed",
		"users-can-consent-to-apps",
		"unrestricted-guest-invitations",
		"expiring-application-credentials",
		"passwords-never-expire",
		"unused-licenses",
	}, issueIDs(findings.Issues))
	assert.Empty(t, findings.AccessWarnings)

	for _, issue := range findings.Issues {
		assert.False(t, issue.IsRealData, issue.ID)
		assert.Equal(t, domain.IssueStatusOpen, issue.Status, issue.ID)
		_, ok := domain.CategoryOf(issue)
		assert.True(t, ok, "issue %s must be categorised", issue.ID)
	}
}

func TestNormalize_Detectors(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]string
		issueID  string
		severity domain.Severity
		items    int
	}{
		{
			name: "risky users ignore remediated",
			data: map[string]string{DatasetRiskyUsers: `[
				{"id":"1","userPrincipalName":"a@x.com","riskLevel":"high","riskState":"atRisk"},
				{"id":"2","userPrincipalName":"b@x.com","riskLevel":"low","riskState":"remediated"}]`},
			issueID:  "risky-users-detected",
			severity: domain.SeverityHigh,
			items:    1,
		},
		{
			name: "risky users only at risk or compromised",
			data: map[string]string{DatasetRiskyUsers: `[
				{"id":"1","userPrincipalName":"safe@x.com","riskLevel":"none","riskState":"confirmedSafe"},
				{"id":"2","userPrincipalName":"new@x.com","riskLevel":"low","riskState":"unknownFutureValue"},
				{"id":"3","userPrincipalName":"blank@x.com","riskLevel":"low","riskState":""},
				{"id":"4","userPrincipalName":"dismissed@x.com","riskLevel":"high","riskState":"dismissed"},
				{"id":"5","userPrincipalName":"owned@x.com","riskLevel":"high","riskState":"confirmedCompromised"}]`},
			issueID:  "risky-users-detected",
			severity: domain.SeverityHigh,
			items:    1,
		},
		{
			name: "mfa",
			data: map[string]string{DatasetMFAStatus: `[
				{"id":"1","userPrincipalName":"a@x.com","isMfaRegistered":false},
				{"id":"2","userPrincipalName":"b@x.com","isMfaRegistered":true},
				{"id":"3","userPrincipalName":"c@x.com","isMfaRegistered":false}]`},
			issueID:  "mfa-not-configured",
			severity: domain.SeverityHigh,
			items:    2,
		},
		{
			name: "inactive accounts skip disabled and recent",
			data: map[string]string{DatasetUsers: `[
				{"id":"1","accountEnabled":true,"signInActivity":{"lastSignInDateTime":"2025-01-01T00:00:00Z"}},
				{"id":"2","accountEnabled":true,"signInActivity":{"lastSignInDateTime":"2025-05-30T00:00:00Z"}},
				{"id":"3","accountEnabled":false,"signInActivity":{"lastSignInDateTime":"2020-01-01T00:00:00Z"}},
				{"id":"4","accountEnabled":true,"createdDateTime":"2019-01-01T00:00:00Z"}]`},
			issueID:  "inactive-accounts",
			severity: domain.SeverityMedium,
			items:    2,
		},
		{
			name: "forwarding outside verified domains",
			data: map[string]string{
				DatasetOrganization: `[{"id":"o","verifiedDomains":[{"name":"Contoso.com"}]}]`,
				DatasetInboxRules: `[
					{"id":"r1","displayName":"out","isEnabled":true,"actions":{"forwardTo":[{"emailAddress":{"address":"x@gmail.com"}}]}},
					{"id":"r2","displayName":"in","isEnabled":true,"actions":{"redirectTo":[{"emailAddress":{"address":"y@contoso.com"}}]}},
					{"id":"r3","displayName":"off","isEnabled":false,"actions":{"forwardTo":[{"emailAddress":{"address":"z@gmail.com"}}]}}]`,
			},
			issueID:  "external-email-forwarding",
			severity: domain.SeverityMedium,
			items:    1,
		},
		{
			name: "global admins over limit",
			data: map[string]string{DatasetDirectoryRoles: `[{"id":"r","displayName":"Global Administrator",
				"members":[{"id":"1"},{"id":"2"},{"id":"3"},{"id":"4"},{"id":"5"}]}]`},
			issueID:  "excessive-global-administrators",
			severity: domain.SeverityMedium,
			items:    5,
		},
		{
			name:     "secure score below target",
			data:     map[string]string{DatasetSecureScores: `[{"id":"s","currentScore":20,"maxScore":100}]`},
			issueID:  "low-secure-score",
			severity: domain.SeverityMedium,
		},
		{
			name: "alerts escalate to high",
			data: map[string]string{DatasetSecurityAlerts: `[
				{"id":"1","title":"a","severity":"medium","status":"new"},
				{"id":"2","title":"b","severity":"high","status":"inProgress"},
				{"id":"3","title":"c","severity":"high","status":"resolved"}]`},
			issueID:  "active-security-alerts",
			severity: domain.SeverityHigh,
			items:    2,
		},
		{
			name: "alerts stay medium",
			data: map[string]string{DatasetSecurityAlerts: `[
				{"id":"1","title":"a","severity":"low","status":"new"}]`},
			issueID:  "active-security-alerts",
			severity: domain.SeverityMedium,
			items:    1,
		},
		{
			name: "non compliant devices",
			data: map[string]string{DatasetManagedDevices: `[
				{"id":"1","deviceName":"a","complianceState":"noncompliant"},
				{"id":"2","deviceName":"b","complianceState":"compliant"}]`},
			issueID:  "non-compliant-devices",
			severity: domain.SeverityMedium,
			items:    1,
		},
		{
			name:     "guest invites",
			data:     map[string]string{DatasetAuthorizationPolicy: `{"id":"p","allowInvitesFrom":"everyone"}`},
			issueID:  "unrestricted-guest-invitations",
			severity: domain.SeverityLow,
		},
		{
			name: "user consent",
			data: map[string]string{DatasetAuthorizationPolicy: `{"id":"p","allowInvitesFrom":"adminsAndGuestInviters",
				"defaultUserRolePermissions":{"permissionGrantPoliciesAssigned":["ManagePermissionGrantsForSelf.microsoft-user-default-legacy"]}}`},
			issueID:  "users-can-consent-to-apps",
			severity: domain.SeverityMedium,
		},
		{
			name: "expiring credentials",
			data: map[string]string{DatasetApplications: `[
				{"id":"a","appId":"1","displayName":"soon","passwordCredentials":[{"displayName":"s","endDateTime":"2025-06-10T00:00:00Z"}]},
				{"id":"b","appId":"2","displayName":"later","passwordCredentials":[{"displayName":"s","endDateTime":"2026-06-10T00:00:00Z"}]},
				{"id":"c","appId":"3","displayName":"cert","keyCredentials":[{"displayName":"k","endDateTime":"2025-01-01T00:00:00Z"}]}]`},
			issueID:  "expiring-application-credentials",
			severity: domain.SeverityLow,
			items:    2,
		},
		{
			name: "passwords never expire",
			data: map[string]string{DatasetUsers: `[
				{"id":"1","accountEnabled":true,"passwordPolicies":"DisablePasswordExpiration","signInActivity":{"lastSignInDateTime":"2025-05-30T00:00:00Z"}},
				{"id":"2","accountEnabled":true,"passwordPolicies":"None","signInActivity":{"lastSignInDateTime":"2025-05-30T00:00:00Z"}}]`},
			issueID:  "passwords-never-expire",
			severity: domain.SeverityLow,
			items:    1,
		},
		{
			name: "unused licenses",
			data: map[string]string{DatasetSubscribedSkus: `[
				{"skuId":"1","skuPartNumber":"E5","consumedUnits":5,"prepaidUnits":{"enabled":10}},
				{"skuId":"2","skuPartNumber":"E3","consumedUnits":10,"prepaidUnits":{"enabled":10}}]`},
			issueID:  "unused-licenses",
			severity: domain.SeverityLow,
			items:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Security defaults on keeps the policy detectors quiet.
			data := map[string]string{DatasetSecurityDefaults: `{"id":"sd","isEnabled":true}`}
			for k, v := range tt.data {
				data[k] = v
			}

			findings := testNormalizer().Normalize(context.Background(), resultsOf(data))

			require.Equal(t, []string{tt.issueID}, issueIDs(findings.Issues))
			issue := findings.Issues[0]
			assert.Equal(t, tt.severity, issue.Severity)
			assert.Len(t, issue.AffectedItems, tt.items)
			assert.True(t, issue.IsRealData)
			assert.NotEmpty(t, issue.Description)
		})
	}
}

func TestNormalize_PolicyDetectors(t *testing.T) {
	t.Run("security defaults off without conditional access", func(t *testing.T) {
		findings := testNormalizer().Normalize(context.Background(), resultsOf(map[string]string{
			DatasetSecurityDefaults:  `{"id":"sd","isEnabled":false}`,
			DatasetConditionalAccess: `[]`,
		}))
		assert.ElementsMatch(t, []string{"security-defaults-disabled", "legacy-authentication-allowed"}, issueIDs(findings.Issues))
	})

	t.Run("enforced blocking policy", func(t *testing.T) {
		findings := testNormalizer().Normalize(context.Background(), resultsOf(map[string]string{
			DatasetSecurityDefaults: `{"id":"sd","isEnabled":false}`,
			DatasetConditionalAccess: `[{"id":"p","state":"enabled",
				"conditions":{"clientAppTypes":["exchangeActiveSync","other"]},
				"grantControls":{"operator":"OR","builtInControls":["block"]}}]`,
		}))
		assert.Empty(t, findings.Issues)
	})

	t.Run("conditional access unreadable", func(t *testing.T) {
		results := resultsOf(map[string]string{
			DatasetSecurityDefaults:  `{"id":"sd","isEnabled":false}`,
			DatasetConditionalAccess: `[]`,
		})
		results.Errors = append(results.Errors, domain.APIError{
			Endpoint: DatasetConditionalAccess,
			Path:     "identity/conditionalAccess/policies",
		})

		findings := testNormalizer().Normalize(context.Background(), results)
		assert.Empty(t, findings.Issues)
		require.Len(t, findings.AccessWarnings, 1)
		assert.Equal(t, "Identity Access Required", findings.AccessWarnings[0].Type)
	})
}

func TestNormalize_MalformedDatasetSkipsDetector(t *testing.T) {
	findings := testNormalizer().Normalize(context.Background(), resultsOf(map[string]string{
		DatasetSecurityDefaults: `{"id":"sd","isEnabled":true}`,
		DatasetRiskyUsers:       `{"unexpected":"object"}`,
		DatasetMFAStatus:        `[{"id":"1","isMfaRegistered":false}]`,
	}))

	assert.Equal(t, []string{"mfa-not-configured"}, issueIDs(findings.Issues))
}

func TestNormalize_FailedSecureScoreIsOnlyAWarning(t *testing.T) {
	client := &fakeGraph{responses: map[string]graph.Response{
		"security/secureScores":                              forbidden(),
		"policies/identitySecurityDefaultsEnforcementPolicy": ok(`{"id":"sd","isEnabled":true}`),
		"policies/authorizationPolicy":                       ok(`{"id":"p","allowInvitesFrom":"adminsAndGuestInviters"}`),
	}}
	results, err := NewCollector(client, nil, 0, nil).Collect(context.Background())
	require.NoError(t, err)

	findings := testNormalizer().Normalize(context.Background(), results)

	assert.Empty(t, findings.Issues)
	require.Len(t, findings.AccessWarnings, 1)
	warning := findings.AccessWarnings[0]
	assert.Equal(t, "Security Posture Access Required", warning.Type)
	assert.Equal(t, "access-security-posture", warning.ID)
	assert.Equal(t, domain.SeverityMedium, warning.Severity)
	require.Len(t, warning.AffectedItems, 1)
	assert.Equal(t, DatasetSecureScores, warning.AffectedItems[0].ID)

	summary := BuildSummary(SummaryInput{ID: "s", TenantID: "t", Results: results, Findings: findings})
	assert.Equal(t, 100, summary.OverallRiskScore)
	assert.Equal(t, domain.RiskBadgeGood, summary.RiskBadge)
	assert.Equal(t, 1, summary.AccessWarnings)
	assert.Equal(t, 100, summary.CategoryScores[domain.CategorySecurityPosture])
	assert.Equal(t, http.StatusForbidden, results.Errors[0].StatusCode)
}

func TestNormalize_ConfirmedSafeRiskyUsersAreNotIssues(t *testing.T) {
	findings := testNormalizer().Normalize(context.Background(), resultsOf(map[string]string{
		DatasetSecurityDefaults: `{"id":"sd","isEnabled":true}`,
		DatasetRiskyUsers: `[
			{"id":"1","userPrincipalName":"safe@x.com","riskLevel":"none","riskState":"confirmedSafe"},
			{"id":"2","userPrincipalName":"new@x.com","riskLevel":"low","riskState":"unknownFutureValue"}]`,
	}))

	assert.NotContains(t, issueIDs(findings.Issues), "risky-users-detected")
}

func TestNormalize_FailedSecurityDefaultsIsOnlyAWarning(t *testing.T) {
	client := &fakeGraph{responses: map[string]graph.Response{
		"policies/identitySecurityDefaultsEnforcementPolicy": forbidden(),
		"policies/authorizationPolicy":                       ok(`{"id":"p","allowInvitesFrom":"adminsAndGuestInviters"}`),
	}}
	results, err := NewCollector(client, nil, 0, nil).Collect(context.Background())
	require.NoError(t, err)

	findings := testNormalizer().Normalize(context.Background(), results)

	assert.Empty(t, findings.Issues)
	require.Len(t, findings.AccessWarnings, 1)
	assert.Equal(t, "Security Posture Access Required", findings.AccessWarnings[0].Type)

	summary := BuildSummary(SummaryInput{ID: "s", TenantID: "t", Results: results, Findings: findings})
	assert.Equal(t, 100, summary.OverallRiskScore)
}

func TestAccessWarnings_GroupedPerCategory(t *testing.T) {
	results := resultsOf(nil)
	results.Errors = []domain.APIError{
		{Endpoint: DatasetManagedDevices, Path: "deviceManagement/managedDevices"},
		{Endpoint: DatasetDevices, Path: "devices?$top=999"},
		{Endpoint: DatasetRiskyUsers, Path: "identityProtection/riskyUsers"},
		{Endpoint: DatasetSecureScores, Path: "security/secureScores?$top=1"},
	}

	warnings := accessWarnings(results)

	require.Len(t, warnings, 3)
	assert.Equal(t, "Security Posture Access Required", warnings[0].Type)
	assert.Equal(t, "Identity Access Required", warnings[1].Type)
	assert.Equal(t, "Device Access Required", warnings[2].Type)
	assert.Len(t, warnings[2].AffectedItems, 2)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "mfa-not-configured", slug("MFA Not Configured"))
	assert.Equal(t, "non-compliant-devices", slug("Non-Compliant Devices"))
	assert.Equal(t, "access-data-protection", "access-"+slug(string(domain.CategoryDataProtection)))
}
