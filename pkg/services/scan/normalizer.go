package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/models/graph"
	"github.com/rs/zerolog"
)

const globalAdminTemplateID = "62e90394-69f5-4237-9190-012177145e10"

// Findings is the normalized output of one scan. AccessWarnings describe
// endpoints that could not be read and never contribute to risk scores.
type Findings struct {
	Issues         []domain.SecurityIssue
	AccessWarnings []domain.SecurityIssue
}

type Normalizer interface {
	Normalize(ctx context.Context, results *Results) Findings
}

type input struct {
	results  *Results
	settings Settings
	now      time.Time
}

type detector struct {
	name string
	run  func(in *input) (*domain.SecurityIssue, error)
}

type normalizer struct {
	settings  Settings
	now       func() time.Time
	detectors []detector
}

func NewNormalizer(settings Settings) Normalizer {
	return newNormalizer(settings, time.Now)
}

func newNormalizer(settings Settings, now func() time.Time) *normalizer {
	return &normalizer{
		settings: settings.WithDefaults(),
		now:      now,
		detectors: []detector{
			{"riskyUsers", detectRiskyUsers},
			{"mfa", detectMissingMFA},
			{"inactiveAccounts", detectInactiveAccounts},
			{"emailForwarding", detectExternalForwarding},
			{"securityDefaults", detectSecurityDefaults},
			{"globalAdmins", detectExcessiveGlobalAdmins},
			{"secureScore", detectLowSecureScore},
			{"securityAlerts", detectActiveAlerts},
			{"deviceCompliance", detectNonCompliantDevices},
			{"legacyAuth", detectLegacyAuthentication},
			{"userConsent", detectUserConsent},
			{"guestInvites", detectGuestInvitations},
			{"appCredentials", detectExpiringCredentials},
			{"passwordExpiry", detectPasswordsNeverExpire},
			{"licenses", detectUnusedLicenses},
		},
	}
}

// Normalize runs every detector independently; a detector that cannot decode
// its dataset is skipped.
func (n *normalizer) Normalize(ctx context.Context, results *Results) Findings {
	logger := zerolog.Ctx(ctx)
	in := &input{results: results, settings: n.settings, now: n.now()}

	findings := Findings{
		Issues:         []domain.SecurityIssue{},
		AccessWarnings: accessWarnings(results),
	}
	for _, d := range n.detectors {
		issue, err := d.run(in)
		if err != nil {
			logger.Warn().Err(err).Str("detector", d.name).Msg("detector skipped")
			continue
		}
		if issue == nil {
			continue
		}
		issue.ID = slug(issue.Type)
		issue.Status = domain.IssueStatusOpen
		issue.IsRealData = results.RealData
		findings.Issues = append(findings.Issues, *issue)
	}
	return findings
}

// accessWarnings groups failed endpoints into one record per category.
func accessWarnings(results *Results) []domain.SecurityIssue {
	grouped := make(map[domain.Category][]domain.APIError)
	for _, e := range results.Errors {
		category := EndpointCategory(e.Path)
		grouped[category] = append(grouped[category], e)
	}

	warnings := make([]domain.SecurityIssue, 0, len(grouped))
	for _, category := range domain.Categories {
		failed, ok := grouped[category]
		if !ok {
			continue
		}
		items := make([]domain.AffectedItem, 0, len(failed))
		for _, e := range failed {
			items = append(items, domain.AffectedItem{ID: e.Endpoint, Name: e.Path, Detail: e.Message})
		}
		warnings = append(warnings, domain.SecurityIssue{
			ID:       "access-" + slug(string(category)),
			Type:     fmt.Sprintf("%s Access Required", category),
			Severity: domain.SeverityMedium,
			AffectedObject: domain.AffectedObject{
				Type: "API Permission",
				ID:   slug(string(category)),
				Name: string(category),
			},
			Description: fmt.Sprintf("%d %s endpoint(s) could not be read, so %s checks were not evaluated.",
				len(failed), category, category),
			Remediation:   "Grant the application the missing Microsoft Graph permissions and admin consent, then run the scan again.",
			Impact:        "Findings for this category may be incomplete.",
			Status:        domain.IssueStatusOpen,
			IsRealData:    results.RealData,
			AffectedItems: items,
		})
	}
	return warnings
}

func detectRiskyUsers(in *input) (*domain.SecurityIssue, error) {
	users, err := decodeList[graph.RiskyUser](in, DatasetRiskyUsers)
	if err != nil {
		return nil, err
	}

	var items []domain.AffectedItem
	for _, u := range users {
		switch strings.ToLower(u.RiskState) {
		case "atrisk", "confirmedcompromised":
		default:
			continue
		}
		items = append(items, domain.AffectedItem{
			ID:     u.ID,
			Name:   firstNonEmpty(u.UserPrincipalName, u.UserDisplayName, u.ID),
			Detail: fmt.Sprintf("risk level %s, state %s", u.RiskLevel, u.RiskState),
		})
	}
	if len(items) == 0 {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "Risky Users Detected",
		Severity:       domain.SeverityHigh,
		AffectedObject: domain.AffectedObject{Type: "User", ID: DatasetRiskyUsers, Name: countLabel(len(items), "user")},
		Description:    fmt.Sprintf("Identity Protection flagged %s as at risk or compromised.", countLabel(len(items), "user")),
		Remediation:    "Investigate each risky user, reset credentials and require MFA re-registration, then confirm or dismiss the risk.",
		Impact:         "Compromised accounts can be used to access tenant data and escalate privileges.",
		AffectedItems:  items,
	}, nil
}

func detectMissingMFA(in *input) (*domain.SecurityIssue, error) {
	details, err := decodeList[graph.UserRegistrationDetail](in, DatasetMFAStatus)
	if err != nil {
		return nil, err
	}

	var items []domain.AffectedItem
	for _, d := range details {
		if d.IsMfaRegistered {
			continue
		}
		detail := ""
		if d.IsAdmin {
			detail = "administrator"
		}
		items = append(items, domain.AffectedItem{
			ID:     d.ID,
			Name:   firstNonEmpty(d.UserPrincipalName, d.UserDisplayName, d.ID),
			Detail: detail,
		})
	}
	if len(items) == 0 {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "MFA Not Configured",
		Severity:       domain.SeverityHigh,
		AffectedObject: domain.AffectedObject{Type: "User", ID: DatasetMFAStatus, Name: countLabel(len(items), "user")},
		Description:    fmt.Sprintf("%s have not registered a multi-factor authentication method.", countLabel(len(items), "user")),
		Remediation:    "Require MFA registration through a Conditional Access policy or security defaults.",
		Impact:         "Accounts protected only by a password are easily taken over by phishing or password spray.",
		AffectedItems:  items,
	}, nil
}

func detectInactiveAccounts(in *input) (*domain.SecurityIssue, error) {
	users, err := decodeList[graph.User](in, DatasetUsers)
	if err != nil {
		return nil, err
	}

	cutoff := in.now.AddDate(0, 0, -in.settings.InactiveDays)
	var items []domain.AffectedItem
	for _, u := range users {
		if !u.AccountEnabled {
			continue
		}
		var last *time.Time
		if u.SignInActivity != nil {
			last = u.SignInActivity.LastSignInDateTime
		}
		switch {
		case last != nil && last.Before(cutoff):
			items = append(items, domain.AffectedItem{
				ID:     u.ID,
				Name:   firstNonEmpty(u.UserPrincipalName, u.DisplayName, u.ID),
				Detail: "last sign-in " + last.Format("2006-01-02"),
			})
		case last == nil && u.CreatedDateTime != nil && u.CreatedDateTime.Before(cutoff):
			items = append(items, domain.AffectedItem{
				ID:     u.ID,
				Name:   firstNonEmpty(u.UserPrincipalName, u.DisplayName, u.ID),
				Detail: "never signed in",
			})
		}
	}
	if len(items) == 0 {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "Inactive Accounts",
		Severity:       domain.SeverityMedium,
		AffectedObject: domain.AffectedObject{Type: "User Account", ID: DatasetUsers, Name: countLabel(len(items), "account")},
		Description: fmt.Sprintf("%s are enabled but have not signed in for more than %d days.",
			countLabel(len(items), "account"), in.settings.InactiveDays),
		Remediation:   "Disable or delete stale accounts and review them with their owners.",
		Impact:        "Unused accounts are rarely monitored and are attractive targets for takeover.",
		Details:       fmt.Sprintf("Threshold: %d days", in.settings.InactiveDays),
		AffectedItems: items,
	}, nil
}

func detectExternalForwarding(in *input) (*domain.SecurityIssue, error) {
	rules, err := decodeList[graph.MessageRule](in, DatasetInboxRules)
	if err != nil {
		return nil, err
	}
	domains, err := tenantDomains(in)
	if err != nil {
		return nil, err
	}
	if len(domains) == 0 {
		return nil, nil
	}

	var items []domain.AffectedItem
	for _, rule := range rules {
		if !rule.IsEnabled {
			continue
		}
		for _, r := range rule.Recipients() {
			address := strings.ToLower(r.EmailAddress.Address)
			at := strings.LastIndex(address, "@")
			if at < 0 || domains[address[at+1:]] {
				continue
			}
			items = append(items, domain.AffectedItem{
				ID:     rule.ID,
				Name:   rule.DisplayName,
				Detail: "forwards to " + r.EmailAddress.Address,
			})
		}
	}
	if len(items) == 0 {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "External Email Forwarding",
		Severity:       domain.SeverityMedium,
		AffectedObject: domain.AffectedObject{Type: "Mailbox Rule", ID: DatasetInboxRules, Name: countLabel(len(items), "rule")},
		Description:    fmt.Sprintf("%s forward mail to addresses outside the tenant's verified domains.", countLabel(len(items), "rule")),
		Remediation:    "Remove the forwarding rules and block automatic external forwarding in the outbound spam policy.",
		Impact:         "Mail forwarded outside the organisation is a common data exfiltration channel.",
		AffectedItems:  items,
	}, nil
}

func detectSecurityDefaults(in *input) (*domain.SecurityIssue, error) {
	policy, err := decodeObject[graph.SecurityDefaultsPolicy](in, DatasetSecurityDefaults)
	if err != nil || policy == nil || policy.IsEnabled {
		return nil, err
	}
	if in.results.Failed(DatasetConditionalAccess) {
		return nil, nil
	}
	policies, err := decodeList[graph.ConditionalAccessPolicy](in, DatasetConditionalAccess)
	if err != nil {
		return nil, err
	}
	for _, p := range policies {
		if p.State == "enabled" {
			return nil, nil
		}
	}

	return &domain.SecurityIssue{
		Type:           "Security Defaults Disabled",
		Severity:       domain.SeverityHigh,
		AffectedObject: domain.AffectedObject{Type: "Security Defaults Policy", ID: policy.ID, Name: firstNonEmpty(policy.DisplayName, "Security Defaults")},
		Description:    "Security defaults are turned off and no Conditional Access policy is enforced.",
		Remediation:    "Enable security defaults, or create enforced Conditional Access policies that require MFA and block legacy authentication.",
		Impact:         "The tenant has no baseline protection against common identity attacks.",
	}, nil
}

func detectExcessiveGlobalAdmins(in *input) (*domain.SecurityIssue, error) {
	roles, err := decodeList[graph.DirectoryRole](in, DatasetDirectoryRoles)
	if err != nil {
		return nil, err
	}

	for _, role := range roles {
		if role.RoleTemplateID != globalAdminTemplateID && !strings.EqualFold(role.DisplayName, "Global Administrator") {
			continue
		}
		if len(role.Members) <= in.settings.MaxGlobalAdmins {
			return nil, nil
		}
		items := make([]domain.AffectedItem, 0, len(role.Members))
		for _, m := range role.Members {
			items = append(items, domain.AffectedItem{ID: m.ID, Name: firstNonEmpty(m.UserPrincipalName, m.DisplayName, m.ID)})
		}
		return &domain.SecurityIssue{
			Type:           "Excessive Global Administrators",
			Severity:       domain.SeverityMedium,
			AffectedObject: domain.AffectedObject{Type: "Directory Role", ID: role.ID, Name: role.DisplayName},
			Description: fmt.Sprintf("%d principals hold the Global Administrator role; the recommended maximum is %d.",
				len(role.Members), in.settings.MaxGlobalAdmins),
			Remediation:   "Move administrators to least-privileged roles and use Privileged Identity Management for just-in-time elevation.",
			Impact:        "Every additional global administrator widens the blast radius of a single compromised account.",
			AffectedItems: items,
		}, nil
	}
	return nil, nil
}

func detectLowSecureScore(in *input) (*domain.SecurityIssue, error) {
	scores, err := decodeList[graph.SecureScore](in, DatasetSecureScores)
	if err != nil || len(scores) == 0 {
		return nil, err
	}

	latest := scores[0]
	if latest.MaxScore <= 0 {
		return nil, nil
	}
	percent := latest.CurrentScore / latest.MaxScore * 100
	if percent >= in.settings.MinSecureScorePercent {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "Low Secure Score",
		Severity:       domain.SeverityMedium,
		AffectedObject: domain.AffectedObject{Type: "Secure Score", ID: latest.ID, Name: "Microsoft Secure Score"},
		Description: fmt.Sprintf("The tenant's Secure Score is %.1f of %.1f (%.0f%%), below the %.0f%% target.",
			latest.CurrentScore, latest.MaxScore, percent, in.settings.MinSecureScorePercent),
		Remediation: "Work through the improvement actions in the Microsoft Defender portal, starting with identity controls.",
		Impact:      "A low score indicates many recommended controls are not in place.",
	}, nil
}

func detectActiveAlerts(in *input) (*domain.SecurityIssue, error) {
	alerts, err := decodeList[graph.Alert](in, DatasetSecurityAlerts)
	if err != nil {
		return nil, err
	}

	severity := domain.SeverityMedium
	var items []domain.AffectedItem
	for _, a := range alerts {
		switch strings.ToLower(a.Status) {
		case "new", "inprogress":
		default:
			continue
		}
		if strings.EqualFold(a.Severity, "high") {
			severity = domain.SeverityHigh
		}
		items = append(items, domain.AffectedItem{ID: a.ID, Name: a.Title, Detail: fmt.Sprintf("%s severity, %s", a.Severity, a.Status)})
	}
	if len(items) == 0 {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "Active Security Alerts",
		Severity:       severity,
		AffectedObject: domain.AffectedObject{Type: "Security Alert", ID: DatasetSecurityAlerts, Name: countLabel(len(items), "alert")},
		Description:    fmt.Sprintf("%s are open and awaiting triage.", countLabel(len(items), "security alert")),
		Remediation:    "Triage the alerts in the Microsoft Defender portal and resolve or escalate each one.",
		Impact:         "Untriaged alerts may indicate an ongoing compromise.",
		AffectedItems:  items,
	}, nil
}

func detectNonCompliantDevices(in *input) (*domain.SecurityIssue, error) {
	devices, err := decodeList[graph.ManagedDevice](in, DatasetManagedDevices)
	if err != nil {
		return nil, err
	}

	var items []domain.AffectedItem
	for _, d := range devices {
		if !strings.EqualFold(d.ComplianceState, "noncompliant") {
			continue
		}
		items = append(items, domain.AffectedItem{
			ID:     d.ID,
			Name:   d.DeviceName,
			Detail: strings.TrimSpace(d.OperatingSystem + " " + d.UserPrincipalName),
		})
	}
	if len(items) == 0 {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "Non-Compliant Devices",
		Severity:       domain.SeverityMedium,
		AffectedObject: domain.AffectedObject{Type: "Device", ID: DatasetManagedDevices, Name: countLabel(len(items), "device")},
		Description:    fmt.Sprintf("%s do not meet their Intune compliance policies.", countLabel(len(items), "device")),
		Remediation:    "Remediate the failing compliance settings and require compliant devices in Conditional Access.",
		Impact:         "Unhealthy devices can leak cached credentials and corporate data.",
		AffectedItems:  items,
	}, nil
}

func detectLegacyAuthentication(in *input) (*domain.SecurityIssue, error) {
	if in.results.Failed(DatasetConditionalAccess) || in.results.Failed(DatasetSecurityDefaults) {
		return nil, nil
	}
	defaults, err := decodeObject[graph.SecurityDefaultsPolicy](in, DatasetSecurityDefaults)
	if err != nil {
		return nil, err
	}
	if defaults != nil && defaults.IsEnabled {
		return nil, nil
	}

	policies, err := decodeList[graph.ConditionalAccessPolicy](in, DatasetConditionalAccess)
	if err != nil {
		return nil, err
	}
	for _, p := range policies {
		if p.State == "enabled" && blocksLegacyClients(p) {
			return nil, nil
		}
	}

	return &domain.SecurityIssue{
		Type:           "Legacy Authentication Allowed",
		Severity:       domain.SeverityMedium,
		AffectedObject: domain.AffectedObject{Type: "Conditional Access Policy", ID: DatasetConditionalAccess, Name: "Legacy authentication"},
		Description:    "No enforced Conditional Access policy blocks legacy authentication clients.",
		Remediation:    "Create a Conditional Access policy targeting Exchange ActiveSync and other clients with a block grant.",
		Impact:         "Legacy protocols cannot enforce MFA and are the main vector for password spray attacks.",
	}, nil
}

func blocksLegacyClients(p graph.ConditionalAccessPolicy) bool {
	if p.GrantControls == nil {
		return false
	}
	blocks := false
	for _, c := range p.GrantControls.BuiltInControls {
		if strings.EqualFold(c, "block") {
			blocks = true
		}
	}
	if !blocks {
		return false
	}
	for _, app := range p.Conditions.ClientAppTypes {
		if app == "exchangeActiveSync" || app == "other" {
			return true
		}
	}
	return false
}

func detectUserConsent(in *input) (*domain.SecurityIssue, error) {
	policy, err := decodeObject[graph.AuthorizationPolicy](in, DatasetAuthorizationPolicy)
	if err != nil || policy == nil {
		return nil, err
	}

	for _, grant := range policy.DefaultUserRolePermissions.PermissionGrantPoliciesAssigned {
		if grant != "ManagePermissionGrantsForSelf.microsoft-user-default-legacy" {
			continue
		}
		return &domain.SecurityIssue{
			Type:           "Users Can Consent to Apps",
			Severity:       domain.SeverityMedium,
			AffectedObject: domain.AffectedObject{Type: "Authorization Policy", ID: policy.ID, Name: "User consent settings"},
			Description:    "Users may grant any application access to their data without administrator review.",
			Remediation:    "Restrict user consent to verified publishers and low-risk permissions, and enable the admin consent workflow.",
			Impact:         "Illicit consent grants give attacker-controlled apps persistent access to mail and files.",
			Details:        grant,
		}, nil
	}
	return nil, nil
}

func detectGuestInvitations(in *input) (*domain.SecurityIssue, error) {
	policy, err := decodeObject[graph.AuthorizationPolicy](in, DatasetAuthorizationPolicy)
	if err != nil || policy == nil {
		return nil, err
	}
	if !strings.EqualFold(policy.AllowInvitesFrom, "everyone") {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "Unrestricted Guest Invitations",
		Severity:       domain.SeverityLow,
		AffectedObject: domain.AffectedObject{Type: "Authorization Policy", ID: policy.ID, Name: "Guest invite settings"},
		Description:    "Anyone in the organisation, including guests, can invite external users.",
		Remediation:    "Limit guest invitations to administrators and users in the Guest Inviter role.",
		Impact:         "Uncontrolled invitations grow the population of external identities with tenant access.",
		Details:        "allowInvitesFrom: " + policy.AllowInvitesFrom,
	}, nil
}

func detectExpiringCredentials(in *input) (*domain.SecurityIssue, error) {
	apps, err := decodeList[graph.Application](in, DatasetApplications)
	if err != nil {
		return nil, err
	}

	horizon := in.now.AddDate(0, 0, in.settings.CredentialExpiryDays)
	var items []domain.AffectedItem
	add := func(app graph.Application, kind, name string, end *time.Time) {
		if end == nil || end.After(horizon) {
			return
		}
		state := "expires"
		if end.Before(in.now) {
			state = "expired"
		}
		items = append(items, domain.AffectedItem{
			ID:     app.AppID,
			Name:   app.DisplayName,
			Detail: fmt.Sprintf("%s %q %s %s", kind, name, state, end.Format("2006-01-02")),
		})
	}
	for _, app := range apps {
		for _, c := range app.PasswordCredentials {
			add(app, "secret", c.DisplayName, c.EndDateTime)
		}
		for _, c := range app.KeyCredentials {
			add(app, "certificate", c.DisplayName, c.EndDateTime)
		}
	}
	if len(items) == 0 {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "Expiring Application Credentials",
		Severity:       domain.SeverityLow,
		AffectedObject: domain.AffectedObject{Type: "Application", ID: DatasetApplications, Name: countLabel(len(items), "credential")},
		Description: fmt.Sprintf("%s expire within %d days or have already expired.",
			countLabel(len(items), "application credential"), in.settings.CredentialExpiryDays),
		Remediation:   "Rotate the secrets and certificates and remove expired credentials from the app registrations.",
		Impact:        "Expired credentials break integrations; forgotten ones linger as an attack surface.",
		AffectedItems: items,
	}, nil
}

func detectPasswordsNeverExpire(in *input) (*domain.SecurityIssue, error) {
	users, err := decodeList[graph.User](in, DatasetUsers)
	if err != nil {
		return nil, err
	}

	var items []domain.AffectedItem
	for _, u := range users {
		if !strings.Contains(u.PasswordPolicies, "DisablePasswordExpiration") {
			continue
		}
		items = append(items, domain.AffectedItem{ID: u.ID, Name: firstNonEmpty(u.UserPrincipalName, u.DisplayName, u.ID)})
	}
	if len(items) == 0 {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "Passwords Never Expire",
		Severity:       domain.SeverityLow,
		AffectedObject: domain.AffectedObject{Type: "User", ID: DatasetUsers, Name: countLabel(len(items), "user")},
		Description:    fmt.Sprintf("%s have password expiration disabled.", countLabel(len(items), "user")),
		Remediation:    "Remove DisablePasswordExpiration from the accounts, or move them to passwordless sign-in.",
		Impact:         "Leaked passwords on these accounts stay valid indefinitely.",
		AffectedItems:  items,
	}, nil
}

func detectUnusedLicenses(in *input) (*domain.SecurityIssue, error) {
	skus, err := decodeList[graph.SubscribedSku](in, DatasetSubscribedSkus)
	if err != nil {
		return nil, err
	}

	unused := 0
	var items []domain.AffectedItem
	for _, sku := range skus {
		free := sku.PrepaidUnits.Enabled - sku.ConsumedUnits
		if free <= 0 {
			continue
		}
		unused += free
		items = append(items, domain.AffectedItem{
			ID:     sku.SkuID,
			Name:   sku.SkuPartNumber,
			Detail: fmt.Sprintf("%d of %d unassigned", free, sku.PrepaidUnits.Enabled),
		})
	}
	if len(items) == 0 {
		return nil, nil
	}

	return &domain.SecurityIssue{
		Type:           "Unused Licenses",
		Severity:       domain.SeverityLow,
		AffectedObject: domain.AffectedObject{Type: "Subscription", ID: DatasetSubscribedSkus, Name: countLabel(len(items), "subscription")},
		Description:    fmt.Sprintf("%d purchased licenses across %s are not assigned.", unused, countLabel(len(items), "subscription")),
		Remediation:    "Reduce the seat count at renewal or assign the licenses to users who need them.",
		Impact:         "Unassigned licenses are paid for without delivering any protection.",
		AffectedItems:  items,
	}, nil
}

// tenantDomains returns the lowercase set of verified tenant domains.
func tenantDomains(in *input) (map[string]bool, error) {
	orgs, err := decodeList[graph.Organization](in, DatasetOrganization)
	if err != nil {
		return nil, err
	}
	domains, err := decodeList[graph.Domain](in, DatasetDomains)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	for _, org := range orgs {
		for _, d := range org.VerifiedDomains {
			set[strings.ToLower(d.Name)] = true
		}
	}
	for _, d := range domains {
		if d.IsVerified {
			set[strings.ToLower(d.ID)] = true
		}
	}
	return set, nil
}

func decodeList[T any](in *input, name string) ([]T, error) {
	raw, ok := in.results.Data[name]
	if !ok || isEmpty(raw) {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return items, nil
}

// decodeObject returns nil when the dataset is missing or the empty default.
func decodeObject[T any](in *input, name string) (*T, error) {
	raw, ok := in.results.Data[name]
	if !ok || isEmpty(raw) || bytes.Equal(bytes.TrimSpace(raw), emptyObject) {
		return nil, nil
	}
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &item, nil
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
