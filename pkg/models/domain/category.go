package domain

import "strings"

type Category string

const (
	CategorySecurityPosture Category = "Security Posture"
	CategoryIdentity        Category = "Identity"
	CategoryDevice          Category = "Device"
	CategoryDataProtection  Category = "Data Protection"
	CategoryLicensing       Category = "Licensing"
)

// Categories is ordered: classification picks the first category that matches.
var Categories = []Category{
	CategorySecurityPosture,
	CategoryIdentity,
	CategoryDevice,
	CategoryDataProtection,
	CategoryLicensing,
}

var categoryKeywords = map[Category][]string{
	CategorySecurityPosture: {"secure score", "security defaults", "security alert", "alert", "posture"},
	CategoryIdentity: {
		"user", "mfa", "account", "admin", "role", "guest", "password", "consent",
		"application", "credential", "authentication", "identity", "sign-in", "conditional access",
	},
	CategoryDevice:         {"device", "compliance", "endpoint"},
	CategoryDataProtection: {"email", "mail", "forwarding", "sharing", "label", "data"},
	CategoryLicensing:      {"license", "sku", "subscription"},
}

// CategoryOf classifies an issue by its affected object type or issue type.
// Issues matching no keyword set are reported with ok == false.
func CategoryOf(issue SecurityIssue) (Category, bool) {
	objectType := strings.ToLower(issue.AffectedObject.Type)
	issueType := strings.ToLower(issue.Type)

	for _, category := range Categories {
		for _, keyword := range categoryKeywords[category] {
			if strings.Contains(objectType, keyword) || strings.Contains(issueType, keyword) {
				return category, true
			}
		}
	}
	return "", false
}
