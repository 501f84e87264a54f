package graph

import "time"

type SecureScore struct {
	ID                string     `json:"id"`
	CurrentScore      float64    `json:"currentScore"`
	MaxScore          float64    `json:"maxScore"`
	CreatedDateTime   *time.Time `json:"createdDateTime"`
	LicensedUserCount int        `json:"licensedUserCount"`
	ActiveUserCount   int        `json:"activeUserCount"`
}

type Alert struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Severity           string     `json:"severity"` // informational, low, medium, high
	Status             string     `json:"status"`   // new, inProgress, resolved
	Category           string     `json:"category"`
	ServiceSource      string     `json:"serviceSource"`
	RecommendedActions string     `json:"recommendedActions"`
	CreatedDateTime    *time.Time `json:"createdDateTime"`
}

type ManagedDevice struct {
	ID                string     `json:"id"`
	DeviceName        string     `json:"deviceName"`
	OperatingSystem   string     `json:"operatingSystem"`
	ComplianceState   string     `json:"complianceState"` // compliant, noncompliant, unknown
	UserPrincipalName string     `json:"userPrincipalName"`
	LastSyncDateTime  *time.Time `json:"lastSyncDateTime"`
	IsEncrypted       bool       `json:"isEncrypted"`
}

type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

type EmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type MessageRuleActions struct {
	ForwardTo             []Recipient `json:"forwardTo"`
	ForwardAsAttachmentTo []Recipient `json:"forwardAsAttachmentTo"`
	RedirectTo            []Recipient `json:"redirectTo"`
}

type MessageRule struct {
	ID          string             `json:"id"`
	DisplayName string             `json:"displayName"`
	IsEnabled   bool               `json:"isEnabled"`
	Actions     MessageRuleActions `json:"actions"`
}

// Recipients returns every forwarding or redirect target of the rule.
func (r MessageRule) Recipients() []Recipient {
	all := make([]Recipient, 0, len(r.Actions.ForwardTo)+len(r.Actions.ForwardAsAttachmentTo)+len(r.Actions.RedirectTo))
	all = append(all, r.Actions.ForwardTo...)
	all = append(all, r.Actions.ForwardAsAttachmentTo...)
	all = append(all, r.Actions.RedirectTo...)
	return all
}
