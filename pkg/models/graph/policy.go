package graph

type ConditionalAccessApplications struct {
	IncludeApplications []string `json:"includeApplications"`
}

type ConditionalAccessUsers struct {
	IncludeUsers []string `json:"includeUsers"`
	ExcludeUsers []string `json:"excludeUsers"`
}

type ConditionalAccessConditions struct {
	ClientAppTypes []string                      `json:"clientAppTypes"`
	Applications   ConditionalAccessApplications `json:"applications"`
	Users          ConditionalAccessUsers        `json:"users"`
}

type ConditionalAccessGrantControls struct {
	Operator        string   `json:"operator"`
	BuiltInControls []string `json:"builtInControls"`
}

type ConditionalAccessPolicy struct {
	ID            string                          `json:"id"`
	DisplayName   string                          `json:"displayName"`
	State         string                          `json:"state"` // enabled, disabled, enabledForReportingButNotEnforced
	Conditions    ConditionalAccessConditions     `json:"conditions"`
	GrantControls *ConditionalAccessGrantControls `json:"grantControls"`
}

type SecurityDefaultsPolicy struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsEnabled   bool   `json:"isEnabled"`
}

type DefaultUserRolePermissions struct {
	AllowedToCreateApps             bool     `json:"allowedToCreateApps"`
	AllowedToCreateSecurityGroups   bool     `json:"allowedToCreateSecurityGroups"`
	PermissionGrantPoliciesAssigned []string `json:"permissionGrantPoliciesAssigned"`
	AllowedToReadOtherUsers         bool     `json:"allowedToReadOtherUsers"`
	AllowedToCreateTenants          bool     `json:"allowedToCreateTenants"`
}

type AuthorizationPolicy struct {
	ID                         string                     `json:"id"`
	AllowInvitesFrom           string                     `json:"allowInvitesFrom"`
	GuestUserRoleID            string                     `json:"guestUserRoleId"`
	DefaultUserRolePermissions DefaultUserRolePermissions `json:"defaultUserRolePermissions"`
}
