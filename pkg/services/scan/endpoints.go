package scan

import (
	"strings"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/services/graph"
)

// Endpoint is one Graph dataset pulled during a scan.
type Endpoint struct {
	Name    string
	Path    string
	Version graph.APIVersion
	// Collection endpoints answer with {"value": [...]} and default to [].
	Collection bool
}

const (
	DatasetUsers               = "users"
	DatasetGuests              = "guests"
	DatasetRiskyUsers          = "riskyUsers"
	DatasetMFAStatus           = "mfaStatus"
	DatasetGroups              = "groups"
	DatasetDirectoryRoles      = "directoryRoles"
	DatasetRoleAssignments     = "roleAssignments"
	DatasetOrganization        = "organization"
	DatasetDomains             = "domains"
	DatasetConditionalAccess   = "conditionalAccessPolicies"
	DatasetNamedLocations      = "namedLocations"
	DatasetSecurityDefaults    = "securityDefaults"
	DatasetAuthorizationPolicy = "authorizationPolicy"
	DatasetAuthMethodsPolicy   = "authenticationMethodsPolicy"
	DatasetSecureScores        = "secureScores"
	DatasetSecureScoreControls = "secureScoreControlProfiles"
	DatasetSecurityAlerts      = "securityAlerts"
	DatasetManagedDevices      = "managedDevices"
	DatasetDevices             = "devices"
	DatasetCompliancePolicies  = "deviceCompliancePolicies"
	DatasetApplications        = "applications"
	DatasetServicePrincipals   = "servicePrincipals"
	DatasetPermissionGrants    = "oauth2PermissionGrants"
	DatasetSubscribedSkus      = "subscribedSkus"
	DatasetInboxRules          = "inboxRules"
	DatasetSensitivityLabels   = "sensitivityLabels"
	DatasetSharePointSettings  = "sharepointSettings"
	DatasetSignIns             = "signIns"
)

var DefaultEndpoints = []Endpoint{
	{DatasetUsers, "users?$select=id,displayName,userPrincipalName,mail,userType,accountEnabled,passwordPolicies,createdDateTime,signInActivity&$top=999", graph.V1, true},
	{DatasetGuests, "users?$filter=userType%20eq%20'Guest'&$select=id,displayName,userPrincipalName,mail,userType&$top=999", graph.V1, true},
	{DatasetRiskyUsers, "identityProtection/riskyUsers", graph.V1, true},
	{DatasetMFAStatus, "reports/authenticationMethods/userRegistrationDetails", graph.V1, true},
	{DatasetGroups, "groups?$select=id,displayName,securityEnabled,groupTypes&$top=999", graph.V1, true},
	{DatasetDirectoryRoles, "directoryRoles?$expand=members", graph.V1, true},
	{DatasetRoleAssignments, "roleManagement/directory/roleAssignments", graph.V1, true},
	{DatasetOrganization, "organization", graph.V1, true},
	{DatasetDomains, "domains", graph.V1, true},
	{DatasetConditionalAccess, "identity/conditionalAccess/policies", graph.V1, true},
	{DatasetNamedLocations, "identity/conditionalAccess/namedLocations", graph.V1, true},
	{DatasetSecurityDefaults, "policies/identitySecurityDefaultsEnforcementPolicy", graph.V1, false},
	{DatasetAuthorizationPolicy, "policies/authorizationPolicy", graph.V1, false},
	{DatasetAuthMethodsPolicy, "policies/authenticationMethodsPolicy", graph.V1, false},
	{DatasetSecureScores, "security/secureScores?$top=1", graph.V1, true},
	{DatasetSecureScoreControls, "security/secureScoreControlProfiles", graph.V1, true},
	{DatasetSecurityAlerts, "security/alerts_v2?$top=50", graph.V1, true},
	{DatasetManagedDevices, "deviceManagement/managedDevices", graph.V1, true},
	{DatasetDevices, "devices?$top=999", graph.V1, true},
	{DatasetCompliancePolicies, "deviceManagement/deviceCompliancePolicies", graph.V1, true},
	{DatasetApplications, "applications?$select=id,appId,displayName,passwordCredentials,keyCredentials", graph.V1, true},
	{DatasetServicePrincipals, "servicePrincipals?$top=999", graph.V1, true},
	{DatasetPermissionGrants, "oauth2PermissionGrants", graph.V1, true},
	{DatasetSubscribedSkus, "subscribedSkus", graph.V1, true},
	{DatasetInboxRules, "me/mailFolders/inbox/messageRules", graph.V1, true},
	{DatasetSensitivityLabels, "security/informationProtection/sensitivityLabels", graph.Beta, true},
	{DatasetSharePointSettings, "admin/sharepoint/settings", graph.V1, false},
	{DatasetSignIns, "auditLogs/signIns?$top=50", graph.V1, true},
}

// endpointKeywords maps a failed endpoint path to the category whose data it
// feeds. Checked in order; anything unmatched is an identity endpoint.
var endpointKeywords = []struct {
	category domain.Category
	keywords []string
}{
	{domain.CategoryDataProtection, []string{"messagerules", "mailfolders", "informationprotection", "sharepoint"}},
	{domain.CategoryDevice, []string{"devicemanagement", "devices"}},
	{domain.CategorySecurityPosture, []string{"security/", "securescore", "securitydefaults"}},
	{domain.CategoryLicensing, []string{"subscribedskus", "licens"}},
}

// EndpointCategory classifies a Graph path into the category it reports on.
func EndpointCategory(path string) domain.Category {
	p := strings.ToLower(path)
	for _, entry := range endpointKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(p, keyword) {
				return entry.category
			}
		}
	}
	return domain.CategoryIdentity
}
