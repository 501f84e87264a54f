package graph

import "time"

type SignInActivity struct {
	LastSignInDateTime *time.Time `json:"lastSignInDateTime"`
}

type User struct {
	ID                string          `json:"id"`
	DisplayName       string          `json:"displayName"`
	UserPrincipalName string          `json:"userPrincipalName"`
	Mail              string          `json:"mail"`
	UserType          string          `json:"userType"`
	AccountEnabled    bool            `json:"accountEnabled"`
	PasswordPolicies  string          `json:"passwordPolicies"`
	CreatedDateTime   *time.Time      `json:"createdDateTime"`
	SignInActivity    *SignInActivity `json:"signInActivity"`
}

type RiskyUser struct {
	ID                      string     `json:"id"`
	UserDisplayName         string     `json:"userDisplayName"`
	UserPrincipalName       string     `json:"userPrincipalName"`
	RiskLevel               string     `json:"riskLevel"`
	RiskState               string     `json:"riskState"`
	RiskDetail              string     `json:"riskDetail"`
	RiskLastUpdatedDateTime *time.Time `json:"riskLastUpdatedDateTime"`
}

type UserRegistrationDetail struct {
	ID                string   `json:"id"`
	UserDisplayName   string   `json:"userDisplayName"`
	UserPrincipalName string   `json:"userPrincipalName"`
	IsAdmin           bool     `json:"isAdmin"`
	IsMfaCapable      bool     `json:"isMfaCapable"`
	IsMfaRegistered   bool     `json:"isMfaRegistered"`
	MethodsRegistered []string `json:"methodsRegistered"`
}

type Group struct {
	ID              string   `json:"id"`
	DisplayName     string   `json:"displayName"`
	SecurityEnabled bool     `json:"securityEnabled"`
	GroupTypes      []string `json:"groupTypes"`
}

type DirectoryObject struct {
	ODataType         string `json:"@odata.type"`
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
}

type DirectoryRole struct {
	ID             string            `json:"id"`
	DisplayName    string            `json:"displayName"`
	RoleTemplateID string            `json:"roleTemplateId"`
	Members        []DirectoryObject `json:"members"`
}

type Organization struct {
	ID              string           `json:"id"`
	DisplayName     string           `json:"displayName"`
	VerifiedDomains []VerifiedDomain `json:"verifiedDomains"`
}

type VerifiedDomain struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
	IsInitial bool   `json:"isInitial"`
}

type Domain struct {
	ID         string `json:"id"`
	IsVerified bool   `json:"isVerified"`
	IsDefault  bool   `json:"isDefault"`
}

type PasswordCredential struct {
	KeyID         string     `json:"keyId"`
	DisplayName   string     `json:"displayName"`
	EndDateTime   *time.Time `json:"endDateTime"`
	StartDateTime *time.Time `json:"startDateTime"`
}

type KeyCredential struct {
	KeyID       string     `json:"keyId"`
	DisplayName string     `json:"displayName"`
	EndDateTime *time.Time `json:"endDateTime"`
}

type Application struct {
	ID                  string               `json:"id"`
	AppID               string               `json:"appId"`
	DisplayName         string               `json:"displayName"`
	PasswordCredentials []PasswordCredential `json:"passwordCredentials"`
	KeyCredentials      []KeyCredential      `json:"keyCredentials"`
}

type ServicePrincipal struct {
	ID                   string `json:"id"`
	AppID                string `json:"appId"`
	DisplayName          string `json:"displayName"`
	ServicePrincipalType string `json:"servicePrincipalType"`
}

type UnitsDetail struct {
	Enabled   int `json:"enabled"`
	Suspended int `json:"suspended"`
	Warning   int `json:"warning"`
}

type SubscribedSku struct {
	ID            string      `json:"id"`
	SkuID         string      `json:"skuId"`
	SkuPartNumber string      `json:"skuPartNumber"`
	ConsumedUnits int         `json:"consumedUnits"`
	PrepaidUnits  UnitsDetail `json:"prepaidUnits"`
}
