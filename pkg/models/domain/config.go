package domain

import "fmt"

type AuthMethod string

const (
	AuthMethodInteractive  AuthMethod = "interactive"
	AuthMethodDeviceCode   AuthMethod = "device_code"
	AuthMethodClientSecret AuthMethod = "client_secret"
	AuthMethodCLI          AuthMethod = "cli"
)

type TenantProfile struct {
	Name         string
	TenantID     string
	ClientID     string
	ClientSecret string
	AuthMethod   AuthMethod
	RedirectURL  string
	Domain       string
}

func (p TenantProfile) String() string {
	return fmt.Sprintf("%s:%s", p.AuthMethod, p.Name)
}
