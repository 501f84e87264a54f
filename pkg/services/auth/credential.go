// Package auth acquires Microsoft Graph tokens for a tenant profile and keeps
// the resulting session in local storage.
package auth

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/de-tools/entra-atlas/pkg/models/domain"
)

// multiTenant lets a public client sign in users from any organization.
const multiTenant = "organizations"

type CredentialOptions struct {
	// Prompt receives device code instructions.
	Prompt io.Writer
}

// NewCredential builds the token credential for the profile's auth method.
// The interactive method runs the authorization code flow with PKCE against
// a loopback redirect.
func NewCredential(profile domain.TenantProfile, opts CredentialOptions) (azcore.TokenCredential, error) {
	tenantID := profile.TenantID

	switch profile.AuthMethod {
	case domain.AuthMethodInteractive, "":
		if tenantID == "" {
			tenantID = multiTenant
		}
		cred, err := azidentity.NewInteractiveBrowserCredential(&azidentity.InteractiveBrowserCredentialOptions{
			ClientID:    profile.ClientID,
			TenantID:    tenantID,
			RedirectURL: profile.RedirectURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create interactive browser credential: %w", err)
		}
		return cred, nil

	case domain.AuthMethodDeviceCode:
		if tenantID == "" {
			tenantID = multiTenant
		}
		prompt := opts.Prompt
		cred, err := azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
			ClientID: profile.ClientID,
			TenantID: tenantID,
			UserPrompt: func(_ context.Context, msg azidentity.DeviceCodeMessage) error {
				if prompt == nil {
					return nil
				}
				_, err := fmt.Fprintln(prompt, msg.Message)
				return err
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create device code credential: %w", err)
		}
		return cred, nil

	case domain.AuthMethodClientSecret:
		cred, err := azidentity.NewClientSecretCredential(tenantID, profile.ClientID, profile.ClientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create client secret credential: %w", err)
		}
		return cred, nil

	case domain.AuthMethodCLI:
		cred, err := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{TenantID: tenantID})
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure CLI credential: %w", err)
		}
		return cred, nil

	default:
		return nil, fmt.Errorf("unsupported auth method: %s", profile.AuthMethod)
	}
}
