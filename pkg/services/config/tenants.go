package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

var ErrProfileNotFound = errors.New("tenant profile not found")

// Registry reads tenant profiles from an ini file, one section per profile:
//
//	[contoso]
//	tenant_id   = 00000000-0000-0000-0000-000000000000
//	client_id   = 11111111-1111-1111-1111-111111111111
//	auth_method = device_code
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*domain.TenantProfile, error)
}

type iniRegistry struct {
	cfg *ini.File
}

// NewRegistry loads the tenants file. A missing file yields an empty registry.
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants file: %w", err)
	}
	return &iniRegistry{cfg: cfg}, nil
}

func (r *iniRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range r.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (r *iniRegistry) GetProfile(_ context.Context, name string) (*domain.TenantProfile, error) {
	section, err := r.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}

	method := section.Key("auth_method").In(string(domain.AuthMethodInteractive), []string{
		string(domain.AuthMethodInteractive),
		string(domain.AuthMethodDeviceCode),
		string(domain.AuthMethodClientSecret),
		string(domain.AuthMethodCLI),
	})

	profile := &domain.TenantProfile{
		Name:         name,
		TenantID:     section.Key("tenant_id").String(),
		ClientID:     section.Key("client_id").String(),
		ClientSecret: section.Key("client_secret").String(),
		AuthMethod:   domain.AuthMethod(method),
		RedirectURL:  section.Key("redirect_url").String(),
		Domain:       section.Key("domain").String(),
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func validateProfile(p *domain.TenantProfile) error {
	switch p.AuthMethod {
	case domain.AuthMethodCLI:
		return nil
	case domain.AuthMethodClientSecret:
		if p.TenantID == "" || p.ClientSecret == "" {
			return fmt.Errorf("profile %s: client_secret auth requires tenant_id and client_secret", p.Name)
		}
	}
	if p.ClientID == "" {
		return fmt.Errorf("profile %s: client_id is required for %s auth", p.Name, p.AuthMethod)
	}
	return nil
}
