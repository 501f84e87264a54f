// Package app wires configuration, storage, authentication and the scan
// pipeline into the services shared by the CLI and the web server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/de-tools/entra-atlas/pkg/metrics"
	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/services/auth"
	"github.com/de-tools/entra-atlas/pkg/services/config"
	"github.com/de-tools/entra-atlas/pkg/services/graph"
	"github.com/de-tools/entra-atlas/pkg/services/scan"
	"github.com/de-tools/entra-atlas/pkg/store/kv"
	"github.com/de-tools/entra-atlas/pkg/store/snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type Options struct {
	ConfigPath string
	// Profile overrides the profile named in the config file.
	Profile string
	// Prompt receives device code sign-in instructions.
	Prompt io.Writer
	// Registerer collects scan metrics; metrics are disabled when nil.
	Registerer prometheus.Registerer
}

type App struct {
	Settings *config.Settings
	// Profile is nil when the tenants file has no entry for the active profile.
	Profile    *domain.TenantProfile
	Tenants    config.Registry
	Storage    kv.Storage
	Session    *auth.Session
	Controller scan.Controller
	Metrics    *metrics.Metrics
}

func New(ctx context.Context, opts Options) (*App, error) {
	logger := zerolog.Ctx(ctx)

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Profile != "" {
		settings.Profile = opts.Profile
	}

	tenants, err := config.NewRegistry(settings.TenantsFile)
	if err != nil {
		return nil, err
	}
	profile, err := loadProfile(ctx, tenants, settings.Profile)
	if err != nil {
		return nil, err
	}

	var credential azcore.TokenCredential
	if profile != nil {
		credential, err = auth.NewCredential(*profile, auth.CredentialOptions{Prompt: opts.Prompt})
		if err != nil {
			return nil, err
		}
	} else {
		logger.Debug().Str("profile", settings.Profile).Msg("no tenant profile configured, live scans use the stored session only")
	}

	storage, err := kv.Open(settings.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	app, err := wire(storage, settings, profile, credential, opts.Registerer)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}
	app.Tenants = tenants
	return app, nil
}

func wire(
	storage kv.Storage,
	settings *config.Settings,
	profile *domain.TenantProfile,
	credential azcore.TokenCredential,
	reg prometheus.Registerer,
) (*App, error) {
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	sessionOpts := auth.SessionOptions{
		Credential:  credential,
		RefreshSkew: settings.Auth.RefreshSkew,
	}
	if profile != nil {
		sessionOpts.TenantID = profile.TenantID
	}
	session := auth.NewSession(storage, sessionOpts)

	client, err := graph.NewClient(session, graph.Options{
		BaseURL:    settings.Graph.BaseURL,
		Timeout:    settings.Graph.Timeout,
		MaxRetries: settings.Graph.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create graph client: %w", err)
	}

	snapshots, err := snapshot.NewStore(storage, settings.Scan.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}

	live := &signedInSource{
		session: session,
		source:  scan.NewCollector(client, scan.DefaultEndpoints, settings.Scan.Concurrency, m),
	}
	controller, err := scan.NewController(scan.Dependencies{
		Live:      live,
		Demo:      scan.NewDemoSource(),
		Snapshots: snapshots,
		Metrics:   m,
	}, settings.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan controller: %w", err)
	}

	return &App{
		Settings:   settings,
		Profile:    profile,
		Storage:    storage,
		Session:    session,
		Controller: controller,
		Metrics:    m,
	}, nil
}

func loadProfile(ctx context.Context, tenants config.Registry, name string) (*domain.TenantProfile, error) {
	profile, err := tenants.GetProfile(ctx, name)
	if errors.Is(err, config.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// TenantID picks the tenant scans are read and written under: the signed-in
// tenant, then the profile's configured tenant, then the demo tenant.
func (a *App) TenantID(ctx context.Context) (string, error) {
	tenantID, err := a.Session.TenantID(ctx)
	if err == nil && tenantID != "" {
		return tenantID, nil
	}
	if err != nil && !errors.Is(err, auth.ErrNotLoggedIn) {
		return "", err
	}
	if a.Profile != nil && a.Profile.TenantID != "" {
		return a.Profile.TenantID, nil
	}
	return scan.DemoTenantID, nil
}

// Login acquires and stores a fresh token for the active profile.
func (a *App) Login(ctx context.Context) (*auth.Claims, error) {
	if a.Profile == nil {
		return nil, fmt.Errorf("%w: %s", config.ErrProfileNotFound, a.Settings.Profile)
	}
	token, err := a.Session.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	claims, err := auth.ParseClaims(token.Token)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("token claims unreadable")
		tenantID, _ := a.TenantID(ctx)
		return &auth.Claims{TenantID: tenantID, ExpiresAt: token.ExpiresOn}, nil
	}
	return claims, nil
}

func (a *App) Logout(ctx context.Context) error {
	return auth.Logout(ctx, a.Storage)
}

func (a *App) Close() error {
	return a.Storage.Close()
}

// signedInSource refuses to collect without a usable session so that a
// missing login is reported once instead of as a failure per endpoint.
type signedInSource struct {
	session *auth.Session
	source  scan.Source
}

func (s *signedInSource) Collect(ctx context.Context) (*scan.Results, error) {
	if _, err := s.session.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{auth.GraphScope}}); err != nil {
		return nil, fmt.Errorf("sign in before running a live scan: %w", err)
	}
	return s.source.Collect(ctx)
}
