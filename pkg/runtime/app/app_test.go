package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/services/auth"
	"github.com/de-tools/entra-atlas/pkg/services/scan"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func setupApp(t *testing.T, tenants string, opts Options) *App {
	t.Helper()
	dir := t.TempDir()
	tenantsPath := filepath.Join(dir, "tenants.ini")
	if tenants != "" {
		writeFile(t, dir, "tenants.ini", tenants)
	}
	opts.ConfigPath = writeFile(t, dir, "config.yaml", `
tenants_file: `+tenantsPath+`
store:
  driver: bolt
  path: `+filepath.Join(dir, "atlas.db")+`
scan:
  fix_delay: 0s
`)

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	a, err := New(ctx, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_WithoutProfile(t *testing.T) {
	a := setupApp(t, "", Options{})
	ctx := context.Background()

	assert.Nil(t, a.Profile)
	assert.Nil(t, a.Metrics)

	tenantID, err := a.TenantID(ctx)
	require.NoError(t, err)
	assert.Equal(t, scan.DemoTenantID, tenantID)

	_, err = a.Login(ctx)
	assert.Error(t, err)

	_, err = a.Controller.GenerateScan(ctx, scan.Request{TenantID: "contoso.onmicrosoft.com"})
	assert.ErrorIs(t, err, auth.ErrNotLoggedIn)
}

func TestNew_DemoScanRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := setupApp(t, "", Options{Registerer: reg})
	ctx := context.Background()

	data, err := a.Controller.GenerateScan(ctx, scan.Request{Demo: true})
	require.NoError(t, err)
	assert.False(t, data.UsesRealData)

	latest, err := a.Controller.GetScan(ctx, scan.DemoTenantID, scan.LatestScanID)
	require.NoError(t, err)
	assert.Equal(t, data.Summary.ID, latest.Summary.ID)

	require.NotNil(t, a.Metrics)
	count, err := testutil.GatherAndCount(reg, "entra_atlas_scans_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNew_Profile(t *testing.T) {
	tenants := `
[default]
tenant_id   = 11111111-1111-1111-1111-111111111111
auth_method = cli

[contoso]
tenant_id   = 22222222-2222-2222-2222-222222222222
auth_method = cli
`
	t.Run("configured profile", func(t *testing.T) {
		a := setupApp(t, tenants, Options{})
		require.NotNil(t, a.Profile)
		assert.Equal(t, domain.AuthMethodCLI, a.Profile.AuthMethod)

		tenantID, err := a.TenantID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "11111111-1111-1111-1111-111111111111", tenantID)
	})

	t.Run("profile override", func(t *testing.T) {
		a := setupApp(t, tenants, Options{Profile: "contoso"})
		require.NotNil(t, a.Profile)
		assert.Equal(t, "contoso", a.Profile.Name)
	})

	t.Run("stored session wins", func(t *testing.T) {
		a := setupApp(t, tenants, Options{})
		ctx := context.Background()
		require.NoError(t, a.Storage.Set(ctx, auth.KeyTenantID, []byte("33333333-3333-3333-3333-333333333333")))

		tenantID, err := a.TenantID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "33333333-3333-3333-3333-333333333333", tenantID)

		require.NoError(t, a.Logout(ctx))
		tenantID, err = a.TenantID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "11111111-1111-1111-1111-111111111111", tenantID)
	})
}

func TestNew_InvalidProfile(t *testing.T) {
	dir := t.TempDir()
	tenantsPath := writeFile(t, dir, "tenants.ini", "[default]\nauth_method = device_code\n")
	configPath := writeFile(t, dir, "config.yaml", "tenants_file: "+tenantsPath+"\nstore:\n  driver: memory\n")

	_, err := New(context.Background(), Options{ConfigPath: configPath})
	assert.ErrorContains(t, err, "client_id is required")
}
