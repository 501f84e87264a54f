package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/entra-atlas/pkg/store/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "default", settings.Profile)
	assert.Equal(t, kv.DriverBolt, settings.Store.Driver)
	assert.Equal(t, "https://graph.microsoft.com", settings.Graph.BaseURL)
	assert.Equal(t, 30*time.Second, settings.Graph.Timeout)
	assert.Zero(t, settings.Graph.MaxRetries)
	assert.Equal(t, 5*time.Minute, settings.Auth.RefreshSkew)
	assert.Equal(t, 90, settings.Scan.InactiveDays)
	assert.Equal(t, 1500*time.Millisecond, settings.Scan.FixDelay)
	assert.Equal(t, 10, settings.Scan.HistoryLimit)
	assert.Zero(t, settings.Schedule.Interval)
	assert.Equal(t, 5*time.Minute, settings.Schedule.RetryInterval)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profile: contoso
store:
  driver: duckdb
  path: /tmp/atlas.duckdb
graph:
  timeout: 10s
  max_retries: 3
scan:
  inactive_days: 30
  fix_delay: 0s
  keep_raw_data: true
schedule:
  interval: 6h
`), 0o600))

	t.Setenv("ENTRA_ATLAS_SCAN_MAX_GLOBAL_ADMINS", "2")
	t.Setenv("ENTRA_ATLAS_PROFILE", "fabrikam")

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fabrikam", settings.Profile)
	assert.Equal(t, kv.DriverDuckDB, settings.Store.Driver)
	assert.Equal(t, "/tmp/atlas.duckdb", settings.Store.Path)
	assert.Equal(t, 10*time.Second, settings.Graph.Timeout)
	assert.Equal(t, int32(3), settings.Graph.MaxRetries)
	assert.Equal(t, 30, settings.Scan.InactiveDays)
	assert.Equal(t, 2, settings.Scan.MaxGlobalAdmins)
	assert.Zero(t, settings.Scan.FixDelay)
	assert.True(t, settings.Scan.KeepRawData)
	assert.Equal(t, 6*time.Hour, settings.Schedule.Interval)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("graph: [unterminated"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
