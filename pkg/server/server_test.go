package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/de-tools/entra-atlas/pkg/metrics"
	"github.com/de-tools/entra-atlas/pkg/models/api"
	"github.com/de-tools/entra-atlas/pkg/services/scan"
	"github.com/de-tools/entra-atlas/pkg/store/kv"
	"github.com/de-tools/entra-atlas/pkg/store/snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))

	snapshots, err := snapshot.NewStore(kv.NewMemoryStorage(), snapshot.DefaultHistoryLimit)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	controller, err := scan.NewController(scan.Dependencies{
		Demo:      scan.NewDemoSource(),
		Snapshots: snapshots,
		Metrics:   metrics.New(registry),
	}, scan.Settings{})
	require.NoError(t, err)

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Controller: controller,
			Tenant:     func(context.Context) (string, error) { return scan.DemoTenantID, nil },
			Logger:     logger,
			Gatherer:   registry,
		},
	}
	testServer := httptest.NewServer(ConfigureRouter(config))
	t.Cleanup(testServer.Close)
	return testServer
}

func do(t *testing.T, method, url string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func unmarshalResponse[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestWebAPI_ScanLifecycle(t *testing.T) {
	srv := setupServer(t)
	base := srv.URL + "/api/v1/scans"

	status, body := do(t, http.MethodPost, base+"?demo=true")
	require.Equal(t, http.StatusCreated, status)
	created := unmarshalResponse[api.Scan](t, body)
	assert.Equal(t, scan.DemoTenantID, created.Summary.TenantID)
	assert.False(t, created.UsesRealData)
	assert.NotEmpty(t, created.Issues)
	assert.Equal(t, created.Summary.OverallRiskScore, created.CurrentScore)

	status, body = do(t, http.MethodGet, base)
	require.Equal(t, http.StatusOK, status)
	history := unmarshalResponse[[]api.ScanSummary](t, body)
	require.Len(t, history, 1)
	assert.Equal(t, created.Summary.ID, history[0].ID)

	status, body = do(t, http.MethodGet, base+"/latest")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.Summary.ID, unmarshalResponse[api.Scan](t, body).Summary.ID)

	status, body = do(t, http.MethodPost, base+"/"+created.Summary.ID+"/issues/mfa-not-configured/fix")
	require.Equal(t, http.StatusOK, status)
	fixed := unmarshalResponse[api.Scan](t, body)
	assert.Equal(t, 1, fixed.IssuesFixed)
	assert.GreaterOrEqual(t, fixed.CurrentScore, created.CurrentScore)
	assert.Equal(t, created.Summary.OverallRiskScore, fixed.Summary.OverallRiskScore)
	for _, issue := range fixed.Issues {
		if issue.ID == "mfa-not-configured" {
			assert.Equal(t, "Fixed", issue.Status)
		}
	}

	status, body = do(t, http.MethodGet, base+"/"+created.Summary.ID+"/export?format=csv")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "MFA Not Configured")

	status, body = do(t, http.MethodDelete, base)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, unmarshalResponse[api.ClearResult](t, body).Removed)

	status, _ = do(t, http.MethodGet, base+"/latest")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWebAPI_Endpoints(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "empty history", method: http.MethodGet, path: "/api/v1/scans", expectedStatus: http.StatusOK},
		{name: "unknown scan", method: http.MethodGet, path: "/api/v1/scans/missing", expectedStatus: http.StatusNotFound},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/tenants", expectedStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPut, path: "/api/v1/scans", expectedStatus: http.StatusMethodNotAllowed},
		{name: "bad export format", method: http.MethodGet, path: "/api/v1/scans/latest/export?format=xml", expectedStatus: http.StatusBadRequest},
		{name: "metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := do(t, tt.method, srv.URL+tt.path)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}

func TestWebAPI_MetricsAfterScan(t *testing.T) {
	srv := setupServer(t)

	status, _ := do(t, http.MethodPost, srv.URL+"/api/v1/scans?demo=true")
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, http.MethodGet, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `entra_atlas_scans_total{source="demo"} 1`)
}
