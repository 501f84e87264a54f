package graph

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCredential struct {
	token string
	err   error
}

func (c staticCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	if c.err != nil {
		return azcore.AccessToken{}, c.err
	}
	return azcore.AccessToken{Token: c.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func newTestClient(t *testing.T, cred azcore.TokenCredential, handler http.HandlerFunc, timeout time.Duration) Client {
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(cred, Options{
		BaseURL:   server.URL,
		Timeout:   timeout,
		Transport: server.Client(),
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_NilCredential(t *testing.T) {
	c, err := NewClient(nil, Options{})
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestClient_Get(t *testing.T) {
	cred := staticCredential{token: "secret-token"}

	t.Run("success sends bearer token", func(t *testing.T) {
		c := newTestClient(t, cred, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
			assert.Equal(t, "/v1.0/users", r.URL.Path)
			assert.Equal(t, "5", r.URL.Query().Get("$top"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"value":[{"id":"1"}]}`))
		}, 0)

		resp := c.Get(context.Background(), V1, "/users?$top=5")
		assert.True(t, resp.Success)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"value":[{"id":"1"}]}`, string(resp.Data))
	})

	t.Run("beta path", func(t *testing.T) {
		c := newTestClient(t, cred, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/beta/reports/authenticationMethods/userRegistrationDetails", r.URL.Path)
			_, _ = w.Write([]byte(`{"value":[]}`))
		}, 0)

		resp := c.Get(context.Background(), Beta, "reports/authenticationMethods/userRegistrationDetails")
		assert.True(t, resp.Success)
	})

	t.Run("graph error envelope", func(t *testing.T) {
		c := newTestClient(t, cred, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":"Authorization_RequestDenied","message":"Insufficient privileges"}}`))
		}, 0)

		resp := c.Get(context.Background(), V1, "security/secureScores")
		assert.False(t, resp.Success)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Authorization_RequestDenied: Insufficient privileges", resp.Error)
	})

	t.Run("server error without body", func(t *testing.T) {
		c := newTestClient(t, cred, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, 0)

		resp := c.Get(context.Background(), V1, "users")
		assert.False(t, resp.Success)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("timeout", func(t *testing.T) {
		c := newTestClient(t, cred, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}, 50*time.Millisecond)

		resp := c.Get(context.Background(), V1, "users")
		assert.False(t, resp.Success)
		assert.Zero(t, resp.StatusCode)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("token failure", func(t *testing.T) {
		c := newTestClient(t, staticCredential{err: errors.New("login required")}, func(w http.ResponseWriter, r *http.Request) {
			t.Error("request must not reach the server")
		}, 0)

		resp := c.Get(context.Background(), V1, "users")
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "login required")
	})
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Forbidden", errorMessage([]byte(`{"error":{"message":"Forbidden"}}`)))
	assert.Equal(t, "BadRequest", errorMessage([]byte(`{"error":{"code":"BadRequest"}}`)))
	assert.Equal(t, "plain text", errorMessage([]byte("plain text\n")))
}
