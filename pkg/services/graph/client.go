// Package graph is a thin Microsoft Graph client built on the azcore pipeline.
// Every call resolves to a Response; failures are reported in the Response
// rather than as Go errors so a batch of calls can degrade per endpoint.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://graph.microsoft.com"
	DefaultScope   = "https://graph.microsoft.com/.default"
	DefaultTimeout = 30 * time.Second

	moduleName    = "entra-atlas/graph"
	moduleVersion = "v1.0.0"
)

type APIVersion string

const (
	V1   APIVersion = "v1.0"
	Beta APIVersion = "beta"
)

type Response struct {
	Success    bool
	Data       json.RawMessage
	Error      string
	StatusCode int
}

type Client interface {
	Get(ctx context.Context, version APIVersion, path string) Response
}

type Options struct {
	BaseURL string
	Scopes  []string
	// Timeout bounds a single call. Zero disables the per-call bound.
	Timeout time.Duration
	// MaxRetries is the azcore retry budget. Zero disables retries.
	MaxRetries int32
	Transport  policy.Transporter
}

type client struct {
	pipeline runtime.Pipeline
	baseURL  string
	timeout  time.Duration
}

func NewClient(cred azcore.TokenCredential, opts Options) (Client, error) {
	if cred == nil {
		return nil, fmt.Errorf("credential is nil")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = []string{DefaultScope}
	}

	retries := opts.MaxRetries
	if retries == 0 {
		retries = -1
	}

	clientOpts := &policy.ClientOptions{
		Retry:     policy.RetryOptions{MaxRetries: retries},
		Transport: opts.Transport,
	}
	pl := runtime.NewPipeline(moduleName, moduleVersion, runtime.PipelineOptions{
		PerRetry: []policy.Policy{runtime.NewBearerTokenPolicy(cred, opts.Scopes, nil)},
	}, clientOpts)

	return &client{
		pipeline: pl,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		timeout:  opts.Timeout,
	}, nil
}

func (c *client) Get(ctx context.Context, version APIVersion, path string) Response {
	logger := zerolog.Ctx(ctx)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, version, strings.TrimLeft(path, "/"))
	req, err := runtime.NewRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return Response{Error: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Raw().Header.Set("Accept", "application/json")

	resp, err := c.pipeline.Do(req)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("graph request failed")
		return Response{Error: err.Error()}
	}

	body, err := runtime.Payload(resp)
	if err != nil {
		return Response{StatusCode: resp.StatusCode, Error: fmt.Sprintf("failed to read response: %v", err)}
	}

	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusCreated, http.StatusNoContent) {
		msg := errorMessage(body)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		logger.Debug().
			Int("status", resp.StatusCode).
			Str("path", path).
			Str("error", msg).
			Msg("graph request rejected")
		return Response{StatusCode: resp.StatusCode, Error: msg}
	}

	return Response{Success: true, Data: body, StatusCode: resp.StatusCode}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// errorMessage extracts "code: message" from a Graph error body.
func errorMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return strings.TrimSpace(string(body))
	}
	switch {
	case env.Error.Code != "" && env.Error.Message != "":
		return env.Error.Code + ": " + env.Error.Message
	case env.Error.Message != "":
		return env.Error.Message
	default:
		return env.Error.Code
	}
}
