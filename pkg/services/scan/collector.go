package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/de-tools/entra-atlas/pkg/metrics"
	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/services/graph"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	emptyCollection = json.RawMessage(`[]`)
	emptyObject     = json.RawMessage(`{}`)
)

// Results is the bag of datasets one scan collected, keyed by dataset name.
// Every endpoint has an entry: failed ones hold an empty default and are
// listed in Errors.
type Results struct {
	Data     map[string]json.RawMessage
	Errors   []domain.APIError
	RealData bool
}

func (r *Results) Failed(name string) bool {
	for _, e := range r.Errors {
		if e.Endpoint == name {
			return true
		}
	}
	return false
}

type Source interface {
	Collect(ctx context.Context) (*Results, error)
}

type collector struct {
	client      graph.Client
	endpoints   []Endpoint
	concurrency int
	metrics     *metrics.Metrics
}

func NewCollector(client graph.Client, endpoints []Endpoint, concurrency int, m *metrics.Metrics) Source {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	return &collector{
		client:      client,
		endpoints:   endpoints,
		concurrency: concurrency,
		metrics:     m,
	}
}

// Collect fetches every endpoint concurrently. A failing endpoint never
// aborts the batch; only a cancelled context is reported as an error.
func (c *collector) Collect(ctx context.Context) (*Results, error) {
	logger := zerolog.Ctx(ctx)

	results := &Results{
		Data:     make(map[string]json.RawMessage, len(c.endpoints)),
		Errors:   []domain.APIError{},
		RealData: true,
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}

	for _, ep := range c.endpoints {
		g.Go(func() error {
			resp := c.client.Get(ctx, ep.Version, ep.Path)
			c.metrics.RecordGraphRequest(ep.Name, resp.Success)

			data, apiErr := unwrap(ep, resp)

			mu.Lock()
			defer mu.Unlock()
			results.Data[ep.Name] = data
			if apiErr != nil {
				logger.Warn().
					Str("endpoint", ep.Name).
					Int("status", apiErr.StatusCode).
					Str("error", apiErr.Message).
					Msg("graph endpoint unavailable")
				results.Errors = append(results.Errors, *apiErr)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results.Errors, func(i, j int) bool {
		return results.Errors[i].Endpoint < results.Errors[j].Endpoint
	})
	logger.Debug().
		Int("endpoints", len(c.endpoints)).
		Int("failed", len(results.Errors)).
		Msg("collection finished")

	return results, nil
}

// unwrap strips the {"value": [...]} envelope from collection payloads and
// substitutes the empty default when the call failed.
func unwrap(ep Endpoint, resp graph.Response) (json.RawMessage, *domain.APIError) {
	fallback := emptyObject
	if ep.Collection {
		fallback = emptyCollection
	}

	if !resp.Success {
		return fallback, &domain.APIError{
			Endpoint:   ep.Name,
			Path:       ep.Path,
			StatusCode: resp.StatusCode,
			Message:    resp.Error,
		}
	}

	if !ep.Collection {
		if isEmpty(resp.Data) {
			return fallback, nil
		}
		return resp.Data, nil
	}

	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(resp.Data, &envelope); err != nil {
		return fallback, &domain.APIError{
			Endpoint:   ep.Name,
			Path:       ep.Path,
			StatusCode: resp.StatusCode,
			Message:    "malformed response: " + err.Error(),
		}
	}
	if isEmpty(envelope.Value) {
		return fallback, nil
	}
	return envelope.Value, nil
}

func isEmpty(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
