package scan

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
)

//go:embed demo_data.json
var demoData []byte

const DemoTenantID = "demo"

type demoSource struct {
	endpoints []Endpoint
}

// NewDemoSource serves a canned tenant so the dashboard can be explored
// without signing in.
func NewDemoSource() Source {
	return &demoSource{endpoints: DefaultEndpoints}
}

func (d *demoSource) Collect(ctx context.Context) (*Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(demoData, &data); err != nil {
		return nil, fmt.Errorf("failed to decode demo data: %w", err)
	}

	for _, ep := range d.endpoints {
		if _, ok := data[ep.Name]; ok {
			continue
		}
		if ep.Collection {
			data[ep.Name] = emptyCollection
		} else {
			data[ep.Name] = emptyObject
		}
	}

	return &Results{Data: data, Errors: []domain.APIError{}}, nil
}
