package scan

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/de-tools/entra-atlas/pkg/adapters"
	"github.com/de-tools/entra-atlas/pkg/metrics"
	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/models/store"
	"github.com/de-tools/entra-atlas/pkg/store/snapshot"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LatestScanID resolves to the most recent scan of the tenant.
const LatestScanID = "latest"

var (
	ErrScanNotFound  = snapshot.ErrNotFound
	ErrIssueNotFound = errors.New("issue not found")
)

type Request struct {
	TenantID   string
	TenantName string
	Demo       bool
}

type Controller interface {
	GenerateScan(ctx context.Context, req Request) (*domain.ScanData, error)
	// GetScan accepts a scan id or LatestScanID.
	GetScan(ctx context.Context, tenantID, scanID string) (*domain.ScanData, error)
	// History lists the tenant's retained scans, newest first.
	History(ctx context.Context, tenantID string) ([]domain.ScanSummary, error)
	FixIssue(ctx context.Context, tenantID, scanID, issueID string) (*domain.ScanData, error)
	ClearHistory(ctx context.Context) (int, error)
}

type Dependencies struct {
	Live       Source
	Demo       Source
	Normalizer Normalizer
	Snapshots  snapshot.Store
	Metrics    *metrics.Metrics
}

type controller struct {
	live       Source
	demo       Source
	normalizer Normalizer
	snapshots  snapshot.Store
	metrics    *metrics.Metrics
	settings   Settings

	// mu serialises read-modify-write cycles on the history and snapshot keys.
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
	sleep func(ctx context.Context, d time.Duration) error
}

func NewController(deps Dependencies, settings Settings) (Controller, error) {
	if deps.Snapshots == nil {
		return nil, fmt.Errorf("snapshot store is required")
	}
	if deps.Live == nil && deps.Demo == nil {
		return nil, fmt.Errorf("at least one scan source must be provided")
	}
	settings = settings.WithDefaults()
	if deps.Normalizer == nil {
		deps.Normalizer = NewNormalizer(settings)
	}

	return &controller{
		live:       deps.Live,
		demo:       deps.Demo,
		normalizer: deps.Normalizer,
		snapshots:  deps.Snapshots,
		metrics:    deps.Metrics,
		settings:   settings,
		now:        time.Now,
		newID:      uuid.NewString,
		sleep:      sleepContext,
	}, nil
}

func (c *controller) GenerateScan(ctx context.Context, req Request) (*domain.ScanData, error) {
	source, label := c.live, "live"
	if req.Demo || c.live == nil {
		source, label = c.demo, "demo"
	}
	if source == nil {
		return nil, fmt.Errorf("%s scan source is not configured", label)
	}

	tenantID := req.TenantID
	if tenantID == "" && label == "demo" {
		tenantID = DemoTenantID
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}

	logger := zerolog.Ctx(ctx).With().Str("tenant", tenantID).Str("source", label).Logger()
	started := c.now()

	results, err := source.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect tenant data: %w", err)
	}
	findings := c.normalizer.Normalize(ctx, results)

	data := domain.ScanData{
		Summary: BuildSummary(SummaryInput{
			ID:         c.newID(),
			Timestamp:  started.UTC(),
			TenantID:   tenantID,
			TenantName: req.TenantName,
			Results:    results,
			Findings:   findings,
		}),
		Issues:         findings.Issues,
		AccessWarnings: findings.AccessWarnings,
		APIErrors:      results.Errors,
		UsesRealData:   results.RealData,
	}
	if c.settings.KeepRawData {
		data.RawData = results.Data
	}

	c.mu.Lock()
	err = c.snapshots.Save(ctx, adapters.MapScanDataDomainToStore(data))
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to persist scan: %w", err)
	}

	c.metrics.RecordScan(label, c.now().Sub(started))
	for severity, count := range data.Summary.IssueCountsBySeverity {
		c.metrics.RecordIssues(severity.String(), count)
	}

	logger.Info().
		Str("scan_id", data.Summary.ID).
		Int("score", data.Summary.OverallRiskScore).
		Int("issues", len(data.Issues)).
		Int("failed_endpoints", len(data.APIErrors)).
		Msg("scan completed")

	return &data, nil
}

func (c *controller) GetScan(ctx context.Context, tenantID, scanID string) (*domain.ScanData, error) {
	var (
		record *store.ScanData
		err    error
	)
	if scanID == "" || scanID == LatestScanID {
		record, err = c.snapshots.Latest(ctx, tenantID)
	} else {
		record, err = c.snapshots.Get(ctx, scanID)
	}
	if err != nil {
		return nil, err
	}
	return toDomain(record), nil
}

func (c *controller) History(ctx context.Context, tenantID string) ([]domain.ScanSummary, error) {
	records, err := c.snapshots.History(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ScanSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, adapters.MapSummaryStoreToDomain(r))
	}
	slices.Reverse(summaries)
	return summaries, nil
}

// FixIssue simulates remediation: it waits for the configured delay, then
// marks the issue fixed and re-persists the scan. Nothing is changed in the
// tenant. Fixing an already fixed issue returns immediately.
func (c *controller) FixIssue(ctx context.Context, tenantID, scanID, issueID string) (*domain.ScanData, error) {
	data, err := c.GetScan(ctx, tenantID, scanID)
	if err != nil {
		return nil, err
	}
	issue, ok := data.FindIssue(issueID)
	if !ok {
		return nil, fmt.Errorf("%w: %s in scan %s", ErrIssueNotFound, issueID, data.Summary.ID)
	}
	if !issue.IsOpen() {
		return data, nil
	}

	if err := c.sleep(ctx, c.settings.FixDelay); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Reload so concurrent fixes on the same scan are not lost.
	record, err := c.snapshots.Get(ctx, data.Summary.ID)
	if err != nil {
		return nil, err
	}
	data = toDomain(record)
	issue, ok = data.FindIssue(issueID)
	if !ok {
		return nil, fmt.Errorf("%w: %s in scan %s", ErrIssueNotFound, issueID, data.Summary.ID)
	}
	if !issue.MarkFixed() {
		return data, nil
	}
	data.IssuesFixed++

	if err := c.snapshots.Update(ctx, adapters.MapScanDataDomainToStore(*data)); err != nil {
		return nil, fmt.Errorf("failed to persist fix: %w", err)
	}
	c.metrics.RecordFix()

	zerolog.Ctx(ctx).Info().
		Str("scan_id", data.Summary.ID).
		Str("issue_id", issueID).
		Msg("issue marked as fixed")
	return data, nil
}

func (c *controller) ClearHistory(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed, err := c.snapshots.Clear(ctx)
	if err != nil {
		return removed, fmt.Errorf("failed to clear scan history: %w", err)
	}
	zerolog.Ctx(ctx).Info().Int("keys", removed).Msg("scan history cleared")
	return removed, nil
}

func toDomain(record *store.ScanData) *domain.ScanData {
	data := adapters.MapScanDataStoreToDomain(*record)
	return &data
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
