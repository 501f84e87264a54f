package workflow

import (
	"context"
	"time"

	"github.com/de-tools/entra-atlas/pkg/services/scan"
	"github.com/rs/zerolog"
)

type RunnerConfig struct {
	// Interval separates the start of consecutive scans.
	Interval time.Duration
	// RetryInterval replaces Interval after a failed scan.
	RetryInterval time.Duration
}

type RunnerProgress struct {
	TenantID  string
	ScanID    string
	Score     int
	Err       error
	Completed time.Time
}

// Runner rescans one tenant on a fixed interval until its context ends.
type Runner struct {
	tenantID   string
	controller scan.Controller
	config     RunnerConfig
	done       chan struct{}
	progress   chan RunnerProgress
	now        func() time.Time
}

func NewRunner(tenantID string, controller scan.Controller, config RunnerConfig) *Runner {
	if config.RetryInterval <= 0 || config.RetryInterval > config.Interval {
		config.RetryInterval = config.Interval
	}
	return &Runner{
		tenantID:   tenantID,
		controller: controller,
		config:     config,
		done:       make(chan struct{}),
		progress:   make(chan RunnerProgress, 100),
		now:        time.Now,
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Progress reports every finished scan. Reports are dropped when nobody reads them.
func (r *Runner) Progress() <-chan RunnerProgress {
	return r.progress
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("tenant", r.tenantID).Logger()
	defer close(r.done)
	defer close(r.progress)

	for {
		wait := r.config.Interval
		report := r.scanOnce(ctx)
		if report.Err != nil {
			if ctx.Err() != nil {
				logger.Info().Msg("scheduled scans stopped")
				return
			}
			logger.Error().Err(report.Err).Msg("scheduled scan failed")
			wait = r.config.RetryInterval
		} else {
			logger.Info().Str("scan_id", report.ScanID).Int("score", report.Score).Msg("scheduled scan completed")
		}

		select {
		case r.progress <- report:
		default:
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info().Msg("scheduled scans stopped")
			return
		case <-timer.C:
		}
	}
}

func (r *Runner) scanOnce(ctx context.Context) RunnerProgress {
	report := RunnerProgress{TenantID: r.tenantID}
	data, err := r.controller.GenerateScan(ctx, scan.Request{
		TenantID: r.tenantID,
		Demo:     r.tenantID == scan.DemoTenantID,
	})
	report.Completed = r.now()
	if err != nil {
		report.Err = err
		return report
	}
	report.ScanID = data.Summary.ID
	report.Score = data.Summary.OverallRiskScore
	return report
}
