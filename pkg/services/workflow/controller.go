// Package workflow runs scheduled rescans of tenants in the background.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/de-tools/entra-atlas/pkg/services/scan"
	"github.com/rs/zerolog"
)

var ErrAlreadyRunning = errors.New("scheduled scans already running")

type Controller interface {
	Start(ctx context.Context, tenantID string) error
	Cancel(ctx context.Context, tenantID string) error
	// Running lists the tenants with an active schedule.
	Running() []string
}

type workflowDescriptor struct {
	cancelFunc context.CancelFunc
	runner     *Runner
}

type DefaultController struct {
	scans  scan.Controller
	config RunnerConfig

	mu        sync.Mutex
	workflows map[string]workflowDescriptor
}

func NewController(scans scan.Controller, config RunnerConfig) (*DefaultController, error) {
	if scans == nil {
		return nil, fmt.Errorf("scan controller is required")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("scan interval must be positive, got %s", config.Interval)
	}
	return &DefaultController{
		scans:     scans,
		config:    config,
		workflows: make(map[string]workflowDescriptor),
	}, nil
}

// Start launches a runner for the tenant. The runner outlives the request
// that started it: it stops on Cancel or when ctx is cancelled.
func (ctrl *DefaultController) Start(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("tenant id is required")
	}

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	if _, ok := ctrl.workflows[tenantID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, tenantID)
	}

	runCtx, cancel := context.WithCancel(ctx)
	runner := NewRunner(tenantID, ctrl.scans, ctrl.config)
	ctrl.workflows[tenantID] = workflowDescriptor{cancelFunc: cancel, runner: runner}

	go runner.Run(runCtx)
	go func() {
		<-runner.Done()
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		if wf, ok := ctrl.workflows[tenantID]; ok && wf.runner == runner {
			delete(ctrl.workflows, tenantID)
		}
	}()

	zerolog.Ctx(ctx).Info().Str("tenant", tenantID).Dur("interval", ctrl.config.Interval).Msg("scheduled scans started")
	return nil
}

// Cancel stops the tenant's runner and waits for it to finish.
func (ctrl *DefaultController) Cancel(ctx context.Context, tenantID string) error {
	ctrl.mu.Lock()
	wf, ok := ctrl.workflows[tenantID]
	if ok {
		delete(ctrl.workflows, tenantID)
	}
	ctrl.mu.Unlock()

	if !ok {
		return fmt.Errorf("no scheduled scans for tenant %s", tenantID)
	}
	wf.cancelFunc()

	select {
	case <-wf.runner.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ctrl *DefaultController) Running() []string {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()

	tenants := make([]string, 0, len(ctrl.workflows))
	for tenantID := range ctrl.workflows {
		tenants = append(tenants, tenantID)
	}
	return tenants
}
