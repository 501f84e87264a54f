package commands

import (
	"fmt"

	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/runtime/app"
	"github.com/de-tools/entra-atlas/pkg/runtime/terminal/report"
	"github.com/de-tools/entra-atlas/pkg/services/scan"
	"github.com/spf13/cobra"
)

type ScanCmd struct {
	demo     bool
	load     AppLoader
	reporter *report.Reporter
}

func NewScanCmd(load AppLoader, reporter *report.Reporter) *cobra.Command {
	sc := &ScanCmd{load: load, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the signed-in tenant and store the result",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}
	cmd.Flags().BoolVar(&sc.demo, "demo", false, "Scan the built-in demo tenant instead of a live one")
	return cmd
}

func (sc *ScanCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	return withApp(ctx, sc.load, func(a *app.App) error {
		requested := ""
		if f := cmd.Flag("tenant"); f != nil {
			requested = f.Value.String()
		}
		if sc.demo && requested != "" {
			return fmt.Errorf("--tenant cannot be combined with --demo")
		}

		req := scan.Request{Demo: sc.demo}
		if !sc.demo {
			tenantID, err := a.TenantID(ctx)
			if err != nil {
				return err
			}
			// The session token decides which tenant Graph returns.
			if requested != "" && requested != tenantID {
				return fmt.Errorf("live scans target the signed-in tenant %s, not %s: run login with a profile for that tenant", tenantID, requested)
			}
			req.TenantID = tenantID
			if a.Profile != nil {
				req.TenantName = a.Profile.Domain
			}
		}

		data, err := a.Controller.GenerateScan(ctx, req)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		return sc.reporter.Scan(*data)
	})
}

func NewShowCmd(load AppLoader, reporter *report.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "show [scan-id|latest]",
		Short: "Show a stored scan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(a *app.App) error {
				data, err := loadScan(cmd, a, args)
				if err != nil {
					return err
				}
				return reporter.Scan(*data)
			})
		},
	}
}

func NewFixCmd(load AppLoader, reporter *report.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "fix <scan-id|latest> <issue-id>",
		Short: "Mark an issue of a stored scan as remediated",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(a *app.App) error {
				tenantID, err := tenantFlag(cmd, a)
				if err != nil {
					return err
				}
				if err := reporter.Messagef("Applying fix for %s...", args[1]); err != nil {
					return err
				}
				data, err := a.Controller.FixIssue(ctx, tenantID, args[0], args[1])
				if err != nil {
					return fmt.Errorf("fix failed: %w", err)
				}
				return reporter.Scan(*data)
			})
		},
	}
}

func NewHistoryCmd(load AppLoader, reporter *report.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the retained scans of the tenant, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(a *app.App) error {
				tenantID, err := tenantFlag(cmd, a)
				if err != nil {
					return err
				}
				summaries, err := a.Controller.History(ctx, tenantID)
				if err != nil {
					return err
				}
				return reporter.History(summaries)
			})
		},
	}
}

func NewClearCmd(load AppLoader, reporter *report.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored scan and scan history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(a *app.App) error {
				removed, err := a.Controller.ClearHistory(ctx)
				if err != nil {
					return err
				}
				return reporter.Messagef("Removed %d stored entries.", removed)
			})
		},
	}
}

// loadScan resolves the optional scan argument; it defaults to the latest scan.
func loadScan(cmd *cobra.Command, a *app.App, args []string) (*domain.ScanData, error) {
	scanID := scan.LatestScanID
	if len(args) > 0 {
		scanID = args[0]
	}
	tenantID, err := tenantFlag(cmd, a)
	if err != nil {
		return nil, err
	}
	return a.Controller.GetScan(cmd.Context(), tenantID, scanID)
}

// tenantFlag honours the persistent --tenant flag before the app's own resolution.
func tenantFlag(cmd *cobra.Command, a *app.App) (string, error) {
	if f := cmd.Flag("tenant"); f != nil && f.Value.String() != "" {
		return f.Value.String(), nil
	}
	return a.TenantID(cmd.Context())
}
