package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/entra-atlas/pkg/runtime/app"
	"github.com/de-tools/entra-atlas/pkg/runtime/terminal/report"
	"github.com/de-tools/entra-atlas/pkg/services/export"
	"github.com/spf13/cobra"
)

type ExportCmd struct {
	format   string
	out      string
	load     AppLoader
	reporter *report.Reporter
}

func NewExportCmd(load AppLoader, reporter *report.Reporter) *cobra.Command {
	ec := &ExportCmd{load: load, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "export [scan-id|latest]",
		Short: "Export a stored scan as CSV or PDF",
		Args:  cobra.MaximumNArgs(1),
		RunE:  ec.run,
	}
	cmd.Flags().StringVarP(&ec.format, "format", "f", string(export.FormatPDF), "Export format: csv or pdf")
	cmd.Flags().StringVarP(&ec.out, "out", "o", "", "Output file or directory (defaults to a generated name in the working directory)")
	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(ec.format)
	if err != nil {
		return err
	}
	exporter, err := export.New(format)
	if err != nil {
		return err
	}

	return withApp(cmd.Context(), ec.load, func(a *app.App) error {
		data, err := loadScan(cmd, a, args)
		if err != nil {
			return err
		}

		path := ec.out
		name := export.FileName(*data, format)
		if path == "" {
			path = name
		} else if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, name)
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := exporter.Export(f, *data); err != nil {
			_ = f.Close()
			return fmt.Errorf("export failed: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return ec.reporter.Messagef("Exported scan %s to %s", data.Summary.ID, path)
	})
}
