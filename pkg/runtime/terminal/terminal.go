package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/entra-atlas/pkg/runtime/app"
	"github.com/de-tools/entra-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/entra-atlas/pkg/runtime/terminal/report"
	"github.com/de-tools/entra-atlas/pkg/services/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	reporter *report.Reporter
	output   io.Writer
	logs     io.Writer
	load     commands.AppLoader
	rootCmd  *cobra.Command

	configPath string
	profile    string
	verbose    bool
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	// Logs receives diagnostics; defaults to stderr.
	Logs io.Writer
	// Loader replaces the default application wiring.
	Loader commands.AppLoader
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logs == nil {
		opts.Logs = os.Stderr
	}

	cli := &CLI{
		reporter: report.NewReporter(opts.Output),
		output:   opts.Output,
		logs:     opts.Logs,
		load:     opts.Loader,
	}
	if cli.load == nil {
		cli.load = cli.loadApp
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "entra-atlas",
		Short:         "Security posture scanner for Microsoft Entra ID tenants",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.WarnLevel
			if cli.verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cli.logs}).Level(level).With().Timestamp().Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}
	cmd.SetOut(cli.output)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.configPath, "config", "c", config.DefaultConfigPath(), "Path to the config file")
	flags.StringVarP(&cli.profile, "profile", "p", "", "Tenant profile from the tenants file")
	flags.String("tenant", "", "Tenant id to read scans for (defaults to the signed-in tenant)")
	flags.BoolVarP(&cli.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(commands.NewLoginCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewLogoutCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewScanCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewShowCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewHistoryCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewFixCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewExportCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewClearCmd(cli.load, cli.reporter))
	cmd.AddCommand(commands.NewProfilesCmd(cli.load))

	return cmd
}

func (cli *CLI) loadApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, app.Options{
		ConfigPath: cli.configPath,
		Profile:    cli.profile,
		Prompt:     cli.output,
	})
}
