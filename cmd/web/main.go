package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/de-tools/entra-atlas/pkg/runtime/app"
	"github.com/de-tools/entra-atlas/pkg/server"
	"github.com/de-tools/entra-atlas/pkg/services/auth"
	"github.com/de-tools/entra-atlas/pkg/services/config"
	"github.com/de-tools/entra-atlas/pkg/services/workflow"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	profile string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Entra Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigPath(),
		"Path to the config file (default is $HOME/.entra-atlas/config.yaml)")
	rootCmd.Flags().StringVarP(&profile, "profile", "p", "", "Tenant profile from the tenants file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	application, err := app.New(ctx, app.Options{
		ConfigPath: cfgPath,
		Profile:    profile,
		Prompt:     os.Stdout,
		Registerer: registry,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() { _ = application.Close() }()

	logger.Info().Msgf("Configuration `%s` loaded, store: %s", cfgPath, application.Settings.Store.Driver)
	if application.Profile != nil {
		logger.Info().Msgf("Active profile: `%s`", application.Profile)
	}

	refresher := auth.NewRefresher(application.Session)
	if err := refresher.Start(ctx); err != nil {
		if !errors.Is(err, auth.ErrNotLoggedIn) {
			return fmt.Errorf("failed to start token refresher: %w", err)
		}
		logger.Warn().Msg("no stored session, run `entra-atlas login` before live scans")
	}
	defer refresher.Stop()

	if schedule := application.Settings.Schedule; schedule.Interval > 0 {
		workflows, err := workflow.NewController(application.Controller, workflow.RunnerConfig{
			Interval:      schedule.Interval,
			RetryInterval: schedule.RetryInterval,
		})
		if err != nil {
			return fmt.Errorf("failed to create scan scheduler: %w", err)
		}
		tenantID, err := application.TenantID(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve tenant for scheduled scans: %w", err)
		}
		if err := workflows.Start(ctx, tenantID); err != nil {
			return err
		}
		defer func() { _ = workflows.Cancel(context.Background(), tenantID) }()
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		return errors.New("missing SERVER_HOST or SERVER_PORT, set them in the environment or a .env file")
	}

	api := server.NewWebAPI(server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Controller: application.Controller,
			Tenant:     application.TenantID,
			Logger:     logger,
			Gatherer:   registry,
		},
	})
	return api.Start()
}
