package commands

import (
	"fmt"

	"github.com/de-tools/entra-atlas/pkg/runtime/app"
	"github.com/de-tools/entra-atlas/pkg/runtime/terminal/report"
	"github.com/spf13/cobra"
)

func NewLoginCmd(load AppLoader, reporter *report.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to the tenant of the active profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), load, func(a *app.App) error {
				claims, err := a.Login(cmd.Context())
				if err != nil {
					return fmt.Errorf("login failed: %w", err)
				}
				return reporter.Login(*claims)
			})
		},
	}
}

func NewLogoutCmd(load AppLoader, reporter *report.Reporter) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session; scan history is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), load, func(a *app.App) error {
				if err := a.Logout(cmd.Context()); err != nil {
					return err
				}
				return reporter.Messagef("Signed out.")
			})
		},
	}
}
