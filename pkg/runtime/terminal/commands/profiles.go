package commands

import (
	"fmt"

	"github.com/de-tools/entra-atlas/pkg/runtime/app"
	"github.com/spf13/cobra"
)

func NewProfilesCmd(load AppLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List tenant profiles from the tenants file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, load, func(a *app.App) error {
				names, err := a.Tenants.GetProfiles(ctx)
				if err != nil {
					return fmt.Errorf("failed to list profiles: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(names) == 0 {
					fmt.Fprintf(out, "No tenant profiles found in %s\n", a.Settings.TenantsFile)
					return nil
				}
				for _, name := range names {
					marker := " "
					if name == a.Settings.Profile {
						marker = "*"
					}
					profile, err := a.Tenants.GetProfile(ctx, name)
					if err != nil {
						fmt.Fprintf(out, "%s %s (invalid: %v)\n", marker, name, err)
						continue
					}
					fmt.Fprintf(out, "%s %s  %s  %s\n", marker, name, profile.AuthMethod, profile.TenantID)
				}
				return nil
			})
		},
	}
}
