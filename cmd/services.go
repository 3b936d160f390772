package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"depctl/internal/config"
	"depctl/internal/registry"
)

func newServicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the deployable services",
		Long: `List every service in the registry with its port, repository
locator and default branch. The registry is the built-in table plus any
overrides from the settings file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Listing the registry does not need the environment file,
			// only the optional settings overrides.
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}

			reg := registry.New(settings.Services)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPORT\tREPOSITORY\tDEFAULT BRANCH")
			for _, svc := range reg.All() {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", svc.Name, svc.Port, svc.Repo, svc.DefaultBranch)
			}
			return w.Flush()
		},
	}
}
