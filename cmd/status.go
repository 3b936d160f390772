package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"depctl/internal/status"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show the recorded status of a deployment run",
		Long: `Show the per-service status files written during a deployment run.

Without arguments the most recent run is shown. Runs are kept as one
JSON file per service under the system temporary directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			var err error
			if len(args) == 1 {
				dir = status.RunDir(args[0])
			} else {
				dir, err = status.LatestRunDir()
				if err != nil {
					return err
				}
			}

			records, err := status.ReadRun(dir)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no status records in %s", dir)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run: %s\n\n", dir)
			for _, rec := range records {
				line := fmt.Sprintf("%-16s %-16s", rec.Service, rec.Status)
				if rec.Origin != "" {
					line += " " + rec.Origin
				}
				if rec.Error != "" {
					line += "  (" + rec.Error + ")"
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
