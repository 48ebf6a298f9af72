package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	var importOnly bool

	cmd := &cobra.Command{
		Use:   "sync <config-id>",
		Short: "Run one synchronization pass for a linked calendar",
		Long: `Run one synchronization pass for the given calendar configuration,
in its configured direction. Per-event failures are reported but do
not stop the pass.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			run := a.engine.RunSync
			if importOnly {
				run = a.engine.ImportFromICalURL
			}
			result := run(ctx, args[0])

			fmt.Printf("%s\n", result.Message)
			fmt.Printf("imported: %d  exported: %d  updated: %d\n",
				result.Imported, result.Exported, result.Updated)
			for _, e := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
			}
			if !result.Success {
				return fmt.Errorf("synchronization finished with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&importOnly, "import-only", false, "only import, regardless of the configured direction")
	return cmd
}
