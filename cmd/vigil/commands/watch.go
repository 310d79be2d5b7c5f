package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/vigil/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a live session and render it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputMode, _ := cmd.Flags().GetString("output-mode")
			ci, _ := cmd.Flags().GetBool("ci")
			activity, _ := cmd.Flags().GetBool("activity")
			noStatus, _ := cmd.Flags().GetBool("no-status")

			// If --ci is set, override output-mode to "linear"
			if ci {
				outputMode = "linear"
			}

			return c.app.Watch(cmd.Context(), app.WatchOptions{
				OutputMode: outputMode,
				Activity:   activity,
				NoStatus:   noStatus,
				Out:        cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().StringP("output-mode", "o", "auto", "Output mode: auto, tui, or linear")
	cmd.Flags().Bool("ci", false, "Use linear output mode (shorthand for --output-mode=linear)")
	cmd.Flags().Bool("activity", false, "Print every traced operation in linear mode")
	cmd.Flags().Bool("no-status", false, "Do not publish the status socket")
	return cmd
}
