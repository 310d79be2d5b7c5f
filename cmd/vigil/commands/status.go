package commands

import "github.com/spf13/cobra"

func (c *CLI) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the health of a running watch session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			socket, _ := cmd.Flags().GetString("socket")
			return c.app.Status(cmd.Context(), socket, cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("socket", "", "Status socket path (defaults to the configured one)")
	return cmd
}
