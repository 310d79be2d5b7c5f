package commands

import (
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/vigil/internal/app"
)

func (c *CLI) newSimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Serve a simulated backend for local use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			identity, _ := cmd.Flags().GetString("identity")
			tick, _ := cmd.Flags().GetDuration("tick")
			dropEvery, _ := cmd.Flags().GetDuration("drop-every")
			seed, _ := cmd.Flags().GetUint64("seed")

			return c.app.Sim(cmd.Context(), app.SimOptions{
				Addr:      addr,
				Identity:  identity,
				Tick:      tick,
				DropEvery: dropEvery,
				Seed:      seed,
			})
		},
	}
	cmd.Flags().String("addr", "127.0.0.1:8088", "Listen address")
	cmd.Flags().String("identity", "", "Actor reported for mutations (defaults to the configured identity)")
	cmd.Flags().Duration("tick", time.Second, "Interval between stream updates")
	cmd.Flags().Duration("drop-every", 0, "Close all streams periodically (0 disables)")
	cmd.Flags().Uint64("seed", 1, "Seed for the generated data")
	return cmd
}
