package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/vigil/internal/core/domain"
)

func (c *CLI) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <domain> [params...]",
		Short: "Fetch the current snapshot of a domain",
		Example: "  vigil get metrics\n" +
			"  vigil get user-balances alice\n" +
			"  vigil get ledger-page 2",
		Args: cobra.MinimumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			names := make([]string, 0, len(domain.Catalog))
			for _, spec := range domain.Catalog {
				names = append(names, spec.Name)
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			key := domain.NewKey(args[0], args[1:]...)
			return c.app.Get(cmd.Context(), key, cmd.OutOrStdout())
		},
	}
}
