package commands

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newMutateCmd() *cobra.Command {
	kinds := make([]string, 0, len(domain.MutationKinds()))
	for _, kind := range domain.MutationKinds() {
		kinds = append(kinds, string(kind))
	}

	cmd := &cobra.Command{
		Use:   "mutate <kind>",
		Short: "Submit a mutation and print the acknowledged record",
		Long: "Submit a mutation and print the acknowledged record.\n\n" +
			"When a watch session is listening on the status socket the mutation runs\n" +
			"inside it and the keys it affects are refreshed there.\n\n" +
			"Kinds: " + strings.Join(kinds, ", "),
		Example: `  vigil mutate vote --payload '{"proposalId":"p1","option":"yes"}'` + "\n" +
			`  echo '{"token":"ETHX"}' | vigil mutate activate-token --payload -`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, _ := cmd.Flags().GetString("payload")
			if payload == "-" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return zerr.Wrap(err, "failed to read payload from stdin")
				}
				payload = string(raw)
			}
			return c.app.Mutate(cmd.Context(), args[0], json.RawMessage(strings.TrimSpace(payload)), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringP("payload", "p", "{}", "JSON payload, or - to read it from stdin")
	return cmd
}
