package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pendergraft/mintfactory/internal/chains"
)

func createChainsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "chains",
		Short: "List supported chains",
		Long: `List the chains mintfactory can deploy to, with the aliases accepted by --chain.

EXAMPLES:
  mintfactory chains
  mintfactory chains resolve bsc
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChainsList(cmd.OutOrStdout(), chains.DefaultRegistry(), jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	cmd.AddCommand(createChainsResolveCmd())
	return cmd
}

func createChainsResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <alias>",
		Short: "Show which chain an alias deploys to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChainsResolve(cmd.OutOrStdout(), chains.DefaultRegistry(), args[0])
		},
	}
}

func runChainsList(out io.Writer, registry *chains.Registry, jsonOutput bool) error {
	list := registry.List()

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHAIN ID\tNAME\tTOKEN\tALIASES")
	for _, c := range list {
		name := c.DisplayName
		if c.Testnet {
			name += " (testnet)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ChainID, name, c.NativeSymbol, strings.Join(c.Aliases, ", "))
	}
	return w.Flush()
}

func runChainsResolve(out io.Writer, registry *chains.Registry, alias string) error {
	c, defaulted := registry.ResolveOrDefault(alias)
	fmt.Fprintf(out, "%s -> %s (%d)\n", alias, c.DisplayName, c.ChainID)
	if defaulted {
		fmt.Fprintf(out, "Warning: %q is not a known alias; deployments default to %s\n", alias, c.DisplayName)
	}
	return nil
}
