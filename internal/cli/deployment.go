package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pendergraft/mintfactory/internal/chains"
	"github.com/pendergraft/mintfactory/pkg/client"
)

// deploymentReader is the read side of the records API.
type deploymentReader interface {
	GetDeployment(ctx context.Context, chainID int64, address string) (*client.Deployment, error)
	ListDeployments(ctx context.Context, opts client.ListOptions) (*client.ListDeploymentsResponse, error)
}

func createDeploymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deployment",
		Aliases: []string{"deployments"},
		Short:   "Query recorded deployments",
	}

	cmd.AddCommand(createDeploymentListCmd())
	cmd.AddCommand(createDeploymentInfoCmd())

	return cmd
}

func createDeploymentListCmd() *cobra.Command {
	var chain string
	var opts client.ListOptions
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deployments",
		Long: `List recorded collection deployments, newest first.

EXAMPLES:
  # List all deployments
  mintfactory deployment list

  # Filter by chain alias or id
  mintfactory deployment list --chain BSC

  # Deployments by one wallet
  mintfactory deployment list --deployer 0x5B38...
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if chain != "" {
				id, err := chainArg(chain)
				if err != nil {
					return err
				}
				opts.ChainID = id
			}
			c := client.New(getServer(), getAPIKey())
			return runDeploymentList(cmd.Context(), cmd.OutOrStdout(), c, opts, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&chain, "chain", "", "filter by chain alias or id")
	cmd.Flags().StringVar(&opts.Deployer, "deployer", "", "filter by deployer address")
	cmd.Flags().StringVar(&opts.Standard, "standard", "", "filter by token standard")
	cmd.Flags().StringVar(&opts.Cursor, "cursor", "", "continue from a previous page")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of items to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func createDeploymentInfoCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info <chain> <address>",
		Short: "Show deployment details",
		Long: `Display detailed information about a recorded deployment.

EXAMPLES:
  mintfactory deployment info BSC 0x1234...
  mintfactory deployment info 56 0x1234...
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := chainArg(args[0])
			if err != nil {
				return err
			}
			c := client.New(getServer(), getAPIKey())
			return runDeploymentInfo(cmd.Context(), cmd.OutOrStdout(), c, id, args[1], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

// chainArg accepts a numeric chain id or a registered alias. Unknown aliases
// are an error here since a silent default would query the wrong chain.
func chainArg(s string) (int64, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > 0 {
		return id, nil
	}
	c, ok := chains.DefaultRegistry().Resolve(s)
	if !ok {
		return 0, fmt.Errorf("unknown chain %q (see 'mintfactory chains')", s)
	}
	return c.ChainID, nil
}

func runDeploymentList(ctx context.Context, out io.Writer, c deploymentReader, opts client.ListOptions, jsonOutput bool) error {
	result, err := c.ListDeployments(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to list deployments: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if len(result.Data) == 0 {
		fmt.Fprintln(out, "No deployments found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHAIN\tADDRESS\tNAME\tSYMBOL\tSTANDARD\tRECORDED")
	for _, d := range result.Data {
		chain := d.ChainName
		if chain == "" {
			chain = fmt.Sprint(d.ChainID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", chain, truncateAddress(d.Address), d.Name, d.Symbol, d.Standard, d.CreatedAt)
	}
	w.Flush()

	if result.Pagination.HasMore {
		fmt.Fprintf(out, "\n(showing %d deployments, more with --cursor %s)\n", len(result.Data), result.Pagination.NextCursor)
	}

	return nil
}

func runDeploymentInfo(ctx context.Context, out io.Writer, c deploymentReader, chainID int64, address string, jsonOutput bool) error {
	d, err := c.GetDeployment(ctx, chainID, address)
	if err != nil {
		if client.IsNotFound(err) {
			return fmt.Errorf("no deployment recorded for %s on chain %d", address, chainID)
		}
		return fmt.Errorf("failed to get deployment: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	fmt.Fprintf(out, "Collection: %s (%s)\n", d.Name, d.Symbol)
	fmt.Fprintf(out, "Standard:   %s\n", d.Standard)
	fmt.Fprintf(out, "Address:    %s\n", d.Address)
	fmt.Fprintf(out, "Chain:      %s (%d)\n", d.ChainName, d.ChainID)
	if d.TxHash != "" {
		fmt.Fprintf(out, "Tx Hash:    %s\n", d.TxHash)
	}
	if d.DeployerAddress != "" {
		fmt.Fprintf(out, "Deployer:   %s\n", d.DeployerAddress)
	}
	if d.BlockNumber > 0 {
		fmt.Fprintf(out, "Block:      %d\n", d.BlockNumber)
	}
	fmt.Fprintf(out, "Gas Used:   %d\n", d.GasUsed)
	fmt.Fprintf(out, "Cost (wei): %s\n", d.CostWei)
	if d.BytecodeMatch != "" {
		fmt.Fprintf(out, "Bytecode:   %s match\n", d.BytecodeMatch)
	}
	if len(d.Warnings) > 0 {
		fmt.Fprintf(out, "Warnings:   %s\n", strings.Join(d.Warnings, ", "))
	}
	if d.CreatedAt != "" {
		fmt.Fprintf(out, "Recorded:   %s\n", d.CreatedAt)
	}

	return nil
}

func truncateAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
