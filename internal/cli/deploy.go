package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/chains"
	"github.com/pendergraft/mintfactory/internal/collections/domain"
	"github.com/pendergraft/mintfactory/internal/config"
	"github.com/pendergraft/mintfactory/internal/observability/metrics"
	"github.com/pendergraft/mintfactory/internal/wallet"
	"github.com/pendergraft/mintfactory/pkg/client"
)

// recorder files a finished deployment with the records server.
type recorder interface {
	RecordDeployment(ctx context.Context, req client.DeploymentRequest) (*client.Deployment, error)
}

// deployDeps are the collaborators of one deploy run.
type deployDeps struct {
	Wallet   wallet.Provider
	Loader   artifacts.Loader
	Recorder recorder // nil skips recording
	Logger   *slog.Logger
	Config   config.DeployConfig

	// MetricsFile receives the deploy metrics after the run when set.
	MetricsFile string
}

type deployFlags struct {
	collection  CollectionConfig
	wallet      string
	walletURL   string
	rpc         map[string]string
	noRecord    bool
	jsonOutput  bool
	verbose     bool
	metricsFile string
}

func createDeployCmd() *cobra.Command {
	var f deployFlags

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy an NFT collection contract",
		Long: `Deploy an ERC-721 or ERC-1155 collection contract.

Values from the [collection] table of mintfactory.toml are used as defaults
and any flag overrides them. The wallet is switched to the target chain when
needed, the deployment is verified on chain, and public minting is enabled.
The result is recorded with the records server unless --no-record is set.

EXAMPLES:
  # Deploy to BSC with a local key (prompted, or MINTFACTORY_PRIVATE_KEY)
  mintfactory deploy --name "Pixel Foxes" --symbol PFOX --max-supply 10000 \
    --royalty-bps 500 --mint-price 0.05 --chain BSC --rpc 56=https://bsc-dataseed.binance.org

  # Deploy an ERC-1155 collection through a wallet endpoint
  mintfactory deploy --standard ERC1155 --wallet jsonrpc --wallet-url http://localhost:1248
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runDeployCmd(ctx, cmd, f)
		},
	}

	c := &f.collection
	cmd.Flags().StringVar(&c.Name, "name", "", "collection name")
	cmd.Flags().StringVar(&c.Symbol, "symbol", "", "collection symbol")
	cmd.Flags().StringVar(&c.BaseTokenURI, "base-uri", "", "base token URI")
	cmd.Flags().Uint64Var(&c.MaxSupply, "max-supply", 0, "maximum token supply")
	cmd.Flags().Uint16Var(&c.RoyaltyBps, "royalty-bps", 0, "royalty in basis points (500 = 5%)")
	cmd.Flags().StringVar(&c.MintPrice, "mint-price", "", "mint price in the native token (e.g. 0.05)")
	cmd.Flags().BoolVar(&c.PublicMint, "public-mint", false, "open public minting at construction")
	cmd.Flags().StringVar(&c.Standard, "standard", "", "token standard: ERC721 or ERC1155")
	cmd.Flags().StringVar(&c.Chain, "chain", "", "target chain alias (e.g. BSC, ETH, POLYGON)")
	cmd.Flags().StringVar(&f.wallet, "wallet", "", "wallet mode: keyed or jsonrpc")
	cmd.Flags().StringVar(&f.walletURL, "wallet-url", "", "wallet endpoint for jsonrpc mode")
	cmd.Flags().StringToStringVar(&f.rpc, "rpc", nil, "RPC endpoint per chain id (e.g. 56=https://...)")
	cmd.Flags().BoolVar(&f.noRecord, "no-record", false, "do not record the deployment with the server")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "output the result as JSON")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log every pipeline checkpoint")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics for this run to a textfile (e.g. for node_exporter)")

	return cmd
}

func runDeployCmd(ctx context.Context, cmd *cobra.Command, f deployFlags) error {
	project := loadProjectConfigSilent()
	if project == nil {
		project = &ProjectConfig{}
	}

	params, err := mergeCollection(project.Collection, f.collection, cmd.Flags().Changed)
	if err != nil {
		return err
	}

	endpoints, err := project.Endpoints()
	if err != nil {
		return err
	}
	for k, url := range f.rpc {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("--rpc key %q is not a chain id", k)
		}
		endpoints[id] = url
	}

	wopts := walletOptions{Mode: project.Wallet.Mode, URL: project.Wallet.URL, Endpoints: endpoints}
	if f.wallet != "" {
		wopts.Mode = f.wallet
	}
	if f.walletURL != "" {
		wopts.URL = f.walletURL
	}

	deployCfg, err := config.LoadDeploy()
	if err != nil {
		return fmt.Errorf("loading deploy config: %w", err)
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	w, closeWallet, err := openWallet(ctx, wopts, logger)
	if err != nil {
		return err
	}
	defer closeWallet()

	if f.metricsFile != "" {
		metrics.Init(true, "mintfactory")
	}

	deps := deployDeps{
		Wallet:      w,
		Loader:      artifactLoader(deployCfg.Artifacts),
		Logger:      logger,
		Config:      *deployCfg,
		MetricsFile: f.metricsFile,
	}
	if !f.noRecord {
		deps.Recorder = client.New(getServer(), getAPIKey())
	}

	return runDeploy(ctx, cmd.OutOrStdout(), params, deps, f.jsonOutput)
}

// mergeCollection overlays explicitly set flags on the project defaults.
func mergeCollection(defaults, flags CollectionConfig, changed func(string) bool) (domain.DeploymentParams, error) {
	c := defaults
	if changed("name") {
		c.Name = flags.Name
	}
	if changed("symbol") {
		c.Symbol = flags.Symbol
	}
	if changed("base-uri") {
		c.BaseTokenURI = flags.BaseTokenURI
	}
	if changed("max-supply") {
		c.MaxSupply = flags.MaxSupply
	}
	if changed("royalty-bps") {
		c.RoyaltyBps = flags.RoyaltyBps
	}
	if changed("mint-price") {
		c.MintPrice = flags.MintPrice
	}
	if changed("public-mint") {
		c.PublicMint = flags.PublicMint
	}
	if changed("standard") {
		c.Standard = flags.Standard
	}
	if changed("chain") {
		c.Chain = flags.Chain
	}

	if c.Standard == "" {
		c.Standard = string(artifacts.ERC721)
	}
	std, err := artifacts.ParseStandard(c.Standard)
	if err != nil {
		return domain.DeploymentParams{}, err
	}

	return domain.DeploymentParams{
		Name:         c.Name,
		Symbol:       c.Symbol,
		BaseTokenURI: c.BaseTokenURI,
		MaxSupply:    c.MaxSupply,
		RoyaltyBps:   c.RoyaltyBps,
		MintPrice:    c.MintPrice,
		IsPublicMint: c.PublicMint,
		Standard:     std,
		Chain:        c.Chain,
	}, nil
}

// progressObserver narrates the suspension points so the user knows what
// the wallet is waiting on.
func progressObserver(out io.Writer) domain.Observer {
	return domain.ObserverFunc(func(ctx context.Context, e domain.Event) {
		switch e.Type {
		case domain.EventChainResolved:
			fmt.Fprintf(out, "Target chain: %s (%d)\n", e.ChainName, e.ChainID)
		case domain.EventSwitchRequested:
			fmt.Fprintf(out, "Approve the switch to %s in your wallet...\n", e.ChainName)
		case domain.EventTxSubmitted:
			fmt.Fprintf(out, "Transaction submitted: %s\n", e.TxHash.Hex())
			fmt.Fprintln(out, "Waiting for confirmation...")
		case domain.EventTxMined:
			fmt.Fprintln(out, "Transaction mined, verifying deployment...")
		}
	})
}

func runDeploy(ctx context.Context, out io.Writer, params domain.DeploymentParams, deps deployDeps, jsonOutput bool) error {
	progress := io.Discard
	if !jsonOutput {
		progress = out
	}

	svc := domain.NewService(domain.Config{
		Wallet:    deps.Wallet,
		Artifacts: deps.Loader,
		Chains:    chains.DefaultRegistry(),
		Observer: domain.Observers{
			domain.NewLogObserver(deps.Logger),
			domain.NewMetricsObserver(),
			progressObserver(progress),
		},
		Timeouts: domain.Timeouts{
			SwitchApproval: deps.Config.SwitchTimeout,
			Signing:        deps.Config.SigningTimeout,
			Mining:         deps.Config.MiningTimeout,
		},
		StrictChains: deps.Config.StrictChains,
	})
	svc = domain.LoggingMiddleware(deps.Logger)(svc)

	if deps.MetricsFile != "" {
		defer func() {
			if err := metrics.WriteTextfile(deps.MetricsFile); err != nil {
				deps.Logger.Warn("writing metrics file failed", "path", deps.MetricsFile, "error", err)
			}
		}()
	}

	result, err := svc.Deploy(ctx, params)
	if err != nil {
		return err
	}

	var recorded *client.Deployment
	var recordErr error
	if deps.Recorder != nil {
		recorded, recordErr = deps.Recorder.RecordDeployment(ctx, recordRequest(params, result))
		if recordErr != nil {
			deps.Logger.Warn("recording deployment failed", "error", recordErr)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(out, params, result)
	switch {
	case recordErr != nil:
		fmt.Fprintf(out, "\nWarning: deployment succeeded but was not recorded: %v\n", recordErr)
	case recorded != nil:
		fmt.Fprintf(out, "\nRecorded with %s (id %s)\n", getServer(), recorded.ID)
	}
	return nil
}

func printResult(out io.Writer, params domain.DeploymentParams, r *domain.DeploymentResult) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Deployed %s (%s) as %s\n", params.Name, params.Symbol, r.Standard)
	fmt.Fprintf(out, "  Chain:    %s (%d)\n", r.ChainName, r.ChainID)
	fmt.Fprintf(out, "  Address:  %s\n", r.ContractAddress.Hex())
	fmt.Fprintf(out, "  Tx Hash:  %s\n", r.TransactionHash.Hex())
	fmt.Fprintf(out, "  Block:    %d\n", r.BlockNumber)
	fmt.Fprintf(out, "  Gas Used: %d (limit %d)\n", r.GasUsed, r.GasLimit)
	fmt.Fprintf(out, "  Cost:     %s %s\n", r.DeploymentCost, r.NativeSymbol)
	if r.BytecodeMatch != "" {
		fmt.Fprintf(out, "  Bytecode: %s match\n", r.BytecodeMatch)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(out, "  Warning:  %s\n", w.Message)
	}
}

func recordRequest(params domain.DeploymentParams, r *domain.DeploymentResult) client.DeploymentRequest {
	warnings := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		warnings = append(warnings, w.Code)
	}
	cost := "0"
	if r.DeploymentCostWei != nil {
		cost = r.DeploymentCostWei.String()
	}
	return client.DeploymentRequest{
		Name:            params.Name,
		Symbol:          params.Symbol,
		Standard:        string(r.Standard),
		ChainID:         r.ChainID,
		ChainName:       r.ChainName,
		Address:         r.ContractAddress.Hex(),
		TxHash:          r.TransactionHash.Hex(),
		DeployerAddress: r.Deployer.Hex(),
		BlockNumber:     r.BlockNumber,
		GasUsed:         r.GasUsed,
		CostWei:         cost,
		BytecodeMatch:   string(r.BytecodeMatch),
		Warnings:        warnings,
	}
}
