package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/config"
	"github.com/pendergraft/mintfactory/internal/wallet"
	"github.com/pendergraft/mintfactory/internal/wallet/jsonrpc"
	"github.com/pendergraft/mintfactory/internal/wallet/keyed"
	"github.com/pendergraft/mintfactory/pkg/client"
)

const (
	walletKeyed   = "keyed"
	walletJSONRPC = "jsonrpc"
)

// walletOptions are the resolved wallet settings for one invocation.
type walletOptions struct {
	Mode      string
	URL       string
	Endpoints map[int64]string
}

// openWallet builds the provider for opts. The returned close func is never nil.
func openWallet(ctx context.Context, opts walletOptions, logger *slog.Logger) (wallet.Provider, func(), error) {
	switch opts.Mode {
	case "", walletKeyed:
		hexKey := os.Getenv("MINTFACTORY_PRIVATE_KEY")
		if hexKey == "" {
			var err error
			hexKey, err = readSecret("Enter deployer private key: ")
			if err != nil {
				return nil, nil, fmt.Errorf("failed to read private key: %w", err)
			}
		}
		key, err := keyed.ParseKey(hexKey)
		if err != nil {
			return nil, nil, err
		}
		if len(opts.Endpoints) == 0 {
			return nil, nil, fmt.Errorf("keyed wallet needs an RPC endpoint: add one under [rpc] or pass --rpc")
		}
		w := keyed.New(key, keyed.WithEndpoints(opts.Endpoints), keyed.WithLogger(logger))
		return w, func() {}, nil

	case walletJSONRPC:
		if opts.URL == "" {
			return nil, nil, fmt.Errorf("jsonrpc wallet needs a URL: set [wallet] url or pass --wallet-url")
		}
		p, err := jsonrpc.Dial(ctx, opts.URL)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown wallet mode %q (want %s or %s)", opts.Mode, walletKeyed, walletJSONRPC)
	}
}

// artifactLoader picks the registry when one is configured, otherwise the
// artifacts directory.
func artifactLoader(cfg config.ArtifactsConfig) artifacts.Loader {
	if cfg.RegistryURL != "" {
		c := client.New(cfg.RegistryURL, "")
		return artifacts.NewCachedLoader(artifacts.NewRegistryLoader(c, cfg.Package, cfg.Version))
	}
	return artifacts.NewCachedLoader(artifacts.NewDirLoader(cfg.Dir))
}
