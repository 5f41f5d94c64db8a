package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// projectConfigFiles is the search order for project config files
var projectConfigFiles = []string{"mintfactory.toml", "mf.toml"}

// ProjectConfig is the project-level TOML configuration
type ProjectConfig struct {
	Server     string            `toml:"server"`
	Collection CollectionConfig  `toml:"collection"`
	RPC        map[string]string `toml:"rpc,omitempty"`
	Wallet     WalletConfig      `toml:"wallet"`
}

// CollectionConfig holds defaults for the deploy command. Flags override
// every field.
type CollectionConfig struct {
	Name         string `toml:"name,omitempty"`
	Symbol       string `toml:"symbol,omitempty"`
	BaseTokenURI string `toml:"base_token_uri,omitempty"`
	MaxSupply    uint64 `toml:"max_supply,omitempty"`
	RoyaltyBps   uint16 `toml:"royalty_bps,omitempty"`
	MintPrice    string `toml:"mint_price,omitempty"`
	PublicMint   bool   `toml:"public_mint,omitempty"`
	Standard     string `toml:"standard,omitempty"`
	Chain        string `toml:"chain,omitempty"`
}

// WalletConfig selects how transactions are signed.
type WalletConfig struct {
	// Mode is "keyed" or "jsonrpc"
	Mode string `toml:"mode,omitempty"`
	// URL is the wallet endpoint for jsonrpc mode
	URL string `toml:"url,omitempty"`
}

// Endpoints parses the [rpc] table into chain id keyed URLs.
func (c *ProjectConfig) Endpoints() (map[int64]string, error) {
	endpoints := make(map[int64]string, len(c.RPC))
	for k, url := range c.RPC {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("[rpc] key %q is not a chain id", k)
		}
		endpoints[id] = url
	}
	return endpoints, nil
}

// GlobalConfig is the user configuration stored in ~/.mintfactory/config.yaml
type GlobalConfig struct {
	Server string `yaml:"server"`
}

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(createConfigInitCmd())
	cmd.AddCommand(createConfigShowCmd())

	return cmd
}

func createConfigInitCmd() *cobra.Command {
	var serverURL string
	var chain string
	var force bool
	var global bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config file",
		Long: `Create a mintfactory.toml configuration file in the current directory.

The file stores the records server URL, collection defaults for the deploy
command, RPC endpoints per chain id, and the wallet mode.

EXAMPLES:
  # Create config with default server
  mintfactory config init

  # Default deployments to BSC
  mintfactory config init --chain BSC

  # Save the server URL for every project
  mintfactory config init --global --server https://mintfactory.example.com
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if global {
				return runConfigInitGlobal(cmd.OutOrStdout(), serverURL, force)
			}
			return runConfigInit(cmd.OutOrStdout(), "mintfactory.toml", serverURL, chain, force)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "server URL")
	cmd.Flags().StringVar(&chain, "chain", "BSC", "default chain alias")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")
	cmd.Flags().BoolVar(&global, "global", false, "write ~/.mintfactory/config.yaml instead")

	return cmd
}

func createConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current config",
		Long: `Display the current configuration from every source, then the effective values.

EXAMPLES:
  mintfactory config show
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}
}

func runConfigInit(out io.Writer, configPath, serverURL, chain string, force bool) error {
	for _, name := range append([]string{configPath}, projectConfigFiles...) {
		if _, err := os.Stat(name); err == nil && !force {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", name)
		}
	}

	content := fmt.Sprintf(`# Mintfactory project configuration

server = %q

# Defaults for 'mintfactory deploy'. Flags override these.
[collection]
standard = "ERC721"
chain = %q
max_supply = 10000
royalty_bps = 500
mint_price = "0"
# name = "My Collection"
# symbol = "MYC"
# base_token_uri = "ipfs://.../"

# RPC endpoints by chain id, used by the keyed wallet
[rpc]
# 56 = "https://bsc-dataseed.binance.org"
# 97 = "https://data-seed-prebsc-1-s1.binance.org:8545"

[wallet]
# keyed reads the private key from MINTFACTORY_PRIVATE_KEY or prompts for it.
# jsonrpc delegates signing to a wallet endpoint.
mode = "keyed"
# url = "http://localhost:1248"
`, serverURL, chain)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n", configPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  1. Edit %s to set your collection defaults and RPC endpoints\n", configPath)
	fmt.Fprintln(out, "  2. Run 'mintfactory auth login' to record deployments")
	fmt.Fprintln(out, "  3. Run 'mintfactory deploy --name ... --symbol ...'")

	return nil
}

func runConfigInitGlobal(out io.Writer, serverURL string, force bool) error {
	path := globalConfigPath()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(GlobalConfig{Server: serverURL})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}

func runConfigShow(out io.Writer) error {
	fmt.Fprintln(out, "Configuration sources (in order of precedence):")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintln(out, "   --server, --api-key, --config")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "2. Environment variables")
	for _, name := range []string{"MINTFACTORY_SERVER", "MINTFACTORY_API_KEY", "MINTFACTORY_PRIVATE_KEY"} {
		switch v := os.Getenv(name); {
		case v == "":
			fmt.Fprintf(out, "   %s=(not set)\n", name)
		case name == "MINTFACTORY_SERVER":
			fmt.Fprintf(out, "   %s=%s\n", name, v)
		default:
			fmt.Fprintf(out, "   %s=%s\n", name, maskAPIKey(v))
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "3. Project config (mintfactory.toml or mf.toml)")
	projectConfig, configPath, err := loadProjectConfig()
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(out, "   (not found)")
	case err != nil:
		fmt.Fprintf(out, "   Error: %v\n", err)
	default:
		fmt.Fprintf(out, "   Loaded from: %s\n", configPath)
		if projectConfig.Server != "" {
			fmt.Fprintf(out, "   server: %s\n", projectConfig.Server)
		}
		c := projectConfig.Collection
		if c.Standard != "" {
			fmt.Fprintf(out, "   collection.standard: %s\n", c.Standard)
		}
		if c.Chain != "" {
			fmt.Fprintf(out, "   collection.chain: %s\n", c.Chain)
		}
		if c.Name != "" {
			fmt.Fprintf(out, "   collection.name: %s\n", c.Name)
		}
		if projectConfig.Wallet.Mode != "" {
			fmt.Fprintf(out, "   wallet.mode: %s\n", projectConfig.Wallet.Mode)
		}
		ids := make([]string, 0, len(projectConfig.RPC))
		for id := range projectConfig.RPC {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(out, "   rpc.%s: %s\n", id, projectConfig.RPC[id])
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "4. Global config (~/.mintfactory/config.yaml)")
	global, err := loadGlobalConfig()
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(out, "   (not found)")
	case err != nil:
		fmt.Fprintf(out, "   Error: %v\n", err)
	case global.Server != "":
		fmt.Fprintf(out, "   server: %s\n", global.Server)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "5. Credentials (~/.mintfactory/credentials)")
	creds, err := loadCredentials()
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(out, "   (not found)")
	case err != nil:
		fmt.Fprintf(out, "   Error: %v\n", err)
	case len(creds.Servers) == 0:
		fmt.Fprintln(out, "   (no credentials stored)")
	default:
		for server, cred := range creds.Servers {
			fmt.Fprintf(out, "   %s: %s\n", server, maskAPIKey(cred.APIKey))
		}
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Effective configuration:")
	fmt.Fprintf(out, "   Server:  %s\n", getServer())
	if key := getAPIKey(); key != "" {
		fmt.Fprintf(out, "   API Key: %s\n", maskAPIKey(key))
	} else {
		fmt.Fprintln(out, "   API Key: (not set)")
	}

	return nil
}

// loadProjectConfig loads the project config from --config or the first
// matching file in the working directory.
func loadProjectConfig() (*ProjectConfig, string, error) {
	if cfgFile != "" {
		config, err := loadProjectConfigFromPath(cfgFile)
		if err != nil {
			return nil, cfgFile, err
		}
		return config, cfgFile, nil
	}

	for _, name := range projectConfigFiles {
		if _, err := os.Stat(name); err == nil {
			config, err := loadProjectConfigFromPath(name)
			if err != nil {
				return nil, name, err
			}
			return config, name, nil
		}
	}
	return nil, "", os.ErrNotExist
}

func loadProjectConfigFromPath(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config ProjectConfig
	if _, err := toml.Decode(string(data), &config); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	return &config, nil
}

// loadProjectConfigSilent returns nil when no project config exists and
// warns on parse failures.
func loadProjectConfigSilent() *ProjectConfig {
	config, _, err := loadProjectConfig()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load project config: %v\n", err)
		}
		return nil
	}
	return config
}

func globalConfigPath() string {
	return filepath.Join(credentialsDir(), "config.yaml")
}

func loadGlobalConfig() (*GlobalConfig, error) {
	data, err := os.ReadFile(globalConfigPath())
	if err != nil {
		return nil, err
	}
	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", globalConfigPath(), err)
	}
	return &cfg, nil
}
