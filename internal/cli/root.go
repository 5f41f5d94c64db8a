// Package cli implements the mintfactory command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	server  string
	apiKey  string
)

// Execute runs the CLI
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mintfactory",
		Short: "Deploy NFT collection contracts",
		Long: `Mintfactory deploys ERC-721 and ERC-1155 collection contracts to EVM chains
and records each deployment with a mintfactory server.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "project config file (default: mintfactory.toml or mf.toml)")
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "records server URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for recording deployments")

	rootCmd.AddCommand(createDeployCmd())
	rootCmd.AddCommand(createChainsCmd())
	rootCmd.AddCommand(createDeploymentCmd())
	rootCmd.AddCommand(createAuthCmd())
	rootCmd.AddCommand(createConfigCmd())

	return rootCmd
}

// getServer returns the server URL from flag, env, project config, global
// config, or the default.
func getServer() string {
	if server != "" {
		return server
	}

	if env := os.Getenv("MINTFACTORY_SERVER"); env != "" {
		return env
	}

	if config := loadProjectConfigSilent(); config != nil && config.Server != "" {
		return config.Server
	}

	if global, err := loadGlobalConfig(); err == nil && global.Server != "" {
		return global.Server
	}

	return "http://localhost:8080"
}

// getAPIKey returns the API key from flag, env, or credentials file
func getAPIKey() string {
	if apiKey != "" {
		return apiKey
	}

	if env := os.Getenv("MINTFACTORY_API_KEY"); env != "" {
		return env
	}

	if cred := getCredential(getServer()); cred != "" {
		return cred
	}

	return ""
}
