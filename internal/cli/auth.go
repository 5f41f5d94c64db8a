package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/pendergraft/mintfactory/pkg/client"
)

// Credentials stores API keys per server
type Credentials struct {
	Servers map[string]ServerCredential `yaml:"servers"`
}

// ServerCredential stores credentials for a single server
type ServerCredential struct {
	APIKey string `yaml:"api_key"`
	Name   string `yaml:"name,omitempty"`
}

func createAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(createAuthLoginCmd())
	cmd.AddCommand(createAuthLogoutCmd())
	cmd.AddCommand(createAuthStatusCmd())

	return cmd
}

func createAuthLoginCmd() *cobra.Command {
	var serverFlag string
	var apiKeyFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with server",
		Long: `Save API key credentials for a Mintfactory server.

The API key is stored in ~/.mintfactory/credentials with secure file permissions.

EXAMPLES:
  # Interactive login (prompts for API key)
  mintfactory auth login

  # Login to a specific server
  mintfactory auth login --server https://mintfactory.example.com

  # Non-interactive login (for CI)
  mintfactory auth login --api-key $MINTFACTORY_API_KEY
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd.Context(), cmd.OutOrStdout(), serverFlag, apiKeyFlag)
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "server URL (default from config)")
	cmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key (prompts if not provided)")

	return cmd
}

func createAuthLogoutCmd() *cobra.Command {
	var serverFlag string
	var allFlag bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear credentials",
		Long: `Remove saved credentials for a server.

EXAMPLES:
  # Logout from default server
  mintfactory auth logout

  # Logout from a specific server
  mintfactory auth logout --server https://mintfactory.example.com

  # Clear all credentials
  mintfactory auth logout --all
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout(cmd.OutOrStdout(), serverFlag, allFlag)
		},
	}

	cmd.Flags().StringVar(&serverFlag, "server", "", "server URL (default from config)")
	cmd.Flags().BoolVar(&allFlag, "all", false, "clear all credentials")

	return cmd
}

func createAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long: `Show current authentication status for all configured servers.

EXAMPLES:
  mintfactory auth status
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runAuthLogin(ctx context.Context, out io.Writer, serverURL, apiKeyInput string) error {
	if serverURL == "" {
		serverURL = getServer()
	}

	key := apiKeyInput
	if key == "" {
		var err error
		key, err = readSecret(fmt.Sprintf("Enter API key for %s: ", serverURL))
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
	}
	if key == "" {
		return errors.New("API key cannot be empty")
	}

	fmt.Fprintf(out, "Validating credentials with %s...\n", serverURL)
	valid, err := validateAPIKey(ctx, serverURL, key)
	if err != nil {
		return fmt.Errorf("failed to validate credentials: %w", err)
	}
	if !valid {
		return errors.New("invalid API key")
	}

	if err := saveCredential(serverURL, key); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Fprintf(out, "Authenticated to %s (key: %s)\n", serverURL, maskAPIKey(key))
	fmt.Fprintf(out, "Credentials saved to %s\n", credentialsFilePath())
	return nil
}

func runAuthLogout(out io.Writer, serverURL string, all bool) error {
	if all {
		if err := os.Remove(credentialsFilePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		fmt.Fprintln(out, "All credentials cleared")
		return nil
	}

	if serverURL == "" {
		serverURL = getServer()
	}

	creds, err := loadCredentials()
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(out, "No credentials found for %s\n", serverURL)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load credentials: %w", err)
	}

	if _, ok := creds.Servers[serverURL]; !ok {
		fmt.Fprintf(out, "No credentials found for %s\n", serverURL)
		return nil
	}
	delete(creds.Servers, serverURL)

	if err := writeCredentials(creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Fprintf(out, "Logged out from %s\n", serverURL)
	return nil
}

func runAuthStatus(out io.Writer) error {
	creds, err := loadCredentials()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil || len(creds.Servers) == 0 {
		fmt.Fprintln(out, "Not authenticated to any servers")
		fmt.Fprintln(out, "\nRun 'mintfactory auth login' to authenticate")
		return nil
	}

	servers := make([]string, 0, len(creds.Servers))
	for s := range creds.Servers {
		servers = append(servers, s)
	}
	sort.Strings(servers)

	fmt.Fprintln(out, "Authenticated servers:")
	for _, s := range servers {
		cred := creds.Servers[s]
		if cred.Name != "" {
			fmt.Fprintf(out, "  - %s (%s, key: %s)\n", s, cred.Name, maskAPIKey(cred.APIKey))
		} else {
			fmt.Fprintf(out, "  - %s (key: %s)\n", s, maskAPIKey(cred.APIKey))
		}
	}
	return nil
}

// Credential file helpers

func credentialsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mintfactory"
	}
	return filepath.Join(home, ".mintfactory")
}

func credentialsFilePath() string {
	return filepath.Join(credentialsDir(), "credentials")
}

func loadCredentials() (*Credentials, error) {
	path := credentialsFilePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	if creds.Servers == nil {
		creds.Servers = make(map[string]ServerCredential)
	}

	return &creds, nil
}

func writeCredentials(creds *Credentials) error {
	dir := credentialsDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(creds)
	if err != nil {
		return err
	}

	path := credentialsFilePath()
	return os.WriteFile(path, data, 0600)
}

func saveCredential(serverURL, apiKey string) error {
	creds, err := loadCredentials()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		creds = &Credentials{Servers: make(map[string]ServerCredential)}
	}

	creds.Servers[serverURL] = ServerCredential{APIKey: apiKey}
	return writeCredentials(creds)
}

func getCredential(serverURL string) string {
	creds, err := loadCredentials()
	if err != nil {
		return ""
	}
	if cred, ok := creds.Servers[serverURL]; ok {
		return cred.APIKey
	}
	return ""
}

// validateAPIKey files an empty record. Auth runs before the handler reads
// the body, so only UNAUTHORIZED means the key was refused; the expected
// INVALID_REQUEST means it was accepted.
func validateAPIKey(ctx context.Context, serverURL, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	_, err := client.New(serverURL, key).RecordDeployment(ctx, client.DeploymentRequest{})
	var apiErr *client.APIError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		return false, nil
	case errors.As(err, &apiErr):
		return true, nil
	default:
		return false, err
	}
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:8] + "..." + key[len(key)-4:]
}

// readSecret prompts on stderr and reads one line without echo when stdin is
// a terminal.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	stdinFd := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFd) {
		b, err := term.ReadPassword(stdinFd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
