package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pendergraft/mintfactory/internal/storage"
)

// quietLogger keeps storage chatter off stdout for key commands.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys for recording deployments",
	}

	cmd.AddCommand(newKeysCreateCmd())
	cmd.AddCommand(newKeysListCmd())
	cmd.AddCommand(newKeysRevokeCmd())

	return cmd
}

func newKeysCreateCmd() *cobra.Command {
	var name string
	var outputFile string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new API key",
		Long: `Create a new API key for recording deployments.

By default the key is written to a file in the current directory.
The key is only shown once and cannot be retrieved later.

EXAMPLES:
  mintfactory-server keys create --name "ci-release"
  mintfactory-server keys create --name "ci-release" --quiet | gh secret set MINTFACTORY_API_KEY
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore(cmd.Context(), quietLogger())
			if err != nil {
				return err
			}
			defer store.Close()
			return runKeysCreate(cmd.Context(), cmd.OutOrStdout(), store, name, outputFile, quiet)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name/label for the key (required)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write key to file (default: ./mintfactory-key-{name}.txt)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the key (for piping)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore(cmd.Context(), quietLogger())
			if err != nil {
				return err
			}
			defer store.Close()
			return runKeysList(cmd.Context(), cmd.OutOrStdout(), store)
		},
	}
}

func newKeysRevokeCmd() *cobra.Command {
	var keyID string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an API key",
		Long: `Revoke an API key to prevent further use.

The ID may be the 8 character prefix shown by 'mintfactory-server keys list'.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore(cmd.Context(), quietLogger())
			if err != nil {
				return err
			}
			defer store.Close()
			return runKeysRevoke(cmd.Context(), cmd.OutOrStdout(), store, keyID)
		},
	}

	cmd.Flags().StringVar(&keyID, "id", "", "key ID to revoke (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runKeysCreate(ctx context.Context, out io.Writer, store storage.APIKeyStore, name, outputFile string, quiet bool) error {
	key, err := store.CreateAPIKey(ctx, name)
	if err != nil {
		return fmt.Errorf("creating API key: %w", err)
	}

	if quiet {
		fmt.Fprintln(out, key)
		return nil
	}

	if outputFile == "" {
		outputFile = fmt.Sprintf("./mintfactory-key-%s.txt", name)
	}
	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
	}
	if err := os.WriteFile(outputFile, []byte(key+"\n"), 0600); err != nil {
		return fmt.Errorf("writing key to file: %w", err)
	}

	fmt.Fprintf(out, "API key created: %s\n", name)
	fmt.Fprintf(out, "   Written to: %s (mode 0600)\n", outputFile)
	fmt.Fprintln(out, "   This key cannot be retrieved later.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "   Usage:")
	fmt.Fprintf(out, "     export MINTFACTORY_API_KEY=$(cat %s)\n", outputFile)
	fmt.Fprintln(out, "     mintfactory deploy --name ... --symbol ...")
	return nil
}

func runKeysList(ctx context.Context, out io.Writer, store storage.APIKeyStore) error {
	keys, err := store.ListAPIKeys(ctx)
	if err != nil {
		return fmt.Errorf("listing API keys: %w", err)
	}

	if len(keys) == 0 {
		fmt.Fprintln(out, "No API keys found")
		fmt.Fprintln(out, "Create one with: mintfactory-server keys create --name \"my-key\"")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tLAST USED")
	for _, k := range keys {
		lastUsed := "never"
		if k.LastUsedAt != "" {
			lastUsed = k.LastUsedAt
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shortID(k.ID), k.Name, k.CreatedAt, lastUsed)
	}
	return w.Flush()
}

func runKeysRevoke(ctx context.Context, out io.Writer, store storage.APIKeyStore, keyID string) error {
	keys, err := store.ListAPIKeys(ctx)
	if err != nil {
		return fmt.Errorf("listing API keys: %w", err)
	}

	var matches []string
	for _, k := range keys {
		if k.ID == keyID {
			matches = []string{k.ID}
			break
		}
		if len(keyID) >= 8 && strings.HasPrefix(k.ID, keyID) {
			matches = append(matches, k.ID)
		}
	}

	switch len(matches) {
	case 0:
		return fmt.Errorf("key not found: %s", keyID)
	case 1:
	default:
		return fmt.Errorf("key id %s is ambiguous, use the full id", keyID)
	}

	if err := store.RevokeAPIKey(ctx, matches[0]); err != nil {
		return fmt.Errorf("revoking API key: %w", err)
	}

	fmt.Fprintf(out, "API key revoked: %s\n", shortID(matches[0]))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
