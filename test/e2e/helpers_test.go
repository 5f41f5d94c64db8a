//go:build e2e

package e2e

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pendergraft/mintfactory/internal/config"
	"github.com/pendergraft/mintfactory/internal/server"
	"github.com/pendergraft/mintfactory/internal/storage"
	"github.com/pendergraft/mintfactory/pkg/client"
)

// staticKey is accepted by the test server alongside database keys.
const staticKey = "mf_key_e2e_static"

// TestContext holds shared test infrastructure
type TestContext struct {
	PostgresContainer *postgres.PostgresContainer
	ConnString        string
	TestServer        *httptest.Server
	Store             storage.Store
}

// setupPostgresE starts a Postgres container and returns the connection string
func setupPostgresE(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("mintfactory"),
		postgres.WithUsername("mintfactory"),
		postgres.WithPassword("mintfactory"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, "", fmt.Errorf("failed to get postgres connection string: %w", err)
	}

	return container, connString, nil
}

// startServerE starts the records server in-process against Postgres
func startServerE(connString string) (*httptest.Server, storage.Store, error) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			RequestTimeout: 30,
			MaxBodySizeKB:  64,
		},
		Storage: config.StorageConfig{
			Type:     "postgres",
			Postgres: config.PostgresConfig{URL: connString},
		},
		Auth:      config.AuthConfig{Type: "api-key", APIKeys: []string{staticKey}},
		Logging:   config.LoggingConfig{Level: "debug", Format: "text"},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store, err := storage.New(cfg.Storage, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create store: %w", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	srv := server.New(cfg, store, logger)
	return httptest.NewServer(srv.Handler()), store, nil
}

// newClient creates a new API client for the test server
func newClient(testServer *httptest.Server, apiKey string) *client.Client {
	return client.New(testServer.URL, apiKey)
}

// createTestAPIKey creates a test API key using the store directly
func createTestAPIKey(t *testing.T, store storage.Store, name string) string {
	key, err := store.CreateAPIKey(context.Background(), name)
	require.NoError(t, err, "Failed to create API key")
	return key
}

// sampleRequest returns a valid record request for address on chainID.
func sampleRequest(chainID int64, address string) client.DeploymentRequest {
	return client.DeploymentRequest{
		Name:            "Pixel Foxes",
		Symbol:          "PFOX",
		Standard:        "ERC721",
		ChainID:         chainID,
		Address:         address,
		TxHash:          "0x8a2a8c4e7f0e5b6a1d1e8c3b0b6f6b2c9b0d2e1f3a4b5c6d7e8f9a0b1c2d3e4f",
		DeployerAddress: "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4",
		BlockNumber:     12345,
		GasUsed:         1_800_000,
		CostWei:         "9000000000000000",
	}
}

// randomAddress returns a fresh checksummed address so tests sharing the
// database never collide.
func randomAddress(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

// assertHTTPError asserts that an error is an APIError with the expected code
func assertHTTPError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	require.Error(t, err, "Expected an error")
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "Error should be an APIError")
	require.Equal(t, expectedCode, apiErr.Code, "Error code mismatch")
}
