// Package storage persists collection deployment records and API keys.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pendergraft/mintfactory/internal/config"
)

// DeploymentStore handles deployment record operations
type DeploymentStore interface {
	RecordDeployment(ctx context.Context, d *Deployment) error
	GetDeployment(ctx context.Context, chainID int64, address string) (*Deployment, error)
	ListDeployments(ctx context.Context, filter DeploymentFilter, pagination PaginationParams) (*PaginatedResult[Deployment], error)
}

// APIKeyStore handles API key operations
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, name string) (key string, err error)
	ValidateAPIKey(ctx context.Context, key string) (*APIKey, error)
	ListAPIKeys(ctx context.Context) ([]APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error
}

// Store combines all storage interfaces with lifecycle methods.
// Domain services define their own minimal interfaces based on their actual usage.
type Store interface {
	DeploymentStore
	APIKeyStore

	// Lifecycle
	Close() error
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
}

// Deployment is a recorded collection deployment. Addresses are stored in
// EIP-55 checksum form.
type Deployment struct {
	ID              string
	Name            string
	Symbol          string
	Standard        string
	ChainID         int64
	ChainName       string
	Address         string
	TxHash          string
	DeployerAddress string
	BlockNumber     uint64
	GasUsed         uint64
	CostWei         string
	BytecodeMatch   string
	Warnings        []string
	CreatedAt       time.Time
}

// APIKey represents an API key
type APIKey struct {
	ID         string
	Name       string
	KeyHash    string
	CreatedAt  string
	LastUsedAt string
	RevokedAt  string
}

// DeploymentFilter contains filter options for listing deployments
type DeploymentFilter struct {
	ChainID  int64
	Deployer string
	Standard string
}

// PaginationParams contains pagination options
type PaginationParams struct {
	Limit  int
	Cursor string
}

// PaginatedResult contains paginated results
type PaginatedResult[T any] struct {
	Data       []T
	HasMore    bool
	NextCursor string
}

// New creates a new store based on configuration
func New(cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLiteStore(cfg.SQLite.Path, logger)
	case "postgres":
		return NewPostgresStore(cfg.Postgres.URL, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
