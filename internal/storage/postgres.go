package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a new Postgres store
func NewPostgresStore(url string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate runs database migrations
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	-- Deployments
	CREATE TABLE IF NOT EXISTS deployments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		symbol TEXT NOT NULL,
		standard TEXT NOT NULL,
		chain_id BIGINT NOT NULL,
		chain_name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL,
		tx_hash TEXT NOT NULL,
		deployer_address TEXT NOT NULL,
		block_number BIGINT NOT NULL DEFAULT 0,
		gas_used BIGINT NOT NULL DEFAULT 0,
		cost_wei NUMERIC(78, 0) NOT NULL DEFAULT 0,
		bytecode_match TEXT NOT NULL DEFAULT '',
		warnings JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(chain_id, address)
	);

	-- API keys
	CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		last_used_at TIMESTAMPTZ,
		revoked_at TIMESTAMPTZ
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_deployments_created ON deployments(created_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_deployments_deployer ON deployments(LOWER(deployer_address));
	`

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	s.logger.Info("database migrations complete")
	return nil
}

// RecordDeployment records a deployment
func (s *PostgresStore) RecordDeployment(ctx context.Context, d *Deployment) error {
	if d.ID == "" {
		d.ID = generateID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	warnings, err := encodeWarnings(d.Warnings)
	if err != nil {
		return err
	}
	cost := d.CostWei
	if cost == "" {
		cost = "0"
	}

	query := `
		INSERT INTO deployments (` + deploymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Symbol, d.Standard, d.ChainID, d.ChainName, d.Address, d.TxHash, d.DeployerAddress,
		int64(d.BlockNumber), int64(d.GasUsed), cost, d.BytecodeMatch, warnings, d.CreatedAt,
	)
	if isPgUnique(err) {
		return ErrAlreadyExists
	}
	return err
}

// pgColumns casts columns Postgres would otherwise return as UUID and NUMERIC.
const pgColumns = `id::text, name, symbol, standard, chain_id, chain_name, address, tx_hash, deployer_address, block_number, gas_used, cost_wei::text, bytecode_match, warnings, created_at`

// GetDeployment retrieves a deployment by chain and address
func (s *PostgresStore) GetDeployment(ctx context.Context, chainID int64, address string) (*Deployment, error) {
	query := `SELECT ` + pgColumns + ` FROM deployments WHERE chain_id = $1 AND LOWER(address) = LOWER($2)`
	d, err := scanPgDeployment(s.db.QueryRowContext(ctx, query, chainID, address))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDeployments lists deployments, newest first
func (s *PostgresStore) ListDeployments(ctx context.Context, filter DeploymentFilter, pagination PaginationParams) (*PaginatedResult[Deployment], error) {
	query, args, err := listQuery(pgColumns, filter, pagination,
		func(n int) string { return "$" + strconv.Itoa(n) },
		func(t time.Time) any { return t },
	)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deployments []Deployment
	for rows.Next() {
		d, err := scanPgDeployment(rows)
		if err != nil {
			return nil, err
		}
		deployments = append(deployments, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return page(deployments, normalizeLimit(pagination.Limit)), nil
}

func scanPgDeployment(row rowScanner) (*Deployment, error) {
	var (
		d          Deployment
		block, gas int64
		warnings   []byte
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.Symbol, &d.Standard, &d.ChainID, &d.ChainName, &d.Address, &d.TxHash, &d.DeployerAddress,
		&block, &gas, &d.CostWei, &d.BytecodeMatch, &warnings, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.BlockNumber = uint64(block)
	d.GasUsed = uint64(gas)
	d.Warnings = decodeWarnings(warnings)
	d.CreatedAt = d.CreatedAt.UTC()
	return &d, nil
}

func isPgUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// CreateAPIKey creates a new API key
func (s *PostgresStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	key := generateAPIKey()
	hash := hashAPIKey(key)
	id := generateID()
	_, err := s.db.ExecContext(ctx, "INSERT INTO api_keys (id, key_hash, name) VALUES ($1, $2, $3)", id, hash, name)
	if err != nil {
		return "", err
	}
	return key, nil
}

// ValidateAPIKey validates an API key
func (s *PostgresStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)
	var ak APIKey
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, "SELECT id::text, key_hash, name, created_at FROM api_keys WHERE key_hash = $1 AND revoked_at IS NULL", hash).Scan(
		&ak.ID, &ak.KeyHash, &ak.Name, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ak.CreatedAt = createdAt.Format("2006-01-02 15:04:05")
	_, _ = s.db.ExecContext(ctx, "UPDATE api_keys SET last_used_at = NOW() WHERE id = $1", ak.ID)
	return &ak, nil
}

// ListAPIKeys lists all active API keys
func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id::text, name, created_at, last_used_at FROM api_keys WHERE revoked_at IS NULL ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		var createdAt time.Time
		var lastUsed sql.NullTime
		if err := rows.Scan(&k.ID, &k.Name, &createdAt, &lastUsed); err != nil {
			return nil, err
		}
		k.CreatedAt = createdAt.Format("2006-01-02 15:04:05")
		if lastUsed.Valid {
			k.LastUsedAt = lastUsed.Time.Format("2006-01-02 15:04:05")
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// RevokeAPIKey revokes an API key
func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE api_keys SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
