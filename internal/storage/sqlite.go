package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteTime is fixed width so that created_at sorts as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

const deploymentColumns = `id, name, symbol, standard, chain_id, chain_name, address, tx_hash, deployer_address, block_number, gas_used, cost_wei, bytecode_match, warnings, created_at`

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store. ":memory:" opens an in-memory
// database.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	schema := `
	-- Deployments
	CREATE TABLE IF NOT EXISTS deployments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		symbol TEXT NOT NULL,
		standard TEXT NOT NULL,
		chain_id INTEGER NOT NULL,
		chain_name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL,
		tx_hash TEXT NOT NULL,
		deployer_address TEXT NOT NULL,
		block_number INTEGER NOT NULL DEFAULT 0,
		gas_used INTEGER NOT NULL DEFAULT 0,
		cost_wei TEXT NOT NULL DEFAULT '0',
		bytecode_match TEXT NOT NULL DEFAULT '',
		warnings TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		UNIQUE(chain_id, address)
	);

	-- API keys
	CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TEXT DEFAULT (datetime('now')),
		last_used_at TEXT,
		revoked_at TEXT
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_deployments_created ON deployments(created_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_deployments_deployer ON deployments(deployer_address);
	`

	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	s.logger.Info("database migrations complete")
	return nil
}

// RecordDeployment records a deployment
func (s *SQLiteStore) RecordDeployment(ctx context.Context, d *Deployment) error {
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

	query := `
		INSERT INTO deployments (` + deploymentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		d.ID, d.Name, d.Symbol, d.Standard, d.ChainID, d.ChainName, d.Address, d.TxHash, d.DeployerAddress,
		int64(d.BlockNumber), int64(d.GasUsed), d.CostWei, d.BytecodeMatch, warnings, d.CreatedAt.UTC().Format(sqliteTime),
	)
	if isSQLiteUnique(err) {
		return ErrAlreadyExists
	}
	return err
}

// GetDeployment retrieves a deployment by chain and address
func (s *SQLiteStore) GetDeployment(ctx context.Context, chainID int64, address string) (*Deployment, error) {
	query := `SELECT ` + deploymentColumns + ` FROM deployments WHERE chain_id = ? AND LOWER(address) = LOWER(?)`
	d, err := scanSQLiteDeployment(s.db.QueryRowContext(ctx, query, chainID, address))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListDeployments lists deployments, newest first
func (s *SQLiteStore) ListDeployments(ctx context.Context, filter DeploymentFilter, pagination PaginationParams) (*PaginatedResult[Deployment], error) {
	query, args, err := listQuery(deploymentColumns, filter, pagination,
		func(int) string { return "?" },
		func(t time.Time) any { return t.UTC().Format(sqliteTime) },
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
		d, err := scanSQLiteDeployment(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDeployment(row rowScanner) (*Deployment, error) {
	var (
		d                 Deployment
		block, gas        int64
		warnings, created string
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.Symbol, &d.Standard, &d.ChainID, &d.ChainName, &d.Address, &d.TxHash, &d.DeployerAddress,
		&block, &gas, &d.CostWei, &d.BytecodeMatch, &warnings, &created,
	)
	if err != nil {
		return nil, err
	}
	d.BlockNumber = uint64(block)
	d.GasUsed = uint64(gas)
	d.Warnings = decodeWarnings([]byte(warnings))
	if t, err := time.Parse(sqliteTime, created); err == nil {
		d.CreatedAt = t
	}
	return &d, nil
}

func isSQLiteUnique(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// CreateAPIKey creates a new API key
func (s *SQLiteStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	key := generateAPIKey()
	hash := hashAPIKey(key)
	id := generateID()
	_, err := s.db.ExecContext(ctx, "INSERT INTO api_keys (id, key_hash, name, created_at) VALUES (?, ?, ?, datetime('now'))", id, hash, name)
	if err != nil {
		return "", err
	}
	return key, nil
}

// ValidateAPIKey validates an API key
func (s *SQLiteStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)
	var ak APIKey
	err := s.db.QueryRowContext(ctx, "SELECT id, key_hash, name, created_at FROM api_keys WHERE key_hash = ? AND revoked_at IS NULL", hash).Scan(
		&ak.ID, &ak.KeyHash, &ak.Name, &ak.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	_, _ = s.db.ExecContext(ctx, "UPDATE api_keys SET last_used_at = datetime('now') WHERE id = ?", ak.ID)
	return &ak, nil
}

// ListAPIKeys lists all active API keys
func (s *SQLiteStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at, last_used_at FROM api_keys WHERE revoked_at IS NULL ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		var lastUsed sql.NullString
		if err := rows.Scan(&k.ID, &k.Name, &k.CreatedAt, &lastUsed); err != nil {
			return nil, err
		}
		if lastUsed.Valid {
			k.LastUsedAt = lastUsed.String
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// RevokeAPIKey revokes an API key
func (s *SQLiteStore) RevokeAPIKey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE api_keys SET revoked_at = datetime('now') WHERE id = ? AND revoked_at IS NULL", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
