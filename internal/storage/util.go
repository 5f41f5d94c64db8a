package storage

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// generateID generates a new UUID
func generateID() string {
	return uuid.New().String()
}

// generateAPIKey generates a new API key
func generateAPIKey() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return fmt.Sprintf("mf_key_%s", hex.EncodeToString(b))
}

// hashAPIKey hashes an API key for storage
func hashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// Cursors are opaque to clients: base64 of "<created_at RFC3339Nano>|<id>".
// Listing orders by (created_at, id) descending.
func encodeCursor(d Deployment) string {
	raw := d.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + d.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", ErrInvalidCursor
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return time.Time{}, "", ErrInvalidCursor
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, "", ErrInvalidCursor
	}
	return t, id, nil
}

// page trims the extra row fetched to detect another page.
func page(rows []Deployment, limit int) *PaginatedResult[Deployment] {
	result := &PaginatedResult[Deployment]{Data: rows}
	if len(rows) > limit {
		result.Data = rows[:limit]
		result.HasMore = true
		result.NextCursor = encodeCursor(result.Data[limit-1])
	}
	return result
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > 100:
		return 100
	}
	return limit
}

func encodeWarnings(w []string) (string, error) {
	if len(w) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encoding warnings: %w", err)
	}
	return string(b), nil
}

func decodeWarnings(raw []byte) []string {
	var w []string
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &w); err != nil || len(w) == 0 {
		return nil
	}
	return w
}

// listQuery builds the filtered, keyset-paginated deployments query.
// placeholder renders the n-th (1-based) bind parameter and timeArg
// converts the cursor timestamp to the driver's column representation.
func listQuery(columns string, filter DeploymentFilter, pagination PaginationParams, placeholder func(n int) string, timeArg func(time.Time) any) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.ChainID != 0 {
		where = append(where, "chain_id = "+bind(filter.ChainID))
	}
	if filter.Deployer != "" {
		where = append(where, "LOWER(deployer_address) = "+bind(strings.ToLower(filter.Deployer)))
	}
	if filter.Standard != "" {
		where = append(where, "standard = "+bind(strings.ToUpper(filter.Standard)))
	}
	if pagination.Cursor != "" {
		t, id, err := decodeCursor(pagination.Cursor)
		if err != nil {
			return "", nil, err
		}
		where = append(where, fmt.Sprintf("(created_at < %s OR (created_at = %s AND id < %s))",
			bind(timeArg(t)), bind(timeArg(t)), bind(id)))
	}

	q := "SELECT " + columns + " FROM deployments"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT " + bind(normalizeLimit(pagination.Limit)+1)
	return q, args, nil
}
