package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/pendergraft/mintfactory/internal/storage"
)

// StaticKeys validates keys supplied through configuration rather than the
// database. Keys are compared by hash in constant time.
type StaticKeys struct {
	hashes [][]byte
}

// NewStaticKeys builds a validator for keys. Empty entries are ignored.
func NewStaticKeys(keys []string) *StaticKeys {
	s := &StaticKeys{}
	for _, k := range keys {
		if k == "" {
			continue
		}
		h := sha256.Sum256([]byte(k))
		s.hashes = append(s.hashes, h[:])
	}
	return s
}

// Len reports how many keys are configured.
func (s *StaticKeys) Len() int { return len(s.hashes) }

func (s *StaticKeys) ValidateAPIKey(ctx context.Context, key string) (*storage.APIKey, error) {
	h := sha256.Sum256([]byte(key))
	for _, want := range s.hashes {
		if subtle.ConstantTimeCompare(h[:], want) == 1 {
			return &storage.APIKey{
				ID:      "static",
				Name:    "configured",
				KeyHash: hex.EncodeToString(h[:]),
			}, nil
		}
	}
	return nil, storage.ErrNotFound
}

// Chain tries each validator in order and returns the first match.
type Chain []Validator

func (c Chain) ValidateAPIKey(ctx context.Context, key string) (*storage.APIKey, error) {
	for _, v := range c {
		if v == nil {
			continue
		}
		if k, err := v.ValidateAPIKey(ctx, key); err == nil && k != nil {
			return k, nil
		}
	}
	return nil, storage.ErrNotFound
}
