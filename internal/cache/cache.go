// Package cache memoizes clause simplifications.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache provides simplification caching
type Cache interface {
	// GetSimplification retrieves a cached simplification by key.
	// Returns nil if not found
	GetSimplification(ctx context.Context, key string) (*Simplification, error)

	// SetSimplification stores a simplification with TTL
	SetSimplification(ctx context.Context, key string, entry *Simplification, ttl time.Duration) error

	// Close closes the cache connection
	Close() error
}

// Simplification is a successful plain-language rewrite of one clause.
type Simplification struct {
	Text     string    `json:"text"`
	Model    string    `json:"model"`
	StoredAt time.Time `json:"stored_at"`
}

// SimplificationKey derives the cache key for clause under model.
func SimplificationKey(model, clause string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(clause))
	return hex.EncodeToString(h.Sum(nil))
}
