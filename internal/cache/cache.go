// Package cache provides a two-tier (memory + disk) byte cache used for
// embedding vectors and fetched page bodies.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/provenia/provenia/internal/model"
)

// Cache is the byte-level cache contract shared by all tiers
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// EmbeddingKey derives the cache key for one embedded text. The model name
// is part of the key: switching embedding models must never serve stale
// vectors.
func EmbeddingKey(embeddingModel, text string) string {
	hash := sha256.Sum256([]byte(embeddingModel + "\x00" + text))
	return "provenia:emb:v1:" + hex.EncodeToString(hash[:])
}

// FetchKey derives the cache key for a fetched URL body
func FetchKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "provenia:fetch:v1:" + hex.EncodeToString(hash[:])
}

// FromConfig builds the cache the configuration asks for: nil when caching
// is disabled, memory-only when no directory is set, layered otherwise.
func FromConfig(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.TTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.TTL, cfg.Dir, cfg.TTL)
}
