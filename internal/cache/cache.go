package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/argmap/internal/model"
)

// keyPrefix versions the key space; bump it when the report layout changes
const keyPrefix = "argmap:v1:"

// Cache stores serialized evaluation reports
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from the canonical document bytes and every
// engine setting that influences the computed costs
func Key(document []byte, settings ...string) string {
	h := sha256.New()
	h.Write(document)
	for _, s := range settings {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// New builds the cache described by cfg.
// A disabled cache, or one without a directory, never stores anything on disk.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Nop{}
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, cleanupInterval(cfg.MemoryTTL))
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 10 * time.Minute
	}
	return ttl
}

// Nop is a cache that never hits
type Nop struct{}

func (Nop) Get(string) ([]byte, bool)               { return nil, false }
func (Nop) Set(string, []byte, time.Duration) error { return nil }
func (Nop) Delete(string) error                     { return nil }
func (Nop) Clear() error                            { return nil }
