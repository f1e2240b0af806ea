// Package cache memoizes OCR responses at the host boundary. The analysis
// core itself holds no cache; identical page bytes map to identical text,
// so caching here cannot affect determinism.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// KeyForBytes generates a cache key from raw content (page image or
// document bytes). Versioned so a format change invalidates old entries.
func KeyForBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return "recordlens:v1:" + hex.EncodeToString(hash[:])
}
