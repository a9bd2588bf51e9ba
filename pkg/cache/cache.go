// Package cache provides layout-result caching so repeated layout
// requests for an unchanged graph skip the external solver entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// TTLs per cached artifact kind. Layouts are pure functions of their
// inputs, so the TTL mostly bounds disk usage rather than staleness.
const (
	TTLLayout = 24 * time.Hour
	TTLModel  = 24 * time.Hour
)

// Cache stores opaque byte blobs under string keys with an expiry.
type Cache interface {
	// Get returns the cached data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}

// Keyer builds cache keys. Separating key construction from storage lets
// callers namespace keys without caring about the backing store.
type Keyer interface {
	// LayoutKey identifies one positioned layout: the graph content, the
	// active subset, and the tuning that shaped it.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ModelKey identifies one node's render model within a graph.
	ModelKey(graphHash, txid string) string
}

// LayoutKeyOpts are the layout inputs that change the result for the same
// graph content.
type LayoutKeyOpts struct {
	ActiveHash       string  `json:"active_hash"`
	ExactSearchLimit int     `json:"exact_search_limit"`
	MinGap           float64 `json:"min_gap"`
	RankSep          float64 `json:"rank_sep"`
	NodeSep          float64 `json:"node_sep"`
}

// DefaultKeyer is the standard key builder.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key builder.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ModelKey implements Keyer.
func (k *DefaultKeyer) ModelKey(graphHash, txid string) string {
	return hashKey("model", graphHash, txid)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
