// Package pagecache stores rendered pages keyed by canonical path.
//
// Pages in this application render identically for every request to the same
// path, so the HTML produced for a path can be replayed until the entry's
// lifetime expires.
package pagecache

import (
	"context"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

// Config controls cache sizing and expiry.
type Config struct {
	// TTL is how long a rendered page stays valid.
	TTL time.Duration
	// MaxSizeMB is the hard memory limit of the cache.
	MaxSizeMB int
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Cache is a rendered page cache. A nil *Cache is valid and caches nothing.
type Cache struct {
	bc *bigcache.BigCache
}

// New creates a Cache. The cleanup goroutine started by bigcache stops when
// ctx is cancelled or Close is called.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("pagecache: ttl must be positive, got %v", cfg.TTL)
	}
	if cfg.MaxSizeMB <= 0 {
		return nil, fmt.Errorf("pagecache: max size must be positive, got %d", cfg.MaxSizeMB)
	}

	bcCfg := bigcache.DefaultConfig(cfg.TTL)
	bcCfg.Shards = 64
	bcCfg.CleanWindow = cleanWindow(cfg.TTL)
	bcCfg.HardMaxCacheSize = cfg.MaxSizeMB
	bcCfg.MaxEntriesInWindow = 1024
	bcCfg.MaxEntrySize = 16 * 1024
	bcCfg.Verbose = false

	bc, err := bigcache.New(ctx, bcCfg)
	if err != nil {
		return nil, fmt.Errorf("pagecache: create bigcache: %w", err)
	}
	return &Cache{bc: bc}, nil
}

// cleanWindow sweeps expired entries twice per TTL, at most once a second.
func cleanWindow(ttl time.Duration) time.Duration {
	w := ttl / 2
	if w < time.Second {
		w = time.Second
	}
	return w
}

// Get returns the cached page for path.
func (c *Cache) Get(path string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	body, err := c.bc.Get(path)
	if err != nil {
		return nil, false
	}
	return body, true
}

// Set stores a rendered page for path.
func (c *Cache) Set(path string, body []byte) error {
	if c == nil {
		return nil
	}
	return c.bc.Set(path, body)
}

// Stats returns the current cache counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	s := c.bc.Stats()
	return Stats{Entries: c.bc.Len(), Hits: s.Hits, Misses: s.Misses}
}

// Close releases the cache.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.bc.Close()
}
