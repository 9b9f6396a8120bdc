package cache

import (
	"context"
	"sync"
	"time"
)

var _ Manager = (*Memory)(nil)

type memEntry struct {
	entry     *Entry
	createdAt time.Time
	expiresAt time.Time
}

// Memory is a bounded in-process tier with TTL expiry. The oldest entry is
// evicted when the cache is full.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memEntry
	maxSize int
	ttl     time.Duration

	hits, misses, evictions int64
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithMaxSize sets the maximum number of entries.
func WithMaxSize(n int) MemoryOption {
	return func(c *Memory) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// WithTTL sets the entry lifetime. Zero keeps entries until evicted.
func WithTTL(d time.Duration) MemoryOption {
	return func(c *Memory) { c.ttl = d }
}

// NewMemory creates an empty Memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	c := &Memory{
		entries: make(map[string]*memEntry),
		maxSize: 1000,
		ttl:     time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements Manager.
func (c *Memory) Get(ctx context.Context, key Key) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := key.Hash()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[hash]
	if ok && !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, hash)
		ok = false
	}
	if !ok {
		c.misses++
		return nil, ErrCacheMiss
	}
	c.hits++
	return e.entry, nil
}

// Put implements Manager.
func (c *Memory) Put(ctx context.Context, entry *Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hash, err := entry.Key.Hash()
	if err != nil {
		return err
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[hash]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	e := &memEntry{entry: entry, createdAt: now}
	if c.ttl > 0 {
		e.expiresAt = now.Add(c.ttl)
	}
	c.entries[hash] = e
	return nil
}

// Delete implements Manager.
func (c *Memory) Delete(ctx context.Context, key Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	hash, err := key.Hash()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, hash)
	return nil
}

// Stats holds cache statistics.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Evictions int64   `json:"evictions"`
}

// Stats returns a snapshot of the cache counters.
func (c *Memory) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// evictOldest must be called with the lock held.
func (c *Memory) evictOldest() {
	var oldest string
	var oldestTime time.Time
	for k, e := range c.entries {
		if oldest == "" || e.createdAt.Before(oldestTime) {
			oldest, oldestTime = k, e.createdAt
		}
	}
	if oldest != "" {
		delete(c.entries, oldest)
		c.evictions++
	}
}
