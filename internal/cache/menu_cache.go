package cache

import (
	"context"
	"menuengine/internal/model"
	"sync"
	"time"
)

// MenuCache stores resolved menus keyed by place id. Entries are only served
// before their expiry; an expired entry is evicted when read.
type MenuCache interface {
	Get(ctx context.Context, placeID string) (*model.MenuDocument, error)
	Put(ctx context.Context, placeID string, menu *model.MenuDocument, ttl time.Duration) error
}

// MemoryMenuCache is a process-local MenuCache. There is no size bound;
// cardinality is limited by the places a session views.
type MemoryMenuCache struct {
	mu      sync.RWMutex
	entries map[string]model.CacheEntry
	now     func() time.Time
}

// NewMemoryMenuCache creates an empty in-memory menu cache
func NewMemoryMenuCache() *MemoryMenuCache {
	return &MemoryMenuCache{
		entries: make(map[string]model.CacheEntry),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for expiry checks
func (c *MemoryMenuCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *MemoryMenuCache) Get(ctx context.Context, placeID string) (*model.MenuDocument, error) {
	c.mu.RLock()
	entry, ok := c.entries[placeID]
	now := c.now()
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if entry.Live(now) {
		return entry.Menu.Clone(), nil
	}

	c.mu.Lock()
	// A concurrent Put may have replaced the entry since the read lock was released
	if current, ok := c.entries[placeID]; ok && !current.Live(c.now()) {
		delete(c.entries, placeID)
	}
	c.mu.Unlock()
	return nil, nil
}

func (c *MemoryMenuCache) Put(ctx context.Context, placeID string, menu *model.MenuDocument, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[placeID] = model.CacheEntry{
		Menu:      menu.Clone(),
		ExpiresAt: c.now().Add(ttl),
	}
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryMenuCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
