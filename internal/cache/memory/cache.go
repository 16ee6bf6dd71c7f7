package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/serpclient/internal/cache"
	"github.com/kitbuilder587/serpclient/internal/domain"
)

const DefaultMaxEntries = 1000

type entry struct {
	res       *domain.Result
	expiresAt time.Time
}

// Cache - in-memory кеш результатов с TTL и ограничением по числу записей
type Cache struct {
	mu         sync.RWMutex
	items      map[string]entry
	maxEntries int
	stopChan   chan struct{}
	stopped    bool
}

var _ cache.Cache = (*Cache)(nil)

func New(maxEntries int) *Cache {
	return NewWithContext(context.Background(), maxEntries)
}

func NewWithContext(ctx context.Context, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &Cache{
		items:      make(map[string]entry),
		maxEntries: maxEntries,
		stopChan:   make(chan struct{}),
	}
	go c.cleanup(ctx)
	return c
}

func (c *Cache) Get(key string) (*domain.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.items[key]
	if !ok || time.Now().After(it.expiresAt) {
		return nil, false
	}
	return it.res.Clone(), true
}

func (c *Cache) Set(key string, res *domain.Result, ttl time.Duration) {
	if ttl <= 0 || res == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxEntries {
		c.evictLocked()
	}
	c.items[key] = entry{res: res.Clone(), expiresAt: time.Now().Add(ttl)}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.stopChan)
	}
	c.mu.Unlock()
}

// evictLocked выкидывает просроченные, а если таких нет - ту, что истекает раньше всех
func (c *Cache) evictLocked() {
	now := time.Now()
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, k)
			continue
		}
		if oldestKey == "" || it.expiresAt.Before(oldest) {
			oldestKey, oldest = k, it.expiresAt
		}
	}
	if len(c.items) >= c.maxEntries && oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

// XXX: интервал захардкожен
func (c *Cache) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, k)
		}
	}
}
