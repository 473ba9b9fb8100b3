package gateway

import (
	"context"
	"sync"
	"time"
)

// Cache guarda resultados de consulta por chave até serem invalidados.
// Um miss nunca é erro: o chamador reemite a leitura contra o ledger.
type Cache interface {
	Get(ctx context.Context, key QueryKey) ([]byte, bool)
	Set(ctx context.Context, key QueryKey, value []byte)
	Invalidate(ctx context.Context, keys ...QueryKey)
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache implementa Cache em memória, adequado para uma instância
// única do cliente. TTL zero desabilita a expiração por tempo.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[QueryKey]memoryEntry
	ttl     time.Duration
}

// NewMemoryCache cria o cache em memória com o TTL informado
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[QueryKey]memoryEntry),
		ttl:     ttl,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key QueryKey) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.Invalidate(ctx, key)
		return nil, false
	}
	return entry.value, true
}

func (c *MemoryCache) Set(ctx context.Context, key QueryKey, value []byte) {
	entry := memoryEntry{value: value}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate(ctx context.Context, keys ...QueryKey) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
}
