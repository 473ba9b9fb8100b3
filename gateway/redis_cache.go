package gateway

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implementa Cache sobre Redis, para quando mais de uma
// instância do storefront compartilha as mesmas views reconciliadas.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCache conecta ao Redis e devolve o cache compartilhado
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client:    client,
		keyPrefix: "storefront:query:",
		ttl:       ttl,
	}, nil
}

// NewRedisCacheWithClient usa um cliente Redis já existente (testes, ou
// compartilhamento do cliente entre componentes)
func NewRedisCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "storefront:query:"
	}
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get lê uma consulta cacheada. Erros do Redis viram miss: o chamador
// reconsulta o ledger e o cache se recompõe na escrita seguinte.
func (c *RedisCache) Get(ctx context.Context, key QueryKey) ([]byte, bool) {
	value, err := c.client.Get(ctx, c.keyPrefix+string(key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("⚠️ Redis cache read failed for %s: %v", key, err)
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key QueryKey, value []byte) {
	if err := c.client.Set(ctx, c.keyPrefix+string(key), value, c.ttl).Err(); err != nil {
		log.Printf("⚠️ Redis cache write failed for %s: %v", key, err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, keys ...QueryKey) {
	if len(keys) == 0 {
		return
	}
	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = c.keyPrefix + string(key)
	}
	if err := c.client.Del(ctx, fullKeys...).Err(); err != nil {
		log.Printf("⚠️ Redis cache invalidation failed: %v", err)
	}
}
