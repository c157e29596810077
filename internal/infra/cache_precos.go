package infra

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const prefixoPreco = "preco:"

// CachePrecos stores serialized price lookups by barcode.
type CachePrecos interface {
	Obter(ctx context.Context, codigoBarras string) ([]byte, bool)
	Guardar(ctx context.Context, codigoBarras string, payload []byte)
	Invalidar(ctx context.Context, codigosBarras ...string) error
}

type redisCachePrecos struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCachePrecos returns a Redis cache; nil rdb disables caching.
func NewCachePrecos(rdb *redis.Client, ttl time.Duration) CachePrecos {
	if rdb == nil {
		return semCache{}
	}
	return &redisCachePrecos{rdb: rdb, ttl: ttl}
}

func (c *redisCachePrecos) Obter(ctx context.Context, codigoBarras string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, prefixoPreco+codigoBarras).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *redisCachePrecos) Guardar(ctx context.Context, codigoBarras string, payload []byte) {
	c.rdb.Set(ctx, prefixoPreco+codigoBarras, payload, c.ttl)
}

func (c *redisCachePrecos) Invalidar(ctx context.Context, codigosBarras ...string) error {
	if len(codigosBarras) == 0 {
		return nil
	}
	keys := make([]string, 0, len(codigosBarras))
	for _, cb := range codigosBarras {
		keys = append(keys, prefixoPreco+cb)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

type semCache struct{}

func (semCache) Obter(context.Context, string) ([]byte, bool) { return nil, false }
func (semCache) Guardar(context.Context, string, []byte) {}
func (semCache) Invalidar(context.Context, ...string) error { return nil }
