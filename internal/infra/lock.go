package infra

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockOcupado is returned when another process holds the lock past the
// retry window.
var ErrLockOcupado = errors.New("recurso em processamento por outra requisição")

// Locker serializes work on a named resource across server instances.
type Locker interface {
	// Executar runs fn while holding the lock for key.
	Executar(ctx context.Context, key string, fn func() error) error
}

type redisLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedisLocker returns a Locker backed by Redis. A nil rdb yields a locker
// that runs fn directly (single-instance deployments and tests).
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) Locker {
	if rdb == nil {
		return noopLocker{}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisLocker{client: redislock.New(rdb), ttl: ttl}
}

func (l *redisLocker) Executar(ctx context.Context, key string, fn func() error) error {
	lock, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(200*time.Millisecond), 25),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return ErrLockOcupado
	}
	if err != nil {
		return err
	}
	defer func() {
		// Released with a fresh context so a cancelled request still frees the key.
		_ = lock.Release(context.Background())
	}()
	return fn()
}

type noopLocker struct{}

func (noopLocker) Executar(_ context.Context, _ string, fn func() error) error { return fn() }
