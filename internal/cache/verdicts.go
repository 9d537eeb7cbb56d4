package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hetulpatel/pairwatch/internal/report"
)

// VerdictCache stores TRUSTWORTHY/UNTRUSTWORTHY decisions by chain + pair address
// so other processes can look them up.
type VerdictCache interface {
	Get(ctx context.Context, chain, pairAddress string) (bool, bool, error)
	Set(ctx context.Context, chain, pairAddress string, trustworthy bool) error
	Ping(ctx context.Context) error
	Close() error
}

type redisVerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisVerdictCache(addr, password string, db int, ttl time.Duration, prefix string) (VerdictCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return newRedisVerdictCache(client, ttl, prefix), nil
}

func newRedisVerdictCache(client *redis.Client, ttl time.Duration, prefix string) *redisVerdictCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if prefix == "" {
		prefix = "pair_verdict"
	}
	return &redisVerdictCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *redisVerdictCache) key(chain, pairAddress string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, chain, pairAddress)
}

func (c *redisVerdictCache) Get(ctx context.Context, chain, pairAddress string) (bool, bool, error) {
	if c == nil || c.client == nil {
		return false, false, nil
	}
	val, err := c.client.Get(ctx, c.key(chain, pairAddress)).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return val == "1", true, nil
}

func (c *redisVerdictCache) Set(ctx context.Context, chain, pairAddress string, trustworthy bool) error {
	if c == nil || c.client == nil {
		return nil
	}
	value := "0"
	if trustworthy {
		value = "1"
	}
	return c.client.Set(ctx, c.key(chain, pairAddress), value, c.ttl).Err()
}

func (c *redisVerdictCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisVerdictCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Sink records each report's verdict in the cache.
type Sink struct {
	cache VerdictCache
}

func NewSink(cache VerdictCache) *Sink {
	return &Sink{cache: cache}
}

func (s *Sink) Name() string {
	return "redis"
}

func (s *Sink) Emit(ctx context.Context, reports []report.Report) error {
	for _, r := range reports {
		if err := s.cache.Set(ctx, string(r.Snapshot.Chain), r.Snapshot.PairAddress, r.Verdict.Trustworthy); err != nil {
			return fmt.Errorf("cache verdict %s: %w", r.Snapshot.PairAddress, err)
		}
	}
	return nil
}
