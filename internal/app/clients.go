package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/gamerec-backend/internal/config"
	"github.com/yungbote/gamerec-backend/internal/encoder"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
)

// Clients holds external connections owned by the app and closed with it.
type Clients struct {
	Redis  *goredis.Client
	Badger *encoder.BadgerCache
}

// QueryCache is the configured query-vector cache, or nil when caching is off.
func (c Clients) QueryCache(ttl time.Duration) encoder.Cache {
	switch {
	case c.Redis != nil:
		return encoder.NewRedisCache(c.Redis, ttl)
	case c.Badger != nil:
		return c.Badger
	default:
		return nil
	}
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Badger != nil {
		_ = c.Badger.Close()
	}
}

func wireClients(ctx context.Context, log *logger.Logger, cfg config.CacheConfig) (Clients, error) {
	log.Info("Wiring clients...", "cache_backend", cfg.Backend)

	switch strings.TrimSpace(strings.ToLower(cfg.Backend)) {
	case "", config.CacheBackendNone:
		return Clients{}, nil

	case config.CacheBackendRedis:
		addr := strings.TrimSpace(cfg.RedisAddr)
		if addr == "" {
			return Clients{}, fmt.Errorf("cache.redis_addr is required for the redis cache")
		}
		rdb := goredis.NewClient(&goredis.Options{
			Addr:        addr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("redis ping: %w", err)
		}
		return Clients{Redis: rdb}, nil

	case config.CacheBackendBadger:
		bc, err := encoder.OpenBadger(strings.TrimSpace(cfg.BadgerDir), cfg.TTL)
		if err != nil {
			return Clients{}, fmt.Errorf("open badger cache: %w", err)
		}
		return Clients{Badger: bc}, nil

	default:
		return Clients{}, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}
