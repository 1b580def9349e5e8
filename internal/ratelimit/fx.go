package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/bondexsafety/backoffice/internal/config"
)

// Module provides the redis-backed token bucket. When REDIS_ADDR is not
// set the bucket is nil and callers fall back to in-process limiting.
var Module = fx.Module("ratelimit",
	fx.Provide(func(cfg config.Config, log *zap.Logger) *TokenBucket {
		if cfg.RedisAddr == "" {
			log.Named("ratelimit").Info("redis not configured, using in-process limits only")
			return nil
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return NewTokenBucket(client)
	}),
)
