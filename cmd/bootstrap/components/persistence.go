package components

import (
	"gin-clean-starter/internal/infra/breaker"
	"gin-clean-starter/internal/infra/cache"
	"gin-clean-starter/internal/infra/kv"
	"gin-clean-starter/internal/infra/queue"
	"gin-clean-starter/internal/infra/ratelimit"
	"gin-clean-starter/internal/infra/readstore"
	"gin-clean-starter/internal/infra/store"
	"gin-clean-starter/internal/pkg/config"
	"gin-clean-starter/internal/usecase/queries"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// PersistenceModule wires the Postgres-backed Persistent Store Gateway
// (C1) and the Redis-backed KV Gateway (C2) plus everything built
// directly on top of it: Cache (C5), Circuit Breaker (C3), Rate Limiter
// (C4), and the Claim Queue (C6).
var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		store.NewGateway,
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
		),
		fx.Annotate(
			NewRedisCommandClient,
			fx.ResultTags(`name:"redisCmd"`),
		),
		fx.Annotate(
			NewRedisPubSubClient,
			fx.ResultTags(`name:"redisPubSub"`),
		),
		fx.Annotate(
			NewKVGateway,
			fx.ParamTags(``, `name:"redisCmd"`, `name:"redisPubSub"`),
		),
		cache.New,
		NewBreaker,
		ratelimit.New,
		queue.New,
	),
)

// NewRedisCommandClient is the KV Gateway's command connection: rate
// limiter, cache, and queue traffic per spec.md §4.2.
func NewRedisCommandClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.KV.Host + ":" + cfg.KV.Port,
		Password: cfg.KV.Password,
		DB:       cfg.KV.DB,
	})
}

// NewRedisPubSubClient is a second, dedicated connection so pub/sub
// traffic never competes with pipelined commands (spec.md §4.2).
func NewRedisPubSubClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.KV.Host + ":" + cfg.KV.Port,
		Password: cfg.KV.Password,
		DB:       cfg.KV.DB,
	})
}

func NewKVGateway(cfg config.Config, cmd, pubsub *redis.Client) *kv.Gateway {
	return kv.NewGateway(cmd, pubsub, cfg.KV.CommandTimeout)
}

func NewBreaker(cfg config.Config) *breaker.Breaker {
	return breaker.New(breaker.Config{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
		CallTimeout:      cfg.Breaker.CallTimeout,
		OpenDuration:     cfg.Breaker.OpenDuration,
	})
}
