package idempotency

import (
	"context"
	"time"

	allocationdomain "github.com/railzwaylabs/aligntrack/internal/allocation/domain"
	"github.com/railzwaylabs/aligntrack/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const (
	keyPrefix  = "aligntrack:idempotency:"
	defaultTTL = 24 * time.Hour
)

var Module = fx.Module("idempotency",
	fx.Provide(Provide),
)

// Guard holds a short-lived redis lock per idempotency key so that two
// concurrent retries cannot both reach the database.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGuard(client *redis.Client, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Guard{client: client, ttl: ttl}
}

// Provide yields a nil guard when redis is disabled.
func Provide(client *redis.Client, cfg config.Config) allocationdomain.RequestGuard {
	if client == nil {
		return nil
	}
	return NewGuard(client, cfg.Redis.IdempotencyTTL)
}

func (g *Guard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, keyPrefix+key, "1", g.ttl).Result()
}

func (g *Guard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, keyPrefix+key).Err()
}
