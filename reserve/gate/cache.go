package gate

import (
	"context"
	"time"

	"github.com/egimarket/reserve/lib/logging"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultCacheTTL is how long a gate answer is reused. Availability
	// only flips from reservable to not reservable at mint time, so a
	// short positive cache is safe.
	DefaultCacheTTL = 5 * time.Second
)

// Cache decorates a Gate with a short-lived redis cache. Redis failures are
// logged and fall through to the underlying gate.
type Cache struct {
	Gate  Gate
	Redis *redis.Client
	TTL   time.Duration
}

// NewCache constructs a caching decorator around the provided gate.
func NewCache(
	g Gate,
	addr string,
	ttl time.Duration,
) *Cache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		Gate:  g,
		Redis: redis.NewClient(&redis.Options{Addr: addr}),
		TTL:   ttl,
	}
}

func cacheKey(asset string) string {
	return "gate:reservable:" + asset
}

// IsReservable implements Gate.
func (c *Cache) IsReservable(
	ctx context.Context,
	asset string,
) (bool, error) {
	cached, err := c.Redis.Get(ctx, cacheKey(asset)).Result()
	switch {
	case err == nil:
		return cached == "true", nil
	case err != redis.Nil:
		logging.Logf(ctx,
			"Gate cache read error: asset=%s error=%q", asset, err.Error())
	}

	reservable, err := c.Gate.IsReservable(ctx, asset)
	if err != nil {
		return false, err
	}

	value := "false"
	if reservable {
		value = "true"
	}
	if err := c.Redis.Set(
		ctx, cacheKey(asset), value, c.TTL).Err(); err != nil {
		logging.Logf(ctx,
			"Gate cache write error: asset=%s error=%q", asset, err.Error())
	}

	return reservable, nil
}
