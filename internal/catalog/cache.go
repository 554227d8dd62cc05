package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/mock_cart/internal/domain"
)

// CachedLookup keeps product display data in Redis in front of another Lookup.
// Cache failures are logged and the call falls through to the source.
type CachedLookup struct {
	next    Lookup
	client  *redis.Client
	baseTTL time.Duration
	log     *slog.Logger
}

func NewCachedLookup(next Lookup, client *redis.Client, ttl time.Duration, log *slog.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedLookup{next: next, client: client, baseTTL: ttl, log: log}
}

func (c *CachedLookup) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	key := cacheKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p domain.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
		c.log.Warn("catalog_cache_decode_error", "key", key, "error", err)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("catalog_cache_get_error", "key", key, "error", err)
	}

	p, err := c.next.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if err := c.set(ctx, key, p); err != nil {
		c.log.Warn("catalog_cache_set_error", "key", key, "error", err)
	}
	return p, nil
}

func (c *CachedLookup) set(ctx context.Context, key string, p domain.Product) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}
	jitter := time.Duration(rand.Intn(60)) * time.Second
	if err := c.client.Set(ctx, key, payload, c.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(id int64) string {
	return fmt.Sprintf("catalog:product:%d", id)
}
