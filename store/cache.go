package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/junaidrashid-git/cart-api/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const productKeyPrefix = "product:"

// CachedProducts is a read-through Redis cache in front of a ProductStore.
// Cache failures are logged and fall back to the wrapped store.
type CachedProducts struct {
	next  ProductStore
	redis *redis.Client
	ttl   time.Duration
}

func NewCachedProducts(next ProductStore, client *redis.Client, ttl time.Duration) *CachedProducts {
	return &CachedProducts{next: next, redis: client, ttl: ttl}
}

func productKey(id string) string { return productKeyPrefix + id }

func (c *CachedProducts) List(ctx context.Context) ([]models.Product, error) {
	return c.next.List(ctx)
}

func (c *CachedProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	raw, err := c.redis.Get(ctx, productKey(id)).Bytes()
	if err == nil {
		var p models.Product
		if err := json.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Str("product", id).Msg("product cache read failed")
	}

	p, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, *p)
	return p, nil
}

func (c *CachedProducts) GetMany(ctx context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}

	missing := ids
	vals, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		log.Warn().Err(err).Msg("product cache read failed")
	} else {
		missing = nil
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var p models.Product
			if err := json.Unmarshal([]byte(s), &p); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			out[ids[i]] = p
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := c.next.GetMany(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, p := range found {
		out[id] = p
		c.store(ctx, p)
	}
	return out, nil
}

func (c *CachedProducts) Create(ctx context.Context, p *models.Product) error {
	return c.next.Create(ctx, p)
}

func (c *CachedProducts) Update(ctx context.Context, p *models.Product) error {
	if err := c.next.Update(ctx, p); err != nil {
		return err
	}
	c.evict(ctx, p.ID)
	return nil
}

func (c *CachedProducts) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *CachedProducts) store(ctx context.Context, p models.Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, productKey(p.ID), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("product", p.ID).Msg("product cache write failed")
	}
}

func (c *CachedProducts) evict(ctx context.Context, id string) {
	if err := c.redis.Del(ctx, productKey(id)).Err(); err != nil {
		log.Warn().Err(err).Str("product", id).Msg("product cache evict failed")
	}
}
