package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/junaidrashid-git/cart-api/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProducts struct {
	ProductStore
	gets, getManys int
}

func (c *countingProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	c.gets++
	return c.ProductStore.Get(ctx, id)
}

func (c *countingProducts) GetMany(ctx context.Context, ids []string) (map[string]models.Product, error) {
	c.getManys++
	return c.ProductStore.GetMany(ctx, ids)
}

func newCache(t *testing.T) (*CachedProducts, *countingProducts, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	backing := &countingProducts{ProductStore: NewMemory().Products()}
	return NewCachedProducts(backing, client, time.Minute), backing, mr
}

func TestCachedProductsReadThrough(t *testing.T) {
	ctx := context.Background()
	cache, backing, mr := newCache(t)

	p := &models.Product{Title: "Shirt"}
	require.NoError(t, cache.Create(ctx, p))

	_, err := cache.Get(ctx, p.ID)
	require.NoError(t, err)
	got, err := cache.Get(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, "Shirt", got.Title)
	assert.Equal(t, 1, backing.gets)
	assert.True(t, mr.Exists(productKey(p.ID)))
}

func TestCachedProductsGetManyFillsMisses(t *testing.T) {
	ctx := context.Background()
	cache, backing, _ := newCache(t)

	a := &models.Product{Title: "A"}
	b := &models.Product{Title: "B"}
	require.NoError(t, cache.Create(ctx, a))
	require.NoError(t, cache.Create(ctx, b))

	_, err := cache.Get(ctx, a.ID)
	require.NoError(t, err)

	got, err := cache.GetMany(ctx, []string{a.ID, b.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, backing.getManys)

	got, err = cache.GetMany(ctx, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, backing.getManys, "second lookup is served from redis")
}

func TestCachedProductsEvictsOnWrite(t *testing.T) {
	ctx := context.Background()
	cache, _, mr := newCache(t)

	p := &models.Product{Title: "Shirt"}
	require.NoError(t, cache.Create(ctx, p))
	_, err := cache.Get(ctx, p.ID)
	require.NoError(t, err)

	p.Title = "Hat"
	require.NoError(t, cache.Update(ctx, p))
	assert.False(t, mr.Exists(productKey(p.ID)))

	got, err := cache.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hat", got.Title)

	require.NoError(t, cache.Delete(ctx, p.ID))
	_, err = cache.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedProductsFallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	cache, _, mr := newCache(t)

	p := &models.Product{Title: "Shirt"}
	require.NoError(t, cache.Create(ctx, p))
	mr.Close()

	got, err := cache.GetMany(ctx, []string{p.ID})
	require.NoError(t, err)
	assert.Equal(t, "Shirt", got[p.ID].Title)
}
