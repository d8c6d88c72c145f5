package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/junaidrashid-git/cart-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestGorm runs the relational backend on an in-process SQLite database.
func openTestGorm(t *testing.T) *Gorm {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: gets its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	g, err := NewGorm(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close(context.Background()) })
	return g
}

func TestGormCreateAndDuplicateUser(t *testing.T) {
	ctx := context.Background()
	carts := openTestGorm(t).Carts()

	cart := &models.Cart{User: "u1", Products: []models.LineItem{{Product: "p1", Quantity: 1}, {Product: "p2", Quantity: 2}}}
	require.NoError(t, carts.Create(ctx, cart))
	require.NotEmpty(t, cart.ID)
	assert.Equal(t, int64(0), cart.Version)

	assert.ErrorIs(t, carts.Create(ctx, &models.Cart{User: "u1"}), ErrDuplicate)

	got, err := carts.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, cart.ID, got.ID)
	assert.Equal(t, []models.LineItem{{Product: "p1", Quantity: 1}, {Product: "p2", Quantity: 2}}, got.Products)

	_, err = carts.GetByUser(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormVersionedUpdateKeepsOrder(t *testing.T) {
	ctx := context.Background()
	carts := openTestGorm(t).Carts()

	cart := &models.Cart{User: "u1", Products: []models.LineItem{{Product: "p1", Quantity: 1}, {Product: "p2", Quantity: 2}}}
	require.NoError(t, carts.Create(ctx, cart))

	items := models.MergeAdditive(cart.Products, "p3", 1)
	items = models.MergeAdditive(items, "p1", 4)
	updated, err := carts.UpdateLineItems(ctx, cart.ID, 0, items)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)
	assert.Equal(t, []models.LineItem{
		{Product: "p1", Quantity: 5},
		{Product: "p2", Quantity: 2},
		{Product: "p3", Quantity: 1},
	}, updated.Products)

	_, err = carts.UpdateLineItems(ctx, cart.ID, 0, nil)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = carts.UpdateLineItems(ctx, "missing", 0, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := carts.Get(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Products, got.Products, "a conflicting write must leave the items alone")
}

func TestGormReplace(t *testing.T) {
	ctx := context.Background()
	carts := openTestGorm(t).Carts()

	cart := &models.Cart{User: "u1", Products: []models.LineItem{{Product: "p1", Quantity: 1}}}
	require.NoError(t, carts.Create(ctx, cart))
	other := &models.Cart{User: "u2"}
	require.NoError(t, carts.Create(ctx, other))

	dup := []models.LineItem{{Product: "p9", Quantity: 1}, {Product: "p9", Quantity: 2}}
	user := "u3"
	replaced, err := carts.Replace(ctx, cart.ID, models.CartPatch{User: &user, Products: &dup})
	require.NoError(t, err)
	assert.Equal(t, "u3", replaced.User)
	assert.Equal(t, dup, replaced.Products)
	assert.Equal(t, int64(1), replaced.Version)

	taken := "u2"
	_, err = carts.Replace(ctx, cart.ID, models.CartPatch{User: &taken})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = carts.Replace(ctx, "missing", models.CartPatch{User: &user})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormDeleteRemovesItems(t *testing.T) {
	ctx := context.Background()
	g := openTestGorm(t)
	carts := g.Carts()

	cart := &models.Cart{User: "u1", Products: []models.LineItem{{Product: "p1", Quantity: 1}, {Product: "p2", Quantity: 1}}}
	require.NoError(t, carts.Create(ctx, cart))

	require.NoError(t, carts.Delete(ctx, cart.ID))
	_, err := carts.Get(ctx, cart.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, carts.Delete(ctx, cart.ID), ErrNotFound)

	var count int64
	require.NoError(t, g.db.Model(&cartItemRow{}).Where("cart_id = ?", cart.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormProducts(t *testing.T) {
	ctx := context.Background()
	products := openTestGorm(t).Products()

	p := &models.Product{Title: "Shirt", Price: 20, Description: "cotton", Discount: 5, Total: 15, Image: "a.png", Image2: "b.png"}
	require.NoError(t, products.Create(ctx, p))
	require.NotEmpty(t, p.ID)

	many, err := products.GetMany(ctx, []string{p.ID, "bogus"})
	require.NoError(t, err)
	assert.Len(t, many, 1)
	assert.Equal(t, "Shirt", many[p.ID].Title)

	p.Title = "Hat"
	p.UpdatedAt = time.Time{}
	require.NoError(t, products.Update(ctx, p))
	assert.WithinDuration(t, time.Now(), p.UpdatedAt, time.Minute)

	got, err := products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hat", got.Title)
	assert.WithinDuration(t, p.UpdatedAt, got.UpdatedAt, time.Second)

	missing := &models.Product{ID: "missing"}
	assert.ErrorIs(t, products.Update(ctx, missing), ErrNotFound)

	require.NoError(t, products.Delete(ctx, p.ID))
	_, err = products.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, products.Delete(ctx, p.ID), ErrNotFound)
}
