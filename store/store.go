// Package store persists carts and products behind backend-neutral interfaces.
package store

import (
	"context"
	"errors"

	"github.com/junaidrashid-git/cart-api/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrConflict  = errors.New("store: version conflict")
	ErrDuplicate = errors.New("store: duplicate")
	ErrInvalidID = errors.New("store: invalid id")
)

// Store is the storage capability handed to the services.
type Store interface {
	Carts() CartStore
	Products() ProductStore
	Close(ctx context.Context) error
}

type CartStore interface {
	List(ctx context.Context) ([]models.Cart, error)
	Get(ctx context.Context, id string) (*models.Cart, error)
	GetByUser(ctx context.Context, user string) (*models.Cart, error)
	// Create fails with ErrDuplicate when the user already owns a cart.
	Create(ctx context.Context, cart *models.Cart) error
	// UpdateLineItems replaces the line items only while the stored version
	// still equals version, otherwise it returns ErrConflict.
	UpdateLineItems(ctx context.Context, id string, version int64, items []models.LineItem) (*models.Cart, error)
	// Replace overwrites the patched fields without any line-item checks.
	Replace(ctx context.Context, id string, patch models.CartPatch) (*models.Cart, error)
	Delete(ctx context.Context, id string) error
	// Canonical returns a product reference in the form the store reads it
	// back in, so line items can be matched by plain string equality.
	Canonical(product string) (string, error)
}

type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	// GetMany returns the products that exist among ids, keyed by id.
	GetMany(ctx context.Context, ids []string) (map[string]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
}

// withProducts swaps the product store of a Store.
type withProducts struct {
	Store
	products ProductStore
}

func (s withProducts) Products() ProductStore { return s.products }

// WithProducts returns s with its product store replaced by products.
func WithProducts(s Store, products ProductStore) Store {
	return withProducts{Store: s, products: products}
}

func cloneItems(items []models.LineItem) []models.LineItem {
	if items == nil {
		return []models.LineItem{}
	}
	out := make([]models.LineItem, len(items))
	copy(out, items)
	return out
}
