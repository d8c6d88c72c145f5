// Package services holds the cart and product operations behind the HTTP handlers.
package services

import (
	"context"
	"errors"

	"github.com/junaidrashid-git/cart-api/apierror"
	"github.com/junaidrashid-git/cart-api/events"
	"github.com/junaidrashid-git/cart-api/models"
	"github.com/junaidrashid-git/cart-api/store"
)

// maxAttempts bounds the read-modify-write loop when concurrent writers keep
// bumping a cart's version.
const maxAttempts = 3

var (
	errCartNotFound         = apierror.NotFound("Cart Not Found")
	errProductNotInCart     = apierror.NotFound("Product Not Found in Cart")
	errConcurrentCartUpdate = apierror.Conflict("Cart was modified concurrently, please retry")
	errUserAlreadyHasCart   = apierror.Conflict("User already has a cart")
	errInvalidCartReference = apierror.BadRequest("Invalid user or product id")
)

type CartService struct {
	store  store.Store
	events events.Publisher
}

func NewCartService(s store.Store, pub events.Publisher) *CartService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &CartService{store: s, events: pub}
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errCartNotFound
	case errors.Is(err, store.ErrInvalidID):
		return errInvalidCartReference
	case errors.Is(err, store.ErrConflict):
		return errConcurrentCartUpdate
	case errors.Is(err, store.ErrDuplicate):
		return errUserAlreadyHasCart
	}
	return err
}

// List returns every cart with its products expanded.
func (s *CartService) List(ctx context.Context) ([]models.ExpandedCart, error) {
	carts, err := s.store.Carts().List(ctx)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, c := range carts {
		ids = append(ids, c.ProductIDs()...)
	}
	products, err := s.store.Products().GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.ExpandedCart, 0, len(carts))
	for _, c := range carts {
		out = append(out, c.Expand(products))
	}
	return out, nil
}

func (s *CartService) Get(ctx context.Context, id string) (*models.Cart, error) {
	cart, err := s.store.Carts().Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return cart, nil
}

// GetByUser returns the user's cart with its products expanded.
func (s *CartService) GetByUser(ctx context.Context, user string) (*models.ExpandedCart, error) {
	cart, err := s.store.Carts().GetByUser(ctx, user)
	if err != nil {
		return nil, mapStoreError(err)
	}
	products, err := s.store.Products().GetMany(ctx, cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	expanded := cart.Expand(products)
	return &expanded, nil
}

// AddToCart creates the user's cart holding one line item, or adds qty to
// the existing cart. created reports which of the two happened.
func (s *CartService) AddToCart(ctx context.Context, user, product string, qty int) (cart *models.Cart, created bool, err error) {
	carts := s.store.Carts()

	product, err = carts.Canonical(product)
	if err != nil {
		return nil, false, mapStoreError(err)
	}

	_, err = carts.GetByUser(ctx, user)
	if errors.Is(err, store.ErrNotFound) {
		cart = &models.Cart{User: user, Products: []models.LineItem{{Product: product, Quantity: qty}}}
		err = carts.Create(ctx, cart)
		if err == nil {
			events.PublishBestEffort(ctx, s.events, events.NewCartEvent(events.CartCreated, cart))
			return cart, true, nil
		}
		// Lost the creation race: another request made the cart first, merge into it.
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, false, mapStoreError(err)
		}
	} else if err != nil {
		return nil, false, err
	}

	cart, err = s.mergeUserCart(ctx, user, func(items []models.LineItem) []models.LineItem {
		return models.MergeAdditive(items, product, qty)
	})
	return cart, false, err
}

// SetQuantity overwrites the quantity of product in the user's cart, adding
// the line item when it is missing.
func (s *CartService) SetQuantity(ctx context.Context, user, product string, qty int) (*models.Cart, error) {
	product, err := s.store.Carts().Canonical(product)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return s.mergeUserCart(ctx, user, func(items []models.LineItem) []models.LineItem {
		return models.MergeAbsolute(items, product, qty)
	})
}

// RemoveProduct drops product from the user's cart. Nothing is written when
// the product is not in the cart.
func (s *CartService) RemoveProduct(ctx context.Context, user, product string) (*models.Cart, error) {
	carts := s.store.Carts()

	// A reference the store cannot even parse is never in the cart.
	product, err := carts.Canonical(product)
	if err != nil {
		if errors.Is(err, store.ErrInvalidID) {
			return nil, errProductNotInCart
		}
		return nil, err
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		cart, err := carts.GetByUser(ctx, user)
		if err != nil {
			return nil, mapStoreError(err)
		}
		items, removed := models.RemoveLineItem(cart.Products, product)
		if !removed {
			return nil, errProductNotInCart
		}

		updated, err := carts.UpdateLineItems(ctx, cart.ID, cart.Version, items)
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, mapStoreError(err)
		}
		events.PublishBestEffort(ctx, s.events, events.NewCartEvent(events.CartItemRemoved, updated))
		return updated, nil
	}
	return nil, errConcurrentCartUpdate
}

func (s *CartService) mergeUserCart(ctx context.Context, user string, merge func([]models.LineItem) []models.LineItem) (*models.Cart, error) {
	carts := s.store.Carts()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		cart, err := carts.GetByUser(ctx, user)
		if err != nil {
			return nil, mapStoreError(err)
		}

		updated, err := carts.UpdateLineItems(ctx, cart.ID, cart.Version, merge(cart.Products))
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, mapStoreError(err)
		}
		events.PublishBestEffort(ctx, s.events, events.NewCartEvent(events.CartUpdated, updated))
		return updated, nil
	}
	return nil, errConcurrentCartUpdate
}

// Replace overwrites cart fields directly. It skips the line-item merge, so
// the caller is responsible for keeping one line item per product.
func (s *CartService) Replace(ctx context.Context, id string, patch models.CartPatch) (*models.Cart, error) {
	cart, err := s.store.Carts().Replace(ctx, id, patch)
	if err != nil {
		return nil, mapStoreError(err)
	}
	events.PublishBestEffort(ctx, s.events, events.NewCartEvent(events.CartReplaced, cart))
	return cart, nil
}

func (s *CartService) Delete(ctx context.Context, id string) error {
	if err := s.store.Carts().Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	events.PublishBestEffort(ctx, s.events, events.NewCartEvent(events.CartDeleted, &models.Cart{ID: id}))
	return nil
}
