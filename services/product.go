package services

import (
	"context"
	"errors"

	"github.com/junaidrashid-git/cart-api/apierror"
	"github.com/junaidrashid-git/cart-api/models"
	"github.com/junaidrashid-git/cart-api/store"
)

var (
	errProductNotFound = apierror.NotFound("Product Not Found")
	errInvalidCategory = apierror.BadRequest("Invalid category id")
)

type ProductService struct {
	products store.ProductStore
}

func NewProductService(products store.ProductStore) *ProductService {
	return &ProductService{products: products}
}

func mapProductError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return errProductNotFound
	case errors.Is(err, store.ErrInvalidID):
		return errInvalidCategory
	}
	return err
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, mapProductError(err)
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, p *models.Product) error {
	if p.Category != nil && *p.Category == "" {
		p.Category = nil
	}
	return mapProductError(s.products.Create(ctx, p))
}

// Update applies patch to the stored product and returns the result.
func (s *ProductService) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, mapProductError(err)
	}
	patch.Apply(p)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, mapProductError(err)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return mapProductError(s.products.Delete(ctx, id))
}
