package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/cart-api/models"
)

// Memory keeps everything in process. It backs DB_DRIVER=memory and the tests.
type Memory struct {
	mu       sync.RWMutex
	carts    map[string]models.Cart
	products map[string]models.Product
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		carts:    make(map[string]models.Cart),
		products: make(map[string]models.Product),
		now:      time.Now,
	}
}

func (m *Memory) Carts() CartStore { return memoryCarts{m} }
func (m *Memory) Products() ProductStore { return memoryProducts{m} }
func (m *Memory) Close(_ context.Context) error { return nil }

type memoryCarts struct{ m *Memory }

func copyCart(c models.Cart) *models.Cart {
	c.Products = cloneItems(c.Products)
	return &c
}

func (s memoryCarts) Canonical(product string) (string, error) { return product, nil }

func (s memoryCarts) List(_ context.Context) ([]models.Cart, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make([]models.Cart, 0, len(s.m.carts))
	for _, c := range s.m.carts {
		out = append(out, *copyCart(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s memoryCarts) Get(_ context.Context, id string) (*models.Cart, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	c, ok := s.m.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCart(c), nil
}

func (s memoryCarts) GetByUser(_ context.Context, user string) (*models.Cart, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	for _, c := range s.m.carts {
		if c.User == user {
			return copyCart(c), nil
		}
	}
	return nil, ErrNotFound
}

func (s memoryCarts) Create(_ context.Context, cart *models.Cart) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	for _, c := range s.m.carts {
		if c.User == cart.User {
			return ErrDuplicate
		}
	}
	now := s.m.now()
	cart.ID = uuid.NewString()
	cart.Products = cloneItems(cart.Products)
	cart.Version = 0
	cart.CreatedAt, cart.UpdatedAt = now, now
	s.m.carts[cart.ID] = *copyCart(*cart)
	return nil
}

func (s memoryCarts) UpdateLineItems(_ context.Context, id string, version int64, items []models.LineItem) (*models.Cart, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	c, ok := s.m.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if c.Version != version {
		return nil, ErrConflict
	}
	c.Products = cloneItems(items)
	c.Version++
	c.UpdatedAt = s.m.now()
	s.m.carts[id] = c
	return copyCart(c), nil
}

func (s memoryCarts) Replace(_ context.Context, id string, patch models.CartPatch) (*models.Cart, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	c, ok := s.m.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.User != nil {
		for otherID, other := range s.m.carts {
			if otherID != id && other.User == *patch.User {
				return nil, ErrDuplicate
			}
		}
		c.User = *patch.User
	}
	if patch.Products != nil {
		c.Products = cloneItems(*patch.Products)
	}
	c.Version++
	c.UpdatedAt = s.m.now()
	s.m.carts[id] = c
	return copyCart(c), nil
}

func (s memoryCarts) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.carts[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.carts, id)
	return nil
}

type memoryProducts struct{ m *Memory }

func (s memoryProducts) List(_ context.Context) ([]models.Product, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make([]models.Product, 0, len(s.m.products))
	for _, p := range s.m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s memoryProducts) Get(_ context.Context, id string) (*models.Product, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	p, ok := s.m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s memoryProducts) GetMany(_ context.Context, ids []string) (map[string]models.Product, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	out := make(map[string]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s memoryProducts) Create(_ context.Context, p *models.Product) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	now := s.m.now()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	s.m.products[p.ID] = *p
	return nil
}

func (s memoryProducts) Update(_ context.Context, p *models.Product) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	existing, ok := s.m.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.m.now()
	s.m.products[p.ID] = *p
	return nil
}

func (s memoryProducts) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.m.products, id)
	return nil
}
