package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/cart-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type cartRow struct {
	ID        string        `gorm:"primaryKey"`
	UserID    string        `gorm:"uniqueIndex;not null"` // one cart per user
	Items     []cartItemRow `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	Version   int64         `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartRow) TableName() string { return "carts" }

type cartItemRow struct {
	ID        uint   `gorm:"primaryKey"`
	CartID    string `gorm:"index"`
	Position  int
	ProductID string
	Quantity  int
}

func (cartItemRow) TableName() string { return "cart_items" }

type productRow struct {
	ID          string  `gorm:"primaryKey"`
	Title       string  `gorm:"not null"`
	Price       float64 `gorm:"not null"`
	Description string  `gorm:"not null"`
	Discount    float64 `gorm:"not null"`
	Total       float64 `gorm:"not null"`
	Image       string  `gorm:"not null"`
	Image2      string  `gorm:"not null"`
	CategoryID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productRow) TableName() string { return "products" }

// Gorm stores carts relationally. Line items live in cart_items ordered by position.
type Gorm struct {
	db *gorm.DB
}

// OpenPostgres connects with gorm and migrates the cart and product tables.
func OpenPostgres(dsn string) (*Gorm, error) {
	if dsn == "" {
		return nil, errors.New("postgres: DATABASE_URL or DB_HOST is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewGorm(db)
}

func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&cartRow{}, &cartItemRow{}, &productRow{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &Gorm{db: db}, nil
}

func (g *Gorm) Carts() CartStore { return gormCarts{g.db} }
func (g *Gorm) Products() ProductStore { return gormProducts{g.db} }

func (g *Gorm) Close(_ context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func (r cartRow) model() models.Cart {
	items := make([]models.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, models.LineItem{Product: item.ProductID, Quantity: item.Quantity})
	}
	return models.Cart{
		ID:        r.ID,
		User:      r.UserID,
		Products:  items,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func toItemRows(cartID string, items []models.LineItem) []cartItemRow {
	rows := make([]cartItemRow, 0, len(items))
	for i, item := range items {
		rows = append(rows, cartItemRow{CartID: cartID, Position: i, ProductID: item.Product, Quantity: item.Quantity})
	}
	return rows
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

type gormCarts struct{ db *gorm.DB }

func (s gormCarts) Canonical(product string) (string, error) { return product, nil }

func (s gormCarts) List(ctx context.Context) ([]models.Cart, error) {
	var rows []cartRow
	if err := preloadItems(s.db.WithContext(ctx)).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Cart, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s gormCarts) first(db *gorm.DB, query string, arg string) (*models.Cart, error) {
	var row cartRow
	if err := preloadItems(db).Where(query, arg).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	c := row.model()
	return &c, nil
}

func (s gormCarts) Get(ctx context.Context, id string) (*models.Cart, error) {
	return s.first(s.db.WithContext(ctx), "id = ?", id)
}

func (s gormCarts) GetByUser(ctx context.Context, user string) (*models.Cart, error) {
	return s.first(s.db.WithContext(ctx), "user_id = ?", user)
}

func (s gormCarts) Create(ctx context.Context, cart *models.Cart) error {
	row := cartRow{
		ID:     uuid.NewString(),
		UserID: cart.User,
	}
	row.Items = toItemRows(row.ID, cart.Products)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	*cart = row.model()
	return nil
}

func (s gormCarts) UpdateLineItems(ctx context.Context, id string, version int64, items []models.LineItem) (*models.Cart, error) {
	var updated *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&cartRow{}).
			Where("id = ? AND version = ?", id, version).
			Updates(map[string]any{"version": gorm.Expr("version + 1"), "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&cartRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}

		if err := replaceItems(tx, id, items); err != nil {
			return err
		}
		c, err := s.first(tx, "id = ?", id)
		updated = c
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

func replaceItems(tx *gorm.DB, cartID string, items []models.LineItem) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&cartItemRow{}).Error; err != nil {
		return err
	}
	rows := toItemRows(cartID, items)
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (s gormCarts) Replace(ctx context.Context, id string, patch models.CartPatch) (*models.Cart, error) {
	var updated *models.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{"version": gorm.Expr("version + 1"), "updated_at": time.Now()}
		if patch.User != nil {
			fields["user_id"] = *patch.User
		}
		res := tx.Model(&cartRow{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if patch.Products != nil {
			if err := replaceItems(tx, id, *patch.Products); err != nil {
				return err
			}
		}
		c, err := s.first(tx, "id = ?", id)
		updated = c
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

func (s gormCarts) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&cartItemRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&cartRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r productRow) model() models.Product {
	return models.Product{
		ID:          r.ID,
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Discount:    r.Discount,
		Total:       r.Total,
		Image:       r.Image,
		Image2:      r.Image2,
		Category:    r.CategoryID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toProductRow(p *models.Product) productRow {
	return productRow{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Discount:    p.Discount,
		Total:       p.Total,
		Image:       p.Image,
		Image2:      p.Image2,
		CategoryID:  p.Category,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type gormProducts struct{ db *gorm.DB }

func (s gormProducts) List(ctx context.Context) ([]models.Product, error) {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s gormProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	var row productRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	p := row.model()
	return &p, nil
}

func (s gormProducts) GetMany(ctx context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []productRow
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r.model()
	}
	return out, nil
}

func (s gormProducts) Create(ctx context.Context, p *models.Product) error {
	p.ID = uuid.NewString()
	row := toProductRow(p)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	*p = row.model()
	return nil
}

func (s gormProducts) Update(ctx context.Context, p *models.Product) error {
	row := toProductRow(p)
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&productRow{}).Where("id = ?", p.ID).Updates(map[string]any{
		"title":       row.Title,
		"price":       row.Price,
		"description": row.Description,
		"discount":    row.Discount,
		"total":       row.Total,
		"image":       row.Image,
		"image2":      row.Image2,
		"category_id": row.CategoryID,
		"updated_at":  now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}

func (s gormProducts) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&productRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
