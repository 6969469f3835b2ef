package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
)

// ListFilter narrows product listings.
type ListFilter struct {
	Category *enums.ProductCategory
	InStock  bool
}

// Repository persists catalog entries.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

// Update writes every catalog column of product.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{ID: product.ID}).
		Select("name", "category", "price", "cost", "stock", "image", "description", "estimated_arrival", "updated_at").
		Updates(product).Error
}

// Delete removes the product and any cart lines pointing at it. Order lines keep their snapshot.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("product_id = ?", id).Delete(&models.CartLine{}).Error; err != nil {
		return false, err
	}
	res := conn.Where("id = ?", id).Delete(&models.Product{})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.InStock {
		query = query.Where("stock > 0")
	}
	var products []models.Product
	if err := query.Order("created_at DESC").Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}
