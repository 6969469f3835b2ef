package cart

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
)

// Repository persists cart lines keyed by (customer, product).
type Repository struct {
	db *gorm.DB
}

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

// ListByCustomer returns the customer's lines in insertion order.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("position ASC").
		Find(&lines).Error
	return lines, err
}

func (r *Repository) FindLine(ctx context.Context, customerID, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repository) Insert(ctx context.Context, line *models.CartLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *Repository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", qty).Error
}

func (r *Repository) DeleteLine(ctx context.Context, customerID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&models.CartLine{}).Error
}

func (r *Repository) DeleteAll(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&models.CartLine{}).Error
}

func (r *Repository) CountLines(ctx context.Context, customerID uuid.UUID) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("customer_id = ?", customerID).
		Count(&n).Error
	return int(n), err
}

// NextPosition returns one past the customer's highest line position.
func (r *Repository) NextPosition(ctx context.Context, customerID uuid.UUID) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("customer_id = ?", customerID).
		Select("MAX(position)").
		Row().
		Scan(&max)
	if err != nil || !max.Valid {
		return 0, err
	}
	return int(max.Int64) + 1, nil
}
