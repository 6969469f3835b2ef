package expenses

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
)

// Repository manages persistence for expenses. Rows are never updated or deleted.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, expense *models.Expense) error
	List(ctx context.Context) ([]models.Expense, error)
	Total(ctx context.Context) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an expense repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repository) List(ctx context.Context) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := r.db.WithContext(ctx).
		Order("date DESC").
		Order("created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *repository) Total(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("SUM(amount)").
		Row().
		Scan(&total)
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}
