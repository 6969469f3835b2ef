package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/enums"
)

// Product is a catalog entry. Stock is owned by the inventory ledger.
type Product struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name             string                `gorm:"column:name;not null"`
	Category         enums.ProductCategory `gorm:"column:category;type:varchar(16);not null"`
	Price            decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	Cost             decimal.Decimal       `gorm:"column:cost;type:numeric(12,2);not null"`
	Stock            int                   `gorm:"column:stock;not null;default:0;check:stock >= 0"`
	Image            string                `gorm:"column:image"`
	Description      string                `gorm:"column:description"`
	EstimatedArrival *time.Time            `gorm:"column:estimated_arrival"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
