package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/enums"
)

// CartLine is one product in a customer's cart. Name, category, price and image are
// snapshotted when the line is first added.
type CartLine struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID      uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:ux_cart_lines_customer_product,priority:1"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_lines_customer_product,priority:2"`
	ProductName     string                `gorm:"column:product_name;not null"`
	ProductCategory enums.ProductCategory `gorm:"column:product_category;type:varchar(16);not null"`
	UnitPrice       decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity        int                   `gorm:"column:quantity;not null;check:quantity >= 1"`
	Image           string                `gorm:"column:image"`
	Position        int                   `gorm:"column:position;not null"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal is unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
