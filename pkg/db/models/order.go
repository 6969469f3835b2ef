package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/enums"
)

// Order is a placed order. Contact fields are a snapshot taken at checkout.
type Order struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID       uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;index"`
	CustomerName     string                `gorm:"column:customer_name;not null"`
	CustomerEmail    string                `gorm:"column:customer_email;not null"`
	CustomerPhone    string                `gorm:"column:customer_phone"`
	CustomerAddress  string                `gorm:"column:customer_address"`
	TotalAmount      decimal.Decimal       `gorm:"column:total_amount;type:numeric(12,2);not null"`
	DepositAmount    decimal.Decimal       `gorm:"column:deposit_amount;type:numeric(12,2);not null"`
	RemainingBalance decimal.Decimal       `gorm:"column:remaining_balance;type:numeric(12,2);not null"`
	Status           enums.OrderStatus     `gorm:"column:status;type:varchar(32);not null;index"`
	DepositDeadline  *time.Time            `gorm:"column:deposit_deadline"`
	ShippingMethod   *enums.ShippingMethod `gorm:"column:shipping_method;type:varchar(16)"`
	PaymentMethod    enums.PaymentMethod   `gorm:"column:payment_method;type:varchar(16);not null"`
	Version          int                   `gorm:"column:version;not null;default:1"`
	Lines            []OrderLine           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// DepositPaid is derived from the status.
func (o Order) DepositPaid() bool {
	return o.Status.DepositPaid()
}

// FullPaid is derived from the status.
func (o Order) FullPaid() bool {
	return o.Status.FullPaid()
}

// Clone returns a copy that shares no slices or pointers with o.
func (o Order) Clone() Order {
	out := o
	if o.DepositDeadline != nil {
		deadline := *o.DepositDeadline
		out.DepositDeadline = &deadline
	}
	if o.ShippingMethod != nil {
		method := *o.ShippingMethod
		out.ShippingMethod = &method
	}
	if o.Lines != nil {
		out.Lines = append([]OrderLine(nil), o.Lines...)
	}
	return out
}

// OrderLine is the product snapshot captured at checkout.
type OrderLine struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	ProductName     string                `gorm:"column:product_name;not null"`
	ProductCategory enums.ProductCategory `gorm:"column:product_category;type:varchar(16);not null"`
	UnitPrice       decimal.Decimal       `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	Position        int                   `gorm:"column:position;not null"`
}

func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
