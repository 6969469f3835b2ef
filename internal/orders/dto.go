package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
)

type OrderLineDTO struct {
	ProductID   uuid.UUID             `json:"product_id"`
	ProductName string                `json:"product_name"`
	Category    enums.ProductCategory `json:"category"`
	UnitPrice   decimal.Decimal       `json:"unit_price"`
	Quantity    int                   `json:"quantity"`
	LineTotal   decimal.Decimal       `json:"line_total"`
}

// OrderDTO is the API shape of an order. The paid flags and next statuses are derived.
type OrderDTO struct {
	ID               uuid.UUID             `json:"id"`
	CustomerID       uuid.UUID             `json:"customer_id"`
	CustomerName     string                `json:"customer_name"`
	CustomerEmail    string                `json:"customer_email"`
	CustomerPhone    string                `json:"customer_phone,omitempty"`
	CustomerAddress  string                `json:"customer_address,omitempty"`
	Items            []OrderLineDTO        `json:"items"`
	TotalAmount      decimal.Decimal       `json:"total_amount"`
	DepositAmount    decimal.Decimal       `json:"deposit_amount"`
	RemainingBalance decimal.Decimal       `json:"remaining_balance"`
	Status           enums.OrderStatus     `json:"status"`
	DepositPaid      bool                  `json:"deposit_paid"`
	FullPaid         bool                  `json:"full_paid"`
	DepositDeadline  *time.Time            `json:"deposit_deadline,omitempty"`
	ShippingMethod   *enums.ShippingMethod `json:"shipping_method,omitempty"`
	PaymentMethod    enums.PaymentMethod   `json:"payment_method"`
	NextStatuses     []enums.OrderStatus   `json:"next_statuses"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func ToDTO(o models.Order) OrderDTO {
	items := make([]OrderLineDTO, 0, len(o.Lines))
	for _, line := range o.Lines {
		items = append(items, OrderLineDTO{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Category:    line.ProductCategory,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal(),
		})
	}
	next := NextStatuses(o.Status)
	if next == nil {
		next = []enums.OrderStatus{}
	}
	return OrderDTO{
		ID:               o.ID,
		CustomerID:       o.CustomerID,
		CustomerName:     o.CustomerName,
		CustomerEmail:    o.CustomerEmail,
		CustomerPhone:    o.CustomerPhone,
		CustomerAddress:  o.CustomerAddress,
		Items:            items,
		TotalAmount:      o.TotalAmount,
		DepositAmount:    o.DepositAmount,
		RemainingBalance: o.RemainingBalance,
		Status:           o.Status,
		DepositPaid:      o.DepositPaid(),
		FullPaid:         o.FullPaid(),
		DepositDeadline:  o.DepositDeadline,
		ShippingMethod:   o.ShippingMethod,
		PaymentMethod:    o.PaymentMethod,
		NextStatuses:     next,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func ToDTOs(list []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, ToDTO(o))
	}
	return out
}
