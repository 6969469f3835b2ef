package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
)

// Cart is the aggregate view of a customer's cart lines.
type Cart struct {
	CustomerID uuid.UUID
	Lines      []models.CartLine
}

// Subtotal sums every line total.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// ItemCount is the number of units across lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, line := range c.Lines {
		n += line.Quantity
	}
	return n
}

// HasPasabuy reports whether checkout would require a deposit.
func (c Cart) HasPasabuy() bool {
	for _, line := range c.Lines {
		if line.ProductCategory.RequiresDeposit() {
			return true
		}
	}
	return false
}

type CartLineDTO struct {
	ProductID   uuid.UUID             `json:"product_id"`
	ProductName string                `json:"product_name"`
	Category    enums.ProductCategory `json:"category"`
	UnitPrice   decimal.Decimal       `json:"unit_price"`
	Quantity    int                   `json:"quantity"`
	LineTotal   decimal.Decimal       `json:"line_total"`
	Image       string                `json:"image,omitempty"`
}

type CartDTO struct {
	Lines      []CartLineDTO   `json:"lines"`
	ItemCount  int             `json:"item_count"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	HasPasabuy bool            `json:"has_pasabuy"`
}

func ToDTO(c Cart) CartDTO {
	lines := make([]CartLineDTO, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, CartLineDTO{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Category:    line.ProductCategory,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal(),
			Image:       line.Image,
		})
	}
	return CartDTO{
		Lines:      lines,
		ItemCount:  c.ItemCount(),
		Subtotal:   c.Subtotal(),
		HasPasabuy: c.HasPasabuy(),
	}
}
