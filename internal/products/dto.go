package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
)

// ProductDTO is the catalog payload. Cost is only filled for staff.
type ProductDTO struct {
	ID               uuid.UUID             `json:"id"`
	Name             string                `json:"name"`
	Category         enums.ProductCategory `json:"category"`
	Price            decimal.Decimal       `json:"price"`
	Cost             *decimal.Decimal      `json:"cost,omitempty"`
	Stock            int                   `json:"stock"`
	Image            string                `json:"image,omitempty"`
	Description      string                `json:"description,omitempty"`
	EstimatedArrival *time.Time            `json:"estimated_arrival,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func ToDTO(p models.Product, includeCost bool) ProductDTO {
	dto := ProductDTO{
		ID:               p.ID,
		Name:             p.Name,
		Category:         p.Category,
		Price:            p.Price,
		Stock:            p.Stock,
		Image:            p.Image,
		Description:      p.Description,
		EstimatedArrival: p.EstimatedArrival,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if includeCost {
		cost := p.Cost
		dto.Cost = &cost
	}
	return dto
}

func ToDTOs(products []models.Product, includeCost bool) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, ToDTO(p, includeCost))
	}
	return out
}
