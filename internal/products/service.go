package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
)

// Service exposes catalog management.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name             string
	Category         enums.ProductCategory
	Price            decimal.Decimal
	Cost             decimal.Decimal
	Stock            int
	Image            string
	Description      string
	EstimatedArrival *time.Time
}

// UpdateProductInput holds optional mutation values. Stock set here is a restock edit, not a
// ledger movement.
type UpdateProductInput struct {
	Name             *string
	Category         *enums.ProductCategory
	Price            *decimal.Decimal
	Cost             *decimal.Decimal
	Stock            *int
	Image            *string
	Description      *string
	EstimatedArrival *time.Time
	ClearArrival     bool
}

type service struct {
	repo *Repository
	tx   db.TxRunner
	now  func() time.Time
}

func NewService(repo *Repository, tx db.TxRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	product := &models.Product{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(input.Name),
		Category:         input.Category,
		Price:            input.Price,
		Cost:             input.Cost,
		Stock:            input.Stock,
		Image:            strings.TrimSpace(input.Image),
		Description:      strings.TrimSpace(input.Description),
		EstimatedArrival: input.EstimatedArrival,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := s.load(ctx, repo, productID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			product.Name = strings.TrimSpace(*input.Name)
		}
		if input.Category != nil {
			product.Category = *input.Category
			if !product.Category.RequiresDeposit() {
				product.EstimatedArrival = nil
			}
		}
		if input.Price != nil {
			product.Price = *input.Price
		}
		if input.Cost != nil {
			product.Cost = *input.Cost
		}
		if input.Stock != nil {
			product.Stock = *input.Stock
		}
		if input.Image != nil {
			product.Image = strings.TrimSpace(*input.Image)
		}
		if input.Description != nil {
			product.Description = strings.TrimSpace(*input.Description)
		}
		if input.ClearArrival {
			product.EstimatedArrival = nil
		} else if input.EstimatedArrival != nil {
			product.EstimatedArrival = input.EstimatedArrival
		}
		product.UpdatedAt = s.now().UTC()

		if err := validateProduct(product); err != nil {
			return err
		}
		if err := repo.Update(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := s.repo.WithTx(tx).Delete(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		if !deleted {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil
	})
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return s.load(ctx, s.repo, productID)
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	if filter.Category != nil && !filter.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", *filter.Category))
	}
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return products, nil
}

func (s *service) load(ctx context.Context, repo *Repository, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := repo.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case !p.Category.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", p.Category))
	case !p.Price.IsPositive():
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	case !p.Cost.IsPositive():
		return pkgerrors.New(pkgerrors.CodeValidation, "cost must be greater than zero")
	case p.Stock < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	case p.EstimatedArrival != nil && !p.Category.RequiresDeposit():
		return pkgerrors.New(pkgerrors.CodeValidation, "estimated arrival only applies to pasabuy products")
	}
	return nil
}
