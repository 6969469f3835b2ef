package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/internal/inventory"
	"github.com/littlemija/littlemija-backend/pkg/db"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service manages a customer's cart. Stock checks compare against current stock and reserve
// nothing; reservation happens at checkout.
type Service interface {
	Get(ctx context.Context, customerID uuid.UUID) (Cart, error)
	Add(ctx context.Context, customerID, productID uuid.UUID, qty int) (int, error)
	SetQuantity(ctx context.Context, customerID, productID uuid.UUID, qty int) error
	Remove(ctx context.Context, customerID, productID uuid.UUID) error
	Clear(ctx context.Context, customerID uuid.UUID) error
}

type service struct {
	repo     *Repository
	tx       db.TxRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, tx db.TxRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (Cart, error) {
	if customerID == uuid.Nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	lines, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list cart lines")
	}
	return Cart{CustomerID: customerID, Lines: lines}, nil
}

// Add increments an existing line or appends a snapshot of the product. It returns the number
// of distinct lines in the cart.
func (s *service) Add(ctx context.Context, customerID, productID uuid.UUID, qty int) (int, error) {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer id and product id required")
	}
	if qty < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindLine(ctx, customerID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart line")
		}

		current := 0
		if existing != nil {
			current = existing.Quantity
		}
		if err := checkStock(product, current+qty); err != nil {
			return err
		}

		if existing != nil {
			if err := repo.UpdateQuantity(ctx, existing.ID, current+qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart line")
			}
		} else {
			position, err := repo.NextPosition(ctx, customerID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: cart position")
			}
			line := &models.CartLine{
				CustomerID:      customerID,
				ProductID:       product.ID,
				ProductName:     product.Name,
				ProductCategory: product.Category,
				UnitPrice:       product.Price,
				Quantity:        qty,
				Image:           product.Image,
				Position:        position,
			}
			if err := repo.Insert(ctx, line); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart line")
			}
		}

		count, err = repo.CountLines(ctx, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count cart lines")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SetQuantity replaces a line's quantity. Zero or less removes the line. Only increases are
// checked against stock.
func (s *service) SetQuantity(ctx context.Context, customerID, productID uuid.UUID, qty int) error {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id and product id required")
	}
	var product *models.Product
	if qty > 0 {
		loaded, err := s.loadProduct(ctx, productID)
		if err != nil {
			return err
		}
		product = loaded
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLine(ctx, customerID, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart line")
		}

		if qty <= 0 {
			if err := repo.DeleteLine(ctx, customerID, productID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart line")
			}
			return nil
		}
		if qty > line.Quantity {
			if err := checkStock(product, qty); err != nil {
				return err
			}
		}
		if err := repo.UpdateQuantity(ctx, line.ID, qty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart line")
		}
		return nil
	})
}

func (s *service) Remove(ctx context.Context, customerID, productID uuid.UUID) error {
	if err := s.repo.DeleteLine(ctx, customerID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart line")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, customerID uuid.UUID) error {
	if err := s.repo.DeleteAll(ctx, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func checkStock(product *models.Product, wanted int) error {
	if product.Stock >= wanted {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(inventory.StockDetails{
			ProductID: product.ID,
			Requested: wanted,
			Available: product.Stock,
		})
}
