// Package inventory owns product stock movements. Every change is a single conditional
// UPDATE so concurrent reservations can never drive stock below zero.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
)

// Ledger reserves and releases product stock.
type Ledger interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
	Available(ctx context.Context, productID uuid.UUID) (int, error)
}

// StockDetails is attached to InsufficientStock errors.
type StockDetails struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

type ledger struct {
	db   *gorm.DB
	logg *logger.Logger
}

// NewLedger builds a ledger over the products table.
func NewLedger(db *gorm.DB, logg *logger.Logger) (Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &ledger{db: db, logg: logg}, nil
}

func (l *ledger) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return l.db.WithContext(ctx)
}

// Reserve decrements stock by qty or fails without touching it.
func (l *ledger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	conn := l.conn(ctx, tx)
	res := conn.Exec(`
		UPDATE products
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
	}
	if res.RowsAffected == 1 {
		return nil
	}

	stock, err := currentStock(conn, productID)
	if err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for product").
		WithDetails(StockDetails{ProductID: productID, Requested: qty, Available: stock})
}

// Release returns qty units to stock. A product deleted since the order was placed is skipped.
func (l *ledger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}

	res := l.conn(ctx, tx).Exec(`
		UPDATE products
		SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release stock")
	}
	if res.RowsAffected == 0 {
		logCtx := l.logg.WithFields(ctx, map[string]any{
			"product_id": productID.String(),
			"quantity":   qty,
		})
		l.logg.Warn(logCtx, "stock release skipped: product no longer exists")
	}
	return nil
}

func (l *ledger) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	return currentStock(l.db.WithContext(ctx), productID)
}

func currentStock(conn *gorm.DB, productID uuid.UUID) (int, error) {
	var product models.Product
	err := conn.Select("id", "stock").First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product stock")
	}
	return product.Stock, nil
}
