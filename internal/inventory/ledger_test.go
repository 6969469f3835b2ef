package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db/dbtest"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
)

func seedProduct(t *testing.T, db *gorm.DB, stock int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:       uuid.New(),
		Name:     "Ribbed Onesie",
		Category: enums.ProductCategoryOnhand,
		Price:    decimal.NewFromInt(250),
		Cost:     decimal.NewFromInt(120),
		Stock:    stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return product.ID
}

func newLedger(t *testing.T) (Ledger, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	l, err := NewLedger(db, nil)
	require.NoError(t, err)
	return l, db
}

func TestReserveDecrementsStock(t *testing.T) {
	t.Parallel()
	l, db := newLedger(t)
	ctx := context.Background()
	id := seedProduct(t, db, 5)

	require.NoError(t, l.Reserve(ctx, nil, id, 3))
	stock, err := l.Available(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 2, stock)

	require.NoError(t, l.Reserve(ctx, nil, id, 2))
	stock, err = l.Available(ctx, id)
	require.NoError(t, err)
	require.Zero(t, stock)
}

func TestReserveInsufficientStockLeavesStockUntouched(t *testing.T) {
	t.Parallel()
	l, db := newLedger(t)
	ctx := context.Background()
	id := seedProduct(t, db, 1)

	err := l.Reserve(ctx, nil, id, 2)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	details, ok := pkgerrors.As(err).Details().(StockDetails)
	require.True(t, ok)
	require.Equal(t, StockDetails{ProductID: id, Requested: 2, Available: 1}, details)

	stock, err := l.Available(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 1, stock)
}

func TestReserveUnknownProduct(t *testing.T) {
	t.Parallel()
	l, _ := newLedger(t)

	err := l.Reserve(context.Background(), nil, uuid.New(), 1)
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()
	l, db := newLedger(t)
	id := seedProduct(t, db, 5)

	for _, qty := range []int{0, -1} {
		err := l.Reserve(context.Background(), nil, id, qty)
		require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "qty %d: %v", qty, err)
	}
}

func TestReserveRollsBackWithTransaction(t *testing.T) {
	t.Parallel()
	l, db := newLedger(t)
	ctx := context.Background()
	a := seedProduct(t, db, 5)
	b := seedProduct(t, db, 0)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := l.Reserve(ctx, tx, a, 4); err != nil {
			return err
		}
		return l.Reserve(ctx, tx, b, 1)
	})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInsufficientStock))

	stock, err := l.Available(ctx, a)
	require.NoError(t, err)
	require.Equal(t, 5, stock)
}

func TestReleaseIncrementsStock(t *testing.T) {
	t.Parallel()
	l, db := newLedger(t)
	ctx := context.Background()
	id := seedProduct(t, db, 0)

	require.NoError(t, l.Release(ctx, nil, id, 2))
	require.NoError(t, l.Release(ctx, nil, id, 3))
	require.NoError(t, l.Release(ctx, nil, id, 0))

	stock, err := l.Available(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 5, stock)
}

func TestReleaseMissingProductIsSkipped(t *testing.T) {
	t.Parallel()
	l, _ := newLedger(t)
	require.NoError(t, l.Release(context.Background(), nil, uuid.New(), 4))
}
