package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littlemija/littlemija-backend/internal/expenses"
	"github.com/littlemija/littlemija-backend/pkg/db/dbtest"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
)

func TestSummary(t *testing.T) {
	t.Parallel()
	conn := dbtest.Open(t)
	ctx := context.Background()

	orders := map[enums.OrderStatus]string{
		enums.OrderStatusPending:         "1000.00",
		enums.OrderStatusReadyForPayment: "200.00",
		enums.OrderStatusDepositPaid:     "300.00",
		enums.OrderStatusFullyPaid:       "500.00",
		enums.OrderStatusShipped:         "250.00",
		enums.OrderStatusCompleted:       "100.00",
		enums.OrderStatusCancelled:       "999.00",
	}
	for status, total := range orders {
		require.NoError(t, conn.Create(&models.Order{
			ID:               uuid.New(),
			CustomerID:       uuid.New(),
			CustomerName:     "c",
			CustomerEmail:    "c@example.com",
			TotalAmount:      decimal.RequireFromString(total),
			DepositAmount:    decimal.Zero,
			RemainingBalance: decimal.Zero,
			Status:           status,
			PaymentMethod:    enums.PaymentMethodBank,
			Version:          1,
		}).Error)
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, conn.Create(&models.Product{
			ID:       uuid.New(),
			Name:     "p",
			Category: enums.ProductCategoryOnhand,
			Price:    decimal.NewFromInt(1),
			Cost:     decimal.NewFromInt(1),
		}).Error)
	}

	expenseRepo := expenses.NewRepository(conn)
	require.NoError(t, expenseRepo.Create(ctx, &models.Expense{
		ID:          uuid.New(),
		Description: "shipping",
		Amount:      decimal.RequireFromString("120.25"),
		Category:    enums.ExpenseCategoryShipping,
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}))

	svc, err := NewService(conn, expenseRepo)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "850.00", summary.TotalSales.StringFixed(2))
	assert.Equal(t, "120.25", summary.TotalExpenses.StringFixed(2))
	assert.Equal(t, "729.75", summary.GrossProfit.StringFixed(2))
	assert.EqualValues(t, 3, summary.PendingOrders)
	assert.EqualValues(t, 2, summary.FullyPaidOrders)
	assert.EqualValues(t, 1, summary.CompletedOrders)
	assert.EqualValues(t, 2, summary.TotalProducts)
}

func TestSummaryEmpty(t *testing.T) {
	t.Parallel()
	conn := dbtest.Open(t)
	svc, err := NewService(conn, expenses.NewRepository(conn))
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.TotalSales.IsZero())
	assert.True(t, summary.GrossProfit.IsZero())
	assert.Zero(t, summary.PendingOrders)
}
