// Package stats summarizes sales, expenses and order counts for the master dashboard.
package stats

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
)

var (
	salesStatuses     = []enums.OrderStatus{enums.OrderStatusFullyPaid, enums.OrderStatusShipped, enums.OrderStatusCompleted}
	pendingStatuses   = []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusReadyForPayment, enums.OrderStatusDepositPaid}
	fullyPaidStatuses = []enums.OrderStatus{enums.OrderStatusFullyPaid, enums.OrderStatusShipped}
)

// Summary is the dashboard payload.
type Summary struct {
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	GrossProfit     decimal.Decimal `json:"gross_profit"`
	PendingOrders   int64           `json:"pending_orders"`
	FullyPaidOrders int64           `json:"fully_paid_orders"`
	CompletedOrders int64           `json:"completed_orders"`
	TotalProducts   int64           `json:"total_products"`
}

type expenseTotaler interface {
	Total(ctx context.Context) (decimal.Decimal, error)
}

type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	db       *gorm.DB
	expenses expenseTotaler
}

func NewService(db *gorm.DB, expenses expenseTotaler) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database required")
	}
	if expenses == nil {
		return nil, fmt.Errorf("expense totaler required")
	}
	return &service{db: db, expenses: expenses}, nil
}

// Summary reads stored order statuses. Orders whose deposit lapsed but that no listing has swept
// yet still count as pending.
func (s *service) Summary(ctx context.Context) (*Summary, error) {
	sales, err := s.sumOrders(ctx, salesStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum sales")
	}
	spent, err := s.expenses.Total(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum expenses")
	}

	out := &Summary{
		TotalSales:    sales.Round(2),
		TotalExpenses: spent.Round(2),
		GrossProfit:   sales.Sub(spent).Round(2),
	}
	counts := []struct {
		statuses []enums.OrderStatus
		dest     *int64
	}{
		{pendingStatuses, &out.PendingOrders},
		{fullyPaidStatuses, &out.FullyPaidOrders},
		{[]enums.OrderStatus{enums.OrderStatusCompleted}, &out.CompletedOrders},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("status IN ?", c.statuses).Count(c.dest).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count orders")
		}
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&out.TotalProducts).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}
	return out, nil
}

func (s *service) sumOrders(ctx context.Context, statuses []enums.OrderStatus) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status IN ?", statuses).
		Select("SUM(total_amount)").
		Row().
		Scan(&total)
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}
