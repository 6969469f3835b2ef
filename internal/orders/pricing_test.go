package orders

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
)

var t0 = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestQuotePasabuyTakesThirtyPercentDeposit(t *testing.T) {
	t.Parallel()

	q := Quote([]QuoteLine{
		{Category: enums.ProductCategoryPasabuy, UnitPrice: dec("500"), Quantity: 2},
	}, t0)

	require.True(t, q.HasPasabuy)
	require.True(t, dec("1000").Equal(q.Total))
	require.True(t, dec("300").Equal(q.Deposit))
	require.True(t, dec("700").Equal(q.RemainingBalance))
	require.Equal(t, enums.OrderStatusPending, q.Status)
	require.NotNil(t, q.DepositDeadline)
	require.Equal(t, t0.Add(24*time.Hour), *q.DepositDeadline)
}

func TestQuoteWithoutPasabuyIsPaidInFull(t *testing.T) {
	t.Parallel()

	q := Quote([]QuoteLine{
		{Category: enums.ProductCategoryOnhand, UnitPrice: dec("200"), Quantity: 2},
		{Category: enums.ProductCategorySale, UnitPrice: dec("100"), Quantity: 1},
	}, t0)

	require.False(t, q.HasPasabuy)
	require.True(t, dec("500").Equal(q.Total))
	require.True(t, q.Deposit.Equal(q.Total))
	require.True(t, q.RemainingBalance.IsZero())
	require.Equal(t, enums.OrderStatusFullyPaid, q.Status)
	require.Nil(t, q.DepositDeadline)

	order := models.Order{Status: q.Status}
	require.True(t, order.DepositPaid())
	require.True(t, order.FullPaid())
}

func TestQuoteMixedCartNeedsDeposit(t *testing.T) {
	t.Parallel()

	q := Quote([]QuoteLine{
		{Category: enums.ProductCategoryOnhand, UnitPrice: dec("300"), Quantity: 1},
		{Category: enums.ProductCategoryPasabuy, UnitPrice: dec("100"), Quantity: 1},
	}, t0)

	require.Equal(t, enums.OrderStatusPending, q.Status)
	require.True(t, dec("120").Equal(q.Deposit))
	require.True(t, dec("280").Equal(q.RemainingBalance))
}

func TestQuoteRoundsDepositToCents(t *testing.T) {
	t.Parallel()

	q := Quote([]QuoteLine{
		{Category: enums.ProductCategoryPasabuy, UnitPrice: dec("333.33"), Quantity: 1},
	}, t0)

	require.Equal(t, "100.00", q.Deposit.StringFixed(2))
	require.Equal(t, "233.33", q.RemainingBalance.StringFixed(2))
	require.True(t, q.Total.Equal(q.Deposit.Add(q.RemainingBalance)))
}

func TestRoundDeposit(t *testing.T) {
	t.Parallel()

	total := dec("400")
	accepted := map[string]string{"150": "150", "400": "400", "120.456": "120.46", "400.004": "400"}
	for raw, want := range accepted {
		got, ok := roundDeposit(dec(raw), total)
		require.True(t, ok, raw)
		require.True(t, dec(want).Equal(got), "%s rounded to %s", raw, got)
	}
	for _, raw := range []string{"0", "-1", "0.004", "0.001", "400.01", "400.005"} {
		_, ok := roundDeposit(dec(raw), total)
		require.False(t, ok, raw)
	}
}
