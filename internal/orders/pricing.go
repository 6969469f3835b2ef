package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/enums"
)

const (
	// DepositWindow is how long a pasabuy order may wait for its deposit.
	DepositWindow = 24 * time.Hour
	depositScale  = 2
)

// DepositRate is the share of the total due up front on pasabuy orders.
var DepositRate = decimal.NewFromFloat(0.30)

// QuoteLine is the part of a cart line that pricing needs.
type QuoteLine struct {
	Category  enums.ProductCategory
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quotation is the money and initial state of an order about to be placed.
type Quotation struct {
	Total            decimal.Decimal
	Deposit          decimal.Decimal
	RemainingBalance decimal.Decimal
	Status           enums.OrderStatus
	DepositDeadline  *time.Time
	HasPasabuy       bool
}

// Quote prices lines placed at createdAt. Any pasabuy line puts the whole order on the deposit
// path; otherwise the order is paid in full immediately.
func Quote(lines []QuoteLine, createdAt time.Time) Quotation {
	total := decimal.Zero
	hasPasabuy := false
	for _, line := range lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		if line.Category.RequiresDeposit() {
			hasPasabuy = true
		}
	}
	total = total.Round(depositScale)

	if !hasPasabuy {
		return Quotation{
			Total:            total,
			Deposit:          total,
			RemainingBalance: decimal.Zero,
			Status:           enums.OrderStatusFullyPaid,
		}
	}

	deposit := total.Mul(DepositRate).Round(depositScale)
	deadline := createdAt.Add(DepositWindow)
	return Quotation{
		Total:            total,
		Deposit:          deposit,
		RemainingBalance: total.Sub(deposit),
		Status:           enums.OrderStatusPending,
		DepositDeadline:  &deadline,
		HasPasabuy:       true,
	}
}

// roundDeposit rounds amount to centavos and reports whether the rounded value can be the deposit
// of an order totalling total.
func roundDeposit(amount, total decimal.Decimal) (decimal.Decimal, bool) {
	deposit := amount.Round(depositScale)
	return deposit, deposit.IsPositive() && deposit.LessThanOrEqual(total)
}
