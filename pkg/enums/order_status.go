package enums

// OrderStatus is the single source of truth for an order's lifecycle; payment flags derive from it.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusReadyForPayment OrderStatus = "ready_for_payment"
	OrderStatusDepositPaid     OrderStatus = "deposit_paid"
	OrderStatusFullyPaid       OrderStatus = "fully_paid"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusReadyForPayment,
	OrderStatusDepositPaid,
	OrderStatusFullyPaid,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool { return oneOf(s, orderStatuses) }

// IsTerminal reports whether no further transition may leave this status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// DepositPaid is true once a deposit (or the full amount) has been asserted.
func (s OrderStatus) DepositPaid() bool {
	switch s {
	case OrderStatusDepositPaid, OrderStatusFullyPaid, OrderStatusShipped, OrderStatusCompleted:
		return true
	default:
		return false
	}
}

// FullPaid is true once the full amount has been asserted.
func (s OrderStatus) FullPaid() bool {
	switch s {
	case OrderStatusFullyPaid, OrderStatusShipped, OrderStatusCompleted:
		return true
	default:
		return false
	}
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parseOneOf("order status", value, orderStatuses)
}
