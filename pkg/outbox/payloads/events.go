// Package payloads holds the JSON bodies carried in outbox envelopes.
package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/enums"
)

type OrderLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderCreatedEvent is emitted by checkout.
type OrderCreatedEvent struct {
	OrderID         uuid.UUID         `json:"order_id"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	Status          enums.OrderStatus `json:"status"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	DepositAmount   decimal.Decimal   `json:"deposit_amount"`
	DepositDeadline *time.Time        `json:"deposit_deadline,omitempty"`
	Lines           []OrderLine       `json:"lines"`
}

// OrderStatusChangedEvent is emitted for every applied transition, including cancellations.
type OrderStatusChangedEvent struct {
	OrderID          uuid.UUID             `json:"order_id"`
	CustomerID       uuid.UUID             `json:"customer_id"`
	From             enums.OrderStatus     `json:"from"`
	To               enums.OrderStatus     `json:"to"`
	DepositAmount    decimal.Decimal       `json:"deposit_amount"`
	RemainingBalance decimal.Decimal       `json:"remaining_balance"`
	ShippingMethod   *enums.ShippingMethod `json:"shipping_method,omitempty"`
	PaymentMethod    enums.PaymentMethod   `json:"payment_method,omitempty"`
	ReleasedUnits    int                   `json:"released_units,omitempty"`
}

// OrderDepositUpdatedEvent is emitted when staff edit the deposit without a status change.
type OrderDepositUpdatedEvent struct {
	OrderID          uuid.UUID       `json:"order_id"`
	PreviousDeposit  decimal.Decimal `json:"previous_deposit"`
	DepositAmount    decimal.Decimal `json:"deposit_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}
