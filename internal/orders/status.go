package orders

import (
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
)

// transitions is the complete order lifecycle graph. Anything absent is illegal.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:         {enums.OrderStatusReadyForPayment, enums.OrderStatusCancelled},
	enums.OrderStatusReadyForPayment: {enums.OrderStatusDepositPaid, enums.OrderStatusFullyPaid, enums.OrderStatusCancelled},
	enums.OrderStatusDepositPaid:     {enums.OrderStatusFullyPaid, enums.OrderStatusCancelled},
	enums.OrderStatusFullyPaid:       {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:         {enums.OrderStatusCompleted},
}

type edge struct {
	from enums.OrderStatus
	to   enums.OrderStatus
}

// restrictedEdges lists, per non-master staff role, the only edges that role may take.
var restrictedEdges = map[enums.Role][]edge{
	enums.RoleSecond: {
		{from: enums.OrderStatusFullyPaid, to: enums.OrderStatusShipped},
		{from: enums.OrderStatusShipped, to: enums.OrderStatusShipped},
	},
}

// expirableStatuses are the statuses an unpaid deposit can still expire from.
var expirableStatuses = []enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusReadyForPayment}

// CanTransition reports whether from -> to is an edge of the lifecycle graph.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// isReship reports whether from -> to re-marks a shipped order, which only changes its shipping
// method. It is not a lifecycle edge.
func isReship(from, to enums.OrderStatus) bool {
	return from == enums.OrderStatusShipped && to == enums.OrderStatusShipped
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s enums.OrderStatus) []enums.OrderStatus {
	return append([]enums.OrderStatus(nil), transitions[s]...)
}

// Authorize reports whether role may move an order from -> to through a staff status update.
func Authorize(role enums.Role, from, to enums.OrderStatus) error {
	switch role {
	case enums.RoleMaster:
		return nil
	case enums.RoleCustomer:
		return pkgerrors.New(pkgerrors.CodeForbidden, "customers cannot change order status")
	}
	for _, allowed := range restrictedEdges[role] {
		if allowed.from == from && allowed.to == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "role may not perform this transition").
		WithDetails(TransitionDetails{From: from, To: to, Role: role})
}

// TransitionDetails is attached to transition related errors.
type TransitionDetails struct {
	From enums.OrderStatus `json:"from"`
	To   enums.OrderStatus `json:"to"`
	Role enums.Role        `json:"role,omitempty"`
}

func invalidTransition(from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeInvalidTransition, "order status transition not allowed").
		WithDetails(TransitionDetails{From: from, To: to})
}
