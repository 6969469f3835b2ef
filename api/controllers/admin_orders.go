package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/api/responses"
	"github.com/littlemija/littlemija-backend/api/validators"
	"github.com/littlemija/littlemija-backend/internal/orders"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
)

type updateStatusRequest struct {
	Status         string           `json:"status" validate:"required"`
	ShippingMethod *string          `json:"shipping_method,omitempty"`
	DepositAmount  *decimal.Decimal `json:"deposit_amount,omitempty" validate:"omitempty,gt=0,money"`
}

type updateDepositRequest struct {
	DepositAmount decimal.Decimal `json:"deposit_amount" validate:"gt=0,money"`
}

// AdminListOrders lists every order. ?filter=ready_to_ship narrows to fully paid orders.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "orders")
			return
		}
		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := orders.ParseView(strings.TrimSpace(r.URL.Query().Get("filter")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListAll(r.Context(), actor, view)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToDTOs(list))
	}
}

func AdminCustomerOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "orders")
			return
		}
		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := validators.ParseUUIDParam(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListForCustomer(r.Context(), actor, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToDTOs(list))
	}
}

func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "orders")
			return
		}
		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), actor, orderID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToDTO(*order))
	}
}

func AdminUpdateDeposit(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "orders")
			return
		}
		actor, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateDepositRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateDeposit(r.Context(), actor, orderID, body.DepositAmount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.ToDTO(*order))
	}
}

func (b updateStatusRequest) toInput() (orders.UpdateStatusInput, error) {
	status, err := enums.ParseOrderStatus(strings.TrimSpace(b.Status))
	if err != nil {
		return orders.UpdateStatusInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	input := orders.UpdateStatusInput{Status: status, DepositAmount: b.DepositAmount}
	if b.ShippingMethod != nil {
		method, err := enums.ParseShippingMethod(strings.TrimSpace(*b.ShippingMethod))
		if err != nil {
			return orders.UpdateStatusInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping method")
		}
		input.ShippingMethod = &method
	}
	return input, nil
}
