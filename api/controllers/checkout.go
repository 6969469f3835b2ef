package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/littlemija/littlemija-backend/api/responses"
	"github.com/littlemija/littlemija-backend/api/validators"
	"github.com/littlemija/littlemija-backend/internal/checkout"
	"github.com/littlemija/littlemija-backend/internal/orders"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
)

type checkoutRequest struct {
	Name          string `json:"name" validate:"required,max=120"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address       string `json:"address,omitempty" validate:"omitempty,max=500"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type checkoutResponse struct {
	OrderID         uuid.UUID       `json:"order_id"`
	DepositDeadline *time.Time      `json:"deposit_deadline,omitempty"`
	Order           orders.OrderDTO `json:"order"`
}

// Checkout converts the caller's cart into an order.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "checkout")
			return
		}
		customerID, err := userIDFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(body.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.Checkout(r.Context(), customerID, checkout.Input{
			Name:          body.Name,
			Email:         body.Email,
			Phone:         body.Phone,
			Address:       body.Address,
			PaymentMethod: method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteCreated(w, checkoutResponse{
			OrderID:         result.OrderID,
			DepositDeadline: result.DepositDeadline,
			Order:           orders.ToDTO(*result.Order),
		})
	}
}
