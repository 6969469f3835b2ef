package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/api/responses"
	"github.com/littlemija/littlemija-backend/api/validators"
	"github.com/littlemija/littlemija-backend/internal/expenses"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
)

type createExpenseRequest struct {
	Description string          `json:"description" validate:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0,money"`
	Category    string          `json:"category" validate:"required"`
	Date        *time.Time      `json:"date,omitempty"`
}

func AdminListExpenses(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "expenses")
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expenses.ToDTOs(list))
	}
}

func AdminCreateExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "expenses")
			return
		}

		var body createExpenseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := enums.ParseExpenseCategory(strings.TrimSpace(body.Category))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}
		input := expenses.RecordExpenseInput{
			Description: body.Description,
			Amount:      body.Amount,
			Category:    category,
		}
		if body.Date != nil {
			input.Date = *body.Date
		}

		expense, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, expenses.ToDTO(*expense))
	}
}
