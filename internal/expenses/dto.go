package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
)

type ExpenseDTO struct {
	ID          uuid.UUID             `json:"id"`
	Description string                `json:"description"`
	Amount      decimal.Decimal       `json:"amount"`
	Category    enums.ExpenseCategory `json:"category"`
	Date        time.Time             `json:"date"`
	CreatedAt   time.Time             `json:"created_at"`
}

func ToDTO(e models.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
	}
}

func ToDTOs(list []models.Expense) []ExpenseDTO {
	out := make([]ExpenseDTO, 0, len(list))
	for _, e := range list {
		out = append(out, ToDTO(e))
	}
	return out
}
