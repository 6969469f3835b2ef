package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/enums"
)

// Expense is an append-only bookkeeping record.
type Expense struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Description string                `gorm:"column:description;not null"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Category    enums.ExpenseCategory `gorm:"column:category;type:varchar(16);not null"`
	Date        time.Time             `gorm:"column:date;not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
