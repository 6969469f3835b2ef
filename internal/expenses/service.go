package expenses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
)

// Service records and lists shop expenses.
type Service interface {
	Record(ctx context.Context, input RecordExpenseInput) (*models.Expense, error)
	List(ctx context.Context) ([]models.Expense, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// RecordExpenseInput captures the immutable data an expense requires. A zero Date means today.
type RecordExpenseInput struct {
	Description string                `json:"description"`
	Amount      decimal.Decimal       `json:"amount"`
	Category    enums.ExpenseCategory `json:"category"`
	Date        time.Time             `json:"date"`
}

// NewService wires an expense service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expense repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, input RecordExpenseInput) (*models.Expense, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	amount := input.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be at least one centavo")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid expense category %q", input.Category))
	}

	date := input.Date
	if date.IsZero() {
		date = s.now()
	}
	expense := &models.Expense{
		ID:          uuid.New(),
		Description: description,
		Amount:      amount,
		Category:    input.Category,
		Date:        date.UTC(),
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert expense")
	}
	return expense, nil
}

func (s *service) List(ctx context.Context) ([]models.Expense, error) {
	expenses, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list expenses")
	}
	return expenses, nil
}
