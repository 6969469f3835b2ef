package expenses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db/dbtest"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
)

type fakeRepository struct {
	created  []*models.Expense
	createFn func(ctx context.Context, expense *models.Expense) error
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, expense *models.Expense) error {
	if f.createFn != nil {
		return f.createFn(ctx, expense)
	}
	f.created = append(f.created, expense)
	return nil
}

func (f *fakeRepository) List(ctx context.Context) ([]models.Expense, error) {
	return nil, nil
}

func (f *fakeRepository) Total(ctx context.Context) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func TestService_Record(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	today := time.Date(2026, 3, 5, 14, 0, 0, 0, time.FixedZone("PHT", 8*3600))
	svc.(*service).now = func() time.Time { return today }

	expense, err := svc.Record(context.Background(), RecordExpenseInput{
		Description: "  Bubble mailers ",
		Amount:      decimal.RequireFromString("349.999"),
		Category:    enums.ExpenseCategorySupplies,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if expense.Description != "Bubble mailers" {
		t.Fatalf("expected trimmed description, got %q", expense.Description)
	}
	if expense.Amount.StringFixed(2) != "350.00" {
		t.Fatalf("expected amount rounded to cents, got %s", expense.Amount)
	}
	if !expense.Date.Equal(today) || expense.Date.Location() != time.UTC {
		t.Fatalf("expected date defaulted to now in UTC, got %s", expense.Date)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.created))
	}
}

func TestService_RecordValidation(t *testing.T) {
	svc, _ := NewService(&fakeRepository{})
	cases := map[string]RecordExpenseInput{
		"blank description":  {Description: " ", Amount: decimal.NewFromInt(10), Category: enums.ExpenseCategoryRent},
		"zero amount":        {Description: "rent", Amount: decimal.Zero, Category: enums.ExpenseCategoryRent},
		"sub-centavo amount": {Description: "rent", Amount: decimal.RequireFromString("0.004"), Category: enums.ExpenseCategoryRent},
		"bad category":       {Description: "rent", Amount: decimal.NewFromInt(10), Category: "Food"},
	}
	for name, input := range cases {
		if _, err := svc.Record(context.Background(), input); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestService_RecordRepositoryError(t *testing.T) {
	repo := &fakeRepository{createFn: func(context.Context, *models.Expense) error {
		return errors.New("boom")
	}}
	svc, _ := NewService(repo)
	_, err := svc.Record(context.Background(), RecordExpenseInput{
		Description: "Courier",
		Amount:      decimal.NewFromInt(120),
		Category:    enums.ExpenseCategoryShipping,
	})
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestRepository_ListAndTotal(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	total, err := repo.Total(ctx)
	if err != nil || !total.IsZero() {
		t.Fatalf("expected zero total on empty table, got %s (%v)", total, err)
	}

	svc, _ := NewService(repo)
	for i, amount := range []string{"100.50", "49.50", "250.00"} {
		_, err := svc.Record(ctx, RecordExpenseInput{
			Description: "expense",
			Amount:      decimal.RequireFromString(amount),
			Category:    enums.ExpenseCategoryOther,
			Date:        time.Date(2026, 3, i+1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Amount.StringFixed(2) != "250.00" {
		t.Fatalf("expected newest first, got %+v", list)
	}

	total, err = repo.Total(ctx)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total.StringFixed(2) != "400.00" {
		t.Fatalf("expected 400.00, got %s", total)
	}
}
