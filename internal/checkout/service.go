package checkout

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/internal/cart"
	"github.com/littlemija/littlemija-backend/internal/orders"
	"github.com/littlemija/littlemija-backend/pkg/db"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
	"github.com/littlemija/littlemija-backend/pkg/metrics"
	"github.com/littlemija/littlemija-backend/pkg/outbox"
	"github.com/littlemija/littlemija-backend/pkg/outbox/payloads"
)

type stockReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Service turns a customer's cart into an order.
type Service interface {
	Checkout(ctx context.Context, customerID uuid.UUID, input Input) (*Result, error)
}

// Input is the contact snapshot and declared payment method captured with the order.
type Input struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	PaymentMethod enums.PaymentMethod
}

// Result is returned to the customer after a successful checkout.
type Result struct {
	OrderID         uuid.UUID
	DepositDeadline *time.Time
	Order           *models.Order
}

// Params wires the checkout service.
type Params struct {
	Tx      db.TxRunner
	Cart    *cart.Repository
	Orders  orders.Repository
	Stock   stockReserver
	Outbox  outbox.Emitter
	Metrics *metrics.OrderMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	tx      db.TxRunner
	cart    *cart.Repository
	orders  orders.Repository
	stock   stockReserver
	outbox  outbox.Emitter
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the checkout service.
func NewService(p Params) (Service, error) {
	if p.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if p.Cart == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if p.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Stock == nil {
		return nil, fmt.Errorf("stock reserver required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		tx:      p.Tx,
		cart:    p.Cart,
		orders:  p.Orders,
		stock:   p.Stock,
		outbox:  p.Outbox,
		metrics: p.Metrics,
		logg:    p.Logger,
		now:     p.Now,
	}, nil
}

// Checkout reserves stock for every cart line, places the order and empties the cart in a
// single transaction. Any failure leaves stock, orders and cart untouched.
func (s *service) Checkout(ctx context.Context, customerID uuid.UUID, input Input) (*Result, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cart.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		lines, err := cartRepo.ListByCustomer(ctx, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		quote := orders.Quote(quoteLines(lines), createdAt)

		for _, line := range lines {
			if err := s.stock.Reserve(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		order = &models.Order{
			ID:               uuid.New(),
			CustomerID:       customerID,
			CustomerName:     input.Name,
			CustomerEmail:    input.Email,
			CustomerPhone:    input.Phone,
			CustomerAddress:  input.Address,
			TotalAmount:      quote.Total,
			DepositAmount:    quote.Deposit,
			RemainingBalance: quote.RemainingBalance,
			Status:           quote.Status,
			DepositDeadline:  quote.DepositDeadline,
			PaymentMethod:    input.PaymentMethod,
			Version:          1,
			Lines:            orderLines(lines),
			CreatedAt:        createdAt,
			UpdatedAt:        createdAt,
		}
		if err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}

		if err := s.emitOrderCreated(ctx, tx, order); err != nil {
			return err
		}

		if err := cartRepo.DeleteAll(ctx, customerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCheckout(string(order.Status))
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":    order.ID.String(),
		"customer_id": customerID.String(),
	})
	s.logg.Info(logCtx, fmt.Sprintf("order placed with status %s", order.Status))

	return &Result{OrderID: order.ID, DepositDeadline: order.DepositDeadline, Order: order}, nil
}

func (s *service) emitOrderCreated(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	lines := make([]payloads.OrderLine, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, payloads.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	customerID := order.CustomerID
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         &outbox.ActorRef{UserID: &customerID, Role: string(enums.RoleCustomer)},
		OccurredAt:    order.CreatedAt,
		Data: payloads.OrderCreatedEvent{
			OrderID:         order.ID,
			CustomerID:      order.CustomerID,
			Status:          order.Status,
			TotalAmount:     order.TotalAmount,
			DepositAmount:   order.DepositAmount,
			DepositDeadline: order.DepositDeadline,
			Lines:           lines,
		},
	})
}

func quoteLines(lines []models.CartLine) []orders.QuoteLine {
	out := make([]orders.QuoteLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, orders.QuoteLine{
			Category:  line.ProductCategory,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return out
}

func orderLines(lines []models.CartLine) []models.OrderLine {
	out := make([]models.OrderLine, 0, len(lines))
	for i, line := range lines {
		out = append(out, models.OrderLine{
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			ProductCategory: line.ProductCategory,
			UnitPrice:       line.UnitPrice,
			Quantity:        line.Quantity,
			Position:        i,
		})
	}
	return out
}

func normalizeInput(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)

	if in.Name == "" {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return in, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if !in.PaymentMethod.IsValid() {
		return in, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", in.PaymentMethod))
	}
	return in, nil
}
