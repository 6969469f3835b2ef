package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
	"github.com/littlemija/littlemija-backend/pkg/metrics"
	"github.com/littlemija/littlemija-backend/pkg/outbox"
	"github.com/littlemija/littlemija-backend/pkg/outbox/payloads"
)

// View selects a staff listing.
type View string

const (
	ViewAll         View = ""
	ViewReadyToShip View = "ready_to_ship"
)

// ParseView validates the listing filter query value.
func ParseView(value string) (View, error) {
	switch View(value) {
	case ViewAll, ViewReadyToShip:
		return View(value), nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order filter %q", value))
	}
}

// Service drives orders through their lifecycle.
type Service interface {
	ListAll(ctx context.Context, actor Actor, view View) ([]models.Order, error)
	ListForCustomer(ctx context.Context, actor Actor, customerID uuid.UUID) ([]models.Order, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error)
	UpdateDeposit(ctx context.Context, actor Actor, orderID uuid.UUID, amount decimal.Decimal) (*models.Order, error)
	RecordPayment(ctx context.Context, actor Actor, orderID uuid.UUID, input PaymentInput) (*models.Order, error)
}

// UpdateStatusInput is a staff request to move an order along the graph.
type UpdateStatusInput struct {
	Status         enums.OrderStatus
	ShippingMethod *enums.ShippingMethod
	DepositAmount  *decimal.Decimal
}

// PaymentInput is a customer (or master) asserting a payment.
type PaymentInput struct {
	PaymentMethod enums.PaymentMethod
	IsFull        bool
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Repo    Repository
	Tx      db.TxRunner
	Stock   StockReleaser
	Outbox  outbox.Emitter
	Sweeper *Sweeper
	Metrics *metrics.OrderMetrics
	Logger  *logger.Logger
	Now     func() time.Time
}

type service struct {
	repo    Repository
	tx      db.TxRunner
	stock   StockReleaser
	outbox  outbox.Emitter
	sweeper *Sweeper
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Stock == nil {
		return nil, fmt.Errorf("stock releaser required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if p.Sweeper == nil {
		return nil, fmt.Errorf("sweeper required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &service{
		repo:    p.Repo,
		tx:      p.Tx,
		stock:   p.Stock,
		outbox:  p.Outbox,
		sweeper: p.Sweeper,
		metrics: p.Metrics,
		logg:    p.Logger,
		now:     p.Now,
	}, nil
}

func (s *service) ListAll(ctx context.Context, actor Actor, view View) ([]models.Order, error) {
	if !actor.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if view != ViewReadyToShip {
		return s.listSwept(ctx, ListFilter{})
	}

	// The read still expires overdue deposits; only unpaid orders can be affected.
	if _, err := s.listSwept(ctx, ListFilter{Statuses: expirableStatuses}); err != nil {
		return nil, err
	}
	ready, err := s.repo.List(ctx, ListFilter{Statuses: []enums.OrderStatus{enums.OrderStatusFullyPaid}})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders ready to ship")
	}
	return ready, nil
}

func (s *service) ListForCustomer(ctx context.Context, actor Actor, customerID uuid.UUID) ([]models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !actor.Role.IsStaff() && actor.UserID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot read another customer's orders")
	}
	return s.listSwept(ctx, ListFilter{CustomerID: &customerID})
}

// listSwept reads orders and expires any whose deposit deadline has passed before returning them.
func (s *service) listSwept(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}

	swept, releases := Sweep(orders, s.now())
	if len(swept) == 0 {
		return orders, nil
	}

	// Apply logs its own failures; unresolved orders keep their stored view.
	resolved, _ := s.sweeper.Apply(ctx, swept, releases)
	for i := range orders {
		if view, ok := resolved[orders[i].ID]; ok {
			orders[i] = view
		}
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && !actor.owns(order) {
		// Hide other customers' orders entirely.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor Actor, orderID uuid.UUID, input UpdateStatusInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", input.Status))
	}
	if err := validateEdgeFields(input); err != nil {
		return nil, err
	}

	var (
		updated *models.Order
		from    enums.OrderStatus
		units   int
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		to := input.Status

		if !CanTransition(from, to) && !isReship(from, to) {
			return invalidTransition(from, to)
		}
		if err := Authorize(actor.Role, from, to); err != nil {
			return err
		}

		now := s.now().UTC()
		updates := map[string]any{"status": to, "updated_at": now}
		switch to {
		case enums.OrderStatusShipped:
			updates["shipping_method"] = *input.ShippingMethod
		case enums.OrderStatusDepositPaid:
			if input.DepositAmount != nil {
				deposit, ok := roundDeposit(*input.DepositAmount, order.TotalAmount)
				if !ok {
					return invalidDeposit(*input.DepositAmount, order.TotalAmount)
				}
				updates["deposit_amount"] = deposit
				updates["remaining_balance"] = order.TotalAmount.Sub(deposit)
			}
		}

		if err := s.swap(ctx, repo, order.ID, from, updates); err != nil {
			return err
		}

		if to == enums.OrderStatusCancelled {
			for _, line := range order.Lines {
				if err := s.stock.Release(ctx, tx, line.ProductID, line.Quantity); err != nil {
					return err
				}
				units += line.Quantity
			}
		}

		updated, err = s.load(ctx, repo, order.ID)
		if err != nil {
			return err
		}

		eventType := enums.EventOrderStatusChanged
		if to == enums.OrderStatusCancelled {
			eventType = enums.EventOrderCancelled
		}
		return emit(ctx, s.outbox, tx, statusChangedEvent(eventType, actor.ref(), from, updated, units, now))
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(ctx, actor, updated, from, units)
	return updated, nil
}

func (s *service) UpdateDeposit(ctx context.Context, actor Actor, orderID uuid.UUID, amount decimal.Decimal) (*models.Order, error) {
	if actor.Role != enums.RoleMaster {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the master role may edit deposits")
	}

	var (
		updated  *models.Order
		previous decimal.Decimal
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if !depositEditable(order.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deposit can only be edited before full payment").
				WithDetails(map[string]any{"status": order.Status})
		}
		deposit, ok := roundDeposit(amount, order.TotalAmount)
		if !ok {
			return invalidDeposit(amount, order.TotalAmount)
		}

		previous = order.DepositAmount
		now := s.now().UTC()
		if err := s.swap(ctx, repo, order.ID, order.Status, map[string]any{
			"deposit_amount":    deposit,
			"remaining_balance": order.TotalAmount.Sub(deposit),
			"updated_at":        now,
		}); err != nil {
			return err
		}

		updated, err = s.load(ctx, repo, order.ID)
		if err != nil {
			return err
		}
		return emit(ctx, s.outbox, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDepositUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   updated.ID,
			Actor:         actor.ref(),
			OccurredAt:    now,
			Data: payloads.OrderDepositUpdatedEvent{
				OrderID:          updated.ID,
				PreviousDeposit:  previous,
				DepositAmount:    updated.DepositAmount,
				RemainingBalance: updated.RemainingBalance,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithOrderID(ctx, updated.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"previous_deposit": previous.StringFixed(depositScale),
		"deposit":          updated.DepositAmount.StringFixed(depositScale),
	})
	s.logg.Info(logCtx, "order deposit updated")
	return updated, nil
}

func (s *service) RecordPayment(ctx context.Context, actor Actor, orderID uuid.UUID, input PaymentInput) (*models.Order, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if actor.Role != enums.RoleCustomer && actor.Role != enums.RoleMaster {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not record payments")
	}

	to := enums.OrderStatusDepositPaid
	if input.IsFull {
		to = enums.OrderStatusFullyPaid
	}

	var (
		updated *models.Order
		from    enums.OrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.load(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if actor.Role == enums.RoleCustomer && !actor.owns(order) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
		}
		from = order.Status
		if !CanTransition(from, to) {
			return invalidTransition(from, to)
		}

		now := s.now().UTC()
		if err := s.swap(ctx, repo, order.ID, from, map[string]any{
			"status":         to,
			"payment_method": input.PaymentMethod,
			"updated_at":     now,
		}); err != nil {
			return err
		}

		updated, err = s.load(ctx, repo, order.ID)
		if err != nil {
			return err
		}
		return emit(ctx, s.outbox, tx, statusChangedEvent(enums.EventOrderPaymentRecorded, actor.ref(), from, updated, 0, now))
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(ctx, actor, updated, from, 0)
	return updated, nil
}

func (s *service) load(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

// swap persists updates only if the order is still in status from.
func (s *service) swap(ctx context.Context, repo Repository, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) error {
	ok, err := repo.CompareAndSwap(ctx, orderID, []enums.OrderStatus{from}, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order")
	}
	if ok {
		return nil
	}
	exists, err := repo.Exists(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check order")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.New(pkgerrors.CodeStaleOrderState, "order changed since it was read").
		WithDetails(map[string]any{"expected_status": from})
}

func (s *service) recordTransition(ctx context.Context, actor Actor, order *models.Order, from enums.OrderStatus, units int) {
	msg := "order status changed"
	if isReship(from, order.Status) {
		msg = "order shipping method changed"
	} else {
		s.metrics.IncTransition(string(from), string(order.Status))
	}
	s.metrics.AddUnitsReleased(units)

	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	logCtx = s.logg.WithActorRole(logCtx, string(actor.Role))
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"from":           from,
		"to":             order.Status,
		"released_units": units,
	})
	s.logg.Info(logCtx, msg)
}

func validateEdgeFields(input UpdateStatusInput) error {
	if input.Status == enums.OrderStatusShipped {
		if input.ShippingMethod == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "shipping method required to ship an order")
		}
		if !input.ShippingMethod.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shipping method %q", *input.ShippingMethod))
		}
	} else if input.ShippingMethod != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping method only applies when shipping")
	}
	if input.DepositAmount != nil && input.Status != enums.OrderStatusDepositPaid {
		return pkgerrors.New(pkgerrors.CodeValidation, "deposit amount only applies when marking the deposit paid")
	}
	return nil
}

func depositEditable(status enums.OrderStatus) bool {
	switch status {
	case enums.OrderStatusPending, enums.OrderStatusReadyForPayment, enums.OrderStatusDepositPaid:
		return true
	default:
		return false
	}
}

func invalidDeposit(amount, total decimal.Decimal) error {
	return pkgerrors.New(pkgerrors.CodeInvalidDepositAmount, "deposit must be greater than zero and at most the order total").
		WithDetails(map[string]string{
			"amount": amount.String(),
			"total":  total.StringFixed(depositScale),
		})
}
