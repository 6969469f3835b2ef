package checkout

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/internal/cart"
	"github.com/littlemija/littlemija-backend/internal/inventory"
	"github.com/littlemija/littlemija-backend/internal/orders"
	"github.com/littlemija/littlemija-backend/internal/products"
	"github.com/littlemija/littlemija-backend/pkg/db"
	"github.com/littlemija/littlemija-backend/pkg/db/dbtest"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/outbox"
	"github.com/littlemija/littlemija-backend/pkg/outbox/payloads"
)

var t0 = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db       *gorm.DB
	clock    *testClock
	cart     cart.Service
	checkout Service
	orders   orders.Service
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	client := db.FromConn(conn)
	clock := &testClock{now: t0}

	ledger, err := inventory.NewLedger(conn, nil)
	require.NoError(t, err)
	emitter := outbox.NewService(outbox.NewRepository(conn), nil)
	cartRepo := cart.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	cartSvc, err := cart.NewService(cartRepo, client, products.NewRepository(conn))
	require.NoError(t, err)

	checkoutSvc, err := NewService(Params{
		Tx:     client,
		Cart:   cartRepo,
		Orders: orderRepo,
		Stock:  ledger,
		Outbox: emitter,
		Now:    clock.Now,
	})
	require.NoError(t, err)

	sweeper, err := orders.NewSweeper(orders.SweeperParams{
		Repo:   orderRepo,
		Tx:     client,
		Stock:  ledger,
		Outbox: emitter,
		Now:    clock.Now,
	})
	require.NoError(t, err)
	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:    orderRepo,
		Tx:      client,
		Stock:   ledger,
		Outbox:  emitter,
		Sweeper: sweeper,
		Now:     clock.Now,
	})
	require.NoError(t, err)

	return &fixture{db: conn, clock: clock, cart: cartSvc, checkout: checkoutSvc, orders: orderSvc}
}

func (f *fixture) product(t testing.TB, name string, category enums.ProductCategory, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Cost:     decimal.NewFromInt(1),
		Stock:    stock,
	}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) stock(t testing.TB, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, "id = ?", id).Error)
	return p.Stock
}

func contact() Input {
	return Input{
		Name:          "Maria Santos",
		Email:         " Maria@Example.com ",
		Phone:         "0917 000 0000",
		Address:       "12 Mabini St, Quezon City",
		PaymentMethod: enums.PaymentMethodGCash,
	}
}

func TestCheckoutPasabuyOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	customer := uuid.New()
	bonnet := f.product(t, "Bonnet", enums.ProductCategoryPasabuy, "400.00", 5)
	romper := f.product(t, "Romper", enums.ProductCategoryOnhand, "300.00", 2)

	_, err := f.cart.Add(ctx, customer, bonnet.ID, 1)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, customer, romper.ID, 2)
	require.NoError(t, err)

	res, err := f.checkout.Checkout(ctx, customer, contact())
	require.NoError(t, err)

	order := res.Order
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.Equal(t, "1000.00", order.TotalAmount.StringFixed(2))
	require.Equal(t, "300.00", order.DepositAmount.StringFixed(2))
	require.Equal(t, "700.00", order.RemainingBalance.StringFixed(2))
	require.NotNil(t, res.DepositDeadline)
	require.True(t, res.DepositDeadline.Equal(t0.Add(24*time.Hour)))
	require.Equal(t, "maria@example.com", order.CustomerEmail)
	require.Equal(t, 1, order.Version)
	require.False(t, order.DepositPaid())

	require.Equal(t, 4, f.stock(t, bonnet.ID))
	require.Equal(t, 0, f.stock(t, romper.ID))

	cartView, err := f.cart.Get(ctx, customer)
	require.NoError(t, err)
	require.Empty(t, cartView.Lines)

	stored, err := f.orders.Get(ctx, orders.Actor{UserID: customer, Role: enums.RoleCustomer}, res.OrderID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	require.Equal(t, bonnet.ID, stored.Lines[0].ProductID)
	require.Equal(t, "Bonnet", stored.Lines[0].ProductName)

	var events []models.OutboxEvent
	require.NoError(t, f.db.Where("event_type = ?", enums.EventOrderCreated).Find(&events).Error)
	require.Len(t, events, 1)
	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	var created payloads.OrderCreatedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &created))
	require.Equal(t, res.OrderID, created.OrderID)
	require.Len(t, created.Lines, 2)
}

func TestCheckoutOnhandIsFullyPaid(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	customer := uuid.New()
	p := f.product(t, "Sleepsack", enums.ProductCategorySale, "250.00", 3)

	_, err := f.cart.Add(ctx, customer, p.ID, 2)
	require.NoError(t, err)

	res, err := f.checkout.Checkout(ctx, customer, contact())
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusFullyPaid, res.Order.Status)
	require.Nil(t, res.DepositDeadline)
	require.True(t, res.Order.RemainingBalance.IsZero())
	require.True(t, res.Order.DepositPaid())
	require.True(t, res.Order.FullPaid())
}

func TestCheckoutEmptyCart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.checkout.Checkout(context.Background(), uuid.New(), contact())
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeEmptyCart), "got %v", err)
}

func TestCheckoutRollsBackOnInsufficientStock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	customer := uuid.New()
	plenty := f.product(t, "Socks", enums.ProductCategoryOnhand, "40.00", 10)
	scarce := f.product(t, "Blanket", enums.ProductCategoryOnhand, "600.00", 2)

	_, err := f.cart.Add(ctx, customer, plenty.ID, 3)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, customer, scarce.ID, 2)
	require.NoError(t, err)

	// another shopper takes one blanket between add-to-cart and checkout
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", scarce.ID).Update("stock", 1).Error)

	_, err = f.checkout.Checkout(ctx, customer, contact())
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	require.Equal(t, 10, f.stock(t, plenty.ID))
	require.Equal(t, 1, f.stock(t, scarce.ID))

	var orderCount, eventCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, f.db.Model(&models.OutboxEvent{}).Count(&eventCount).Error)
	require.Zero(t, orderCount)
	require.Zero(t, eventCount)

	cartView, err := f.cart.Get(ctx, customer)
	require.NoError(t, err)
	require.Len(t, cartView.Lines, 2)
}

func TestCheckoutValidatesContact(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	cases := map[string]func(*Input){
		"missing name":   func(in *Input) { in.Name = "" },
		"bad email":      func(in *Input) { in.Email = "not-an-email" },
		"unknown method": func(in *Input) { in.PaymentMethod = "cash" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := contact()
			mutate(&in)
			_, err := f.checkout.Checkout(context.Background(), uuid.New(), in)
			require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}
}

func TestCheckoutThenExpiryRestoresStock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	customer := uuid.New()
	p := f.product(t, "Carrier", enums.ProductCategoryPasabuy, "400.00", 5)

	_, err := f.cart.Add(ctx, customer, p.ID, 1)
	require.NoError(t, err)
	res, err := f.checkout.Checkout(ctx, customer, contact())
	require.NoError(t, err)
	require.Equal(t, "120.00", res.Order.DepositAmount.StringFixed(2))
	require.Equal(t, 4, f.stock(t, p.ID))

	f.clock.Advance(25 * time.Hour)
	listed, err := f.orders.ListForCustomer(ctx, orders.Actor{UserID: customer, Role: enums.RoleCustomer}, customer)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, enums.OrderStatusCancelled, listed[0].Status)
	require.Equal(t, 5, f.stock(t, p.ID))
}
