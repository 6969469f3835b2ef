package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	"github.com/littlemija/littlemija-backend/pkg/outbox"
)

type memoryRepo struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]models.Order
	casErr   map[uuid.UUID]error
	inflight int
	peak     int
}

func newMemoryRepo(orders ...models.Order) *memoryRepo {
	r := &memoryRepo{orders: map[uuid.UUID]models.Order{}, casErr: map[uuid.UUID]error{}}
	for _, o := range orders {
		r.orders[o.ID] = o.Clone()
	}
	return r
}

func (r *memoryRepo) WithTx(*gorm.DB) Repository { return r }

func (r *memoryRepo) Create(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := o.Clone()
	return &out, nil
}

func (r *memoryRepo) List(context.Context, ListFilter) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o.Clone())
	}
	return out, nil
}

func (r *memoryRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.orders[id]
	return ok, nil
}

func (r *memoryRepo) CompareAndSwap(_ context.Context, id uuid.UUID, expected []enums.OrderStatus, updates map[string]any) (bool, error) {
	r.mu.Lock()
	r.inflight++
	if r.inflight > r.peak {
		r.peak = r.inflight
	}
	r.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight--
	if err := r.casErr[id]; err != nil {
		return false, err
	}
	o, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	match := false
	for _, s := range expected {
		if o.Status == s {
			match = true
		}
	}
	if !match {
		return false, nil
	}
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		o.Status = status
	}
	o.Version++
	r.orders[id] = o
	return true, nil
}

func (r *memoryRepo) status(id uuid.UUID) enums.OrderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id].Status
}

type inlineTx struct{}

func (inlineTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type recordingStock struct {
	mu       sync.Mutex
	released map[uuid.UUID]int
}

func (s *recordingStock) Release(_ context.Context, _ *gorm.DB, productID uuid.UUID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released == nil {
		s.released = map[uuid.UUID]int{}
	}
	s.released[productID] += qty
	return nil
}

func (s *recordingStock) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.released {
		n += q
	}
	return n
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []outbox.DomainEvent
}

func (e *recordingEmitter) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) count(eventType enums.OutboxEventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ev := range e.events {
		if ev.EventType == eventType {
			n++
		}
	}
	return n
}

func newTestSweeper(t *testing.T, repo Repository, stock StockReleaser, emitter outbox.Emitter, parallelism int) *Sweeper {
	t.Helper()
	s, err := NewSweeper(SweeperParams{
		Repo:        repo,
		Tx:          inlineTx{},
		Stock:       stock,
		Outbox:      emitter,
		Parallelism: parallelism,
		Now:         func() time.Time { return t0.Add(30 * time.Hour) },
	})
	require.NoError(t, err)
	return s
}

func TestSweeperApplyReleasesEachOrderOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	var input []models.Order
	for i := 0; i < 20; i++ {
		input = append(input, pasabuyOrder(enums.OrderStatusPending, t0, 1, 2))
	}
	repo := newMemoryRepo(input...)
	stock := &recordingStock{}
	emitter := &recordingEmitter{}
	sweeper := newTestSweeper(t, repo, stock, emitter, 3)

	swept, releases := Sweep(input, t0.Add(30*time.Hour))
	resolved, err := sweeper.Apply(context.Background(), swept, releases)
	require.NoError(t, err)
	require.Len(t, resolved, 20)
	require.Equal(t, 60, stock.total())
	require.Equal(t, 20, emitter.count(enums.EventOrderExpired))
	require.LessOrEqual(t, repo.peak, 3)

	for _, o := range input {
		require.Equal(t, enums.OrderStatusCancelled, repo.status(o.ID))
		require.Equal(t, enums.OrderStatusCancelled, resolved[o.ID].Status)
	}

	// A second application of the same sweep finds nothing left to cancel.
	resolved, err = sweeper.Apply(context.Background(), swept, releases)
	require.NoError(t, err)
	require.Len(t, resolved, 20)
	require.Equal(t, 60, stock.total())
	require.Equal(t, 20, emitter.count(enums.EventOrderExpired))
}

func TestSweeperApplyLosingCASRereadsWithoutRelease(t *testing.T) {
	defer goleak.VerifyNone(t)

	order := pasabuyOrder(enums.OrderStatusPending, t0, 4)
	repo := newMemoryRepo(order)
	stock := &recordingStock{}
	emitter := &recordingEmitter{}
	sweeper := newTestSweeper(t, repo, stock, emitter, 2)

	swept, releases := Sweep([]models.Order{order}, t0.Add(30*time.Hour))

	// Staff moved the order on after the read that produced the sweep.
	stored := repo.orders[order.ID]
	stored.Status = enums.OrderStatusReadyForPayment
	repo.orders[order.ID] = stored

	resolved, err := sweeper.Apply(context.Background(), swept, releases)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusReadyForPayment, resolved[order.ID].Status)
	require.Zero(t, stock.total())
	require.Zero(t, emitter.count(enums.EventOrderExpired))
}

func TestSweeperApplyCombinesErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	good := pasabuyOrder(enums.OrderStatusPending, t0, 1)
	badA := pasabuyOrder(enums.OrderStatusPending, t0, 1)
	badB := pasabuyOrder(enums.OrderStatusPending, t0, 1)
	repo := newMemoryRepo(good, badA, badB)
	repo.casErr[badA.ID] = errors.New("connection reset")
	repo.casErr[badB.ID] = errors.New("deadlock detected")
	stock := &recordingStock{}
	sweeper := newTestSweeper(t, repo, stock, &recordingEmitter{}, 4)

	swept, releases := Sweep([]models.Order{good, badA, badB}, t0.Add(30*time.Hour))
	resolved, err := sweeper.Apply(context.Background(), swept, releases)
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 2)
	require.Len(t, resolved, 1)
	require.Contains(t, resolved, good.ID)
	require.Equal(t, 1, stock.total())
}

func TestSweeperApplyNothingToDo(t *testing.T) {
	defer goleak.VerifyNone(t)

	sweeper := newTestSweeper(t, newMemoryRepo(), &recordingStock{}, &recordingEmitter{}, 0)
	require.Equal(t, DefaultSweepParallelism, sweeper.parallelism)

	resolved, err := sweeper.Apply(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Empty(t, resolved)
}

func TestNewSweeperRequiresDependencies(t *testing.T) {
	_, err := NewSweeper(SweeperParams{Tx: inlineTx{}, Stock: &recordingStock{}})
	require.Error(t, err)
	_, err = NewSweeper(SweeperParams{Repo: newMemoryRepo(), Stock: &recordingStock{}})
	require.Error(t, err)
	_, err = NewSweeper(SweeperParams{Repo: newMemoryRepo(), Tx: inlineTx{}})
	require.Error(t, err)
}
