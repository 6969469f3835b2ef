package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	"github.com/littlemija/littlemija-backend/pkg/logger"
	"github.com/littlemija/littlemija-backend/pkg/metrics"
	"github.com/littlemija/littlemija-backend/pkg/outbox"
)

// DefaultSweepParallelism bounds concurrent expiry transactions when none is configured.
const DefaultSweepParallelism = 4

// StockReleaser returns units to the inventory ledger.
type StockReleaser interface {
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Sweeper persists the outcome of Sweep.
type Sweeper struct {
	repo        Repository
	tx          db.TxRunner
	stock       StockReleaser
	outbox      outbox.Emitter
	metrics     *metrics.OrderMetrics
	logg        *logger.Logger
	parallelism int
	now         func() time.Time
}

// SweeperParams wires a Sweeper.
type SweeperParams struct {
	Repo        Repository
	Tx          db.TxRunner
	Stock       StockReleaser
	Outbox      outbox.Emitter
	Metrics     *metrics.OrderMetrics
	Logger      *logger.Logger
	Parallelism int
	Now         func() time.Time
}

func NewSweeper(p SweeperParams) (*Sweeper, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Stock == nil {
		return nil, fmt.Errorf("stock releaser required")
	}
	if p.Parallelism <= 0 {
		p.Parallelism = DefaultSweepParallelism
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Sweeper{
		repo:        p.Repo,
		tx:          p.Tx,
		stock:       p.Stock,
		outbox:      p.Outbox,
		metrics:     p.Metrics,
		logg:        p.Logger,
		parallelism: p.Parallelism,
		now:         p.Now,
	}, nil
}

// Apply cancels each swept order in its own transaction and releases its lines. Only the
// transaction that wins the status compare-and-swap releases stock; a loser re-reads the
// stored order instead. The returned map holds the resolved view of every order that could
// be settled; failures are combined into the error.
func (s *Sweeper) Apply(ctx context.Context, swept []models.Order, releases []ReleaseEvent) (map[uuid.UUID]models.Order, error) {
	resolved := make(map[uuid.UUID]models.Order, len(swept))
	if len(swept) == 0 {
		return resolved, nil
	}

	byOrder := make(map[uuid.UUID][]ReleaseEvent, len(swept))
	for _, r := range releases {
		byOrder[r.OrderID] = append(byOrder[r.OrderID], r)
	}

	var (
		mu   sync.Mutex
		errs error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i := range swept {
		order := swept[i]
		lines := byOrder[order.ID]
		g.Go(func() error {
			view, err := s.expire(gctx, order, lines)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
				return nil
			}
			resolved[order.ID] = view
			return nil
		})
	}
	_ = g.Wait()

	if errs != nil {
		s.logg.Error(ctx, "deposit expiry sweep incomplete", errs)
	}
	return resolved, errs
}

func (s *Sweeper) expire(ctx context.Context, order models.Order, lines []ReleaseEvent) (models.Order, error) {
	expected := expirableStatuses
	if len(lines) > 0 {
		expected = []enums.OrderStatus{lines[0].PreviousStatus}
	}
	previous := expected[0]

	now := s.now().UTC()
	applied := false
	units := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.CompareAndSwap(ctx, order.ID, expected, map[string]any{
			"status":     enums.OrderStatusCancelled,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		applied = true

		for _, line := range lines {
			if err := s.stock.Release(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
			units += line.Quantity
		}

		order.Status = enums.OrderStatusCancelled
		order.UpdatedAt = now
		order.Version++
		return emit(ctx, s.outbox, tx, statusChangedEvent(enums.EventOrderExpired, systemActor, previous, &order, units, now))
	})
	if err != nil {
		return models.Order{}, err
	}

	if !applied {
		stored, err := s.repo.FindByID(ctx, order.ID)
		if err != nil {
			return models.Order{}, err
		}
		return *stored, nil
	}

	s.metrics.IncExpired()
	s.metrics.IncTransition(string(previous), string(enums.OrderStatusCancelled))
	s.metrics.AddUnitsReleased(units)
	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	logCtx = s.logg.WithField(logCtx, "released_units", units)
	s.logg.Info(logCtx, "order expired: deposit deadline passed")
	return order, nil
}
