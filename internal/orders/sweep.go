package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
)

// ReleaseEvent is one line's stock to return because its order expired.
type ReleaseEvent struct {
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	Quantity       int
	PreviousStatus enums.OrderStatus
}

// Expired reports whether o's deposit deadline passed unpaid as of now.
func Expired(o models.Order, now time.Time) bool {
	return o.DepositDeadline != nil &&
		!o.DepositPaid() &&
		o.Status != enums.OrderStatusCancelled &&
		now.After(*o.DepositDeadline)
}

// Sweep returns cancelled copies of every expired order in orders along with the stock each
// one must give back. It performs no I/O and leaves orders untouched.
func Sweep(orders []models.Order, now time.Time) ([]models.Order, []ReleaseEvent) {
	var (
		swept    []models.Order
		releases []ReleaseEvent
	)
	for _, o := range orders {
		if !Expired(o, now) {
			continue
		}
		cancelled := o.Clone()
		cancelled.Status = enums.OrderStatusCancelled
		cancelled.UpdatedAt = now
		swept = append(swept, cancelled)

		for _, line := range o.Lines {
			releases = append(releases, ReleaseEvent{
				OrderID:        o.ID,
				ProductID:      line.ProductID,
				Quantity:       line.Quantity,
				PreviousStatus: o.Status,
			})
		}
	}
	return swept, releases
}
