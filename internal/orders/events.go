package orders

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	"github.com/littlemija/littlemija-backend/pkg/outbox"
	"github.com/littlemija/littlemija-backend/pkg/outbox/payloads"
)

func statusChangedEvent(
	eventType enums.OutboxEventType,
	actor *outbox.ActorRef,
	from enums.OrderStatus,
	order *models.Order,
	released int,
	at time.Time,
) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		OccurredAt:    at,
		Data: payloads.OrderStatusChangedEvent{
			OrderID:          order.ID,
			CustomerID:       order.CustomerID,
			From:             from,
			To:               order.Status,
			DepositAmount:    order.DepositAmount,
			RemainingBalance: order.RemainingBalance,
			ShippingMethod:   order.ShippingMethod,
			PaymentMethod:    order.PaymentMethod,
			ReleasedUnits:    released,
		},
	}
}

func emit(ctx context.Context, emitter outbox.Emitter, tx *gorm.DB, event outbox.DomainEvent) error {
	if emitter == nil {
		return nil
	}
	return emitter.Emit(ctx, tx, event)
}
