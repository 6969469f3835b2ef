package enums

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregateProduct OutboxAggregateType = "product"
)

var aggregateTypes = []OutboxAggregateType{AggregateOrder, AggregateProduct}

func (a OutboxAggregateType) IsValid() bool { return oneOf(a, aggregateTypes) }

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parseOneOf("aggregate type", value, aggregateTypes)
}

// OutboxEventType maps to the event_type column of outbox_events and the event_type attribute
// on published messages.
type OutboxEventType string

const (
	EventOrderCreated         OutboxEventType = "order_created"
	EventOrderStatusChanged   OutboxEventType = "order_status_changed"
	EventOrderCancelled       OutboxEventType = "order_cancelled"
	EventOrderExpired         OutboxEventType = "order_expired"
	EventOrderPaymentRecorded OutboxEventType = "order_payment_recorded"
	EventOrderDepositUpdated  OutboxEventType = "order_deposit_updated"
)

var eventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderStatusChanged,
	EventOrderCancelled,
	EventOrderExpired,
	EventOrderPaymentRecorded,
	EventOrderDepositUpdated,
}

func (e OutboxEventType) IsValid() bool { return oneOf(e, eventTypes) }

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parseOneOf("event type", value, eventTypes)
}
