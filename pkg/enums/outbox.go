package enums

// OutboxEventType names the domain events written through the outbox.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order.created"
	EventOrderStatusChanged OutboxEventType = "order.status_changed"
	EventOrderDeleted       OutboxEventType = "order.deleted"
	EventProductChanged     OutboxEventType = "product.changed"
)

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder   OutboxAggregateType = "order"
	AggregateProduct OutboxAggregateType = "product"
)
