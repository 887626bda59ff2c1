package outbox

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/pkg/enums"
)

// OrderCreatedEvent announces a committed checkout.
type OrderCreatedEvent struct {
	OrderID        int64                 `json:"orderId"`
	UserID         uuid.UUID             `json:"userId"`
	Total          decimal.Decimal       `json:"total"`
	DeliveryOption enums.DeliveryOption  `json:"deliveryOption"`
	ItemCount      int                   `json:"itemCount"`
	Change         enums.ChangeEventType `json:"change"`
	Table          string                `json:"table"`
}

// OrderStatusChangedEvent announces an applied status transition.
type OrderStatusChangedEvent struct {
	OrderID int64                 `json:"orderId"`
	UserID  uuid.UUID             `json:"userId"`
	From    enums.OrderStatus     `json:"from"`
	To      enums.OrderStatus     `json:"to"`
	Change  enums.ChangeEventType `json:"change"`
	Table   string                `json:"table"`
}

// ProductChangedEvent announces a catalog upsert.
type ProductChangedEvent struct {
	ProductID int64                 `json:"productId"`
	Change    enums.ChangeEventType `json:"change"`
	Table     string                `json:"table"`
}

// Table names carried on change events so subscribers can route them.
const (
	TableOrders   = "orders"
	TableProducts = "products"
)
