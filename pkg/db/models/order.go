package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/pkg/enums"
)

// Order is the checkout header row. Items are written in a second phase
// after the header insert succeeds.
type Order struct {
	ID             int64                `gorm:"column:id;primaryKey;autoIncrement"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null"`
	Status         enums.OrderStatus    `gorm:"column:status;not null;default:'New'"`
	Total          decimal.Decimal      `gorm:"column:total;type:numeric(10,2);not null"`
	DeliveryOption enums.DeliveryOption `gorm:"column:delivery_option;not null;default:'No'"`
	DeliveryTerms  *string              `gorm:"column:delivery_terms"`
	Items          []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
