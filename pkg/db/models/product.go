package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a menu listing. Per-size price overrides live in a
// metadata line at the top of Description; the pricing package owns that
// format.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	SizePrices  SizePriceMap    `gorm:"column:size_prices;type:jsonb"`
	Image       *string         `gorm:"column:image"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	InStock     bool            `gorm:"column:in_stock;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
