package models

import (
	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/pkg/enums"
)

// OrderItem is a single line of an order. UnitPrice snapshots the price
// the item was sold at so later catalog edits do not rewrite history.
type OrderItem struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64             `gorm:"column:order_id;not null;index"`
	ProductID int64             `gorm:"column:product_id;not null"`
	Quantity  int               `gorm:"column:quantity;not null"`
	Size      enums.ProductSize `gorm:"column:size;not null"`
	UnitPrice decimal.Decimal   `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Product   *Product          `gorm:"foreignKey:ProductID"`
}
