package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/pkg/enums"
)

// SizePriceMap is the structured per-size price column. A nil map means
// the row predates the column and pricing falls back to legacy
// description metadata or the base price.
type SizePriceMap map[enums.ProductSize]decimal.Decimal

// Value implements driver.Valuer, storing the map as jsonb.
func (m SizePriceMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *SizePriceMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported size_prices type %T", value)
	}
	return json.Unmarshal(raw, m)
}
