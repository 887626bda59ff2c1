package enums

import (
	"fmt"
	"strings"
)

// ProductSize is the fixed set of sizes an item can be ordered in.
type ProductSize string

const (
	ProductSizeS  ProductSize = "S"
	ProductSizeM  ProductSize = "M"
	ProductSizeL  ProductSize = "L"
	ProductSizeXL ProductSize = "XL"
)

// ProductSizes lists every size in display order.
var ProductSizes = []ProductSize{
	ProductSizeS,
	ProductSizeM,
	ProductSizeL,
	ProductSizeXL,
}

// String implements fmt.Stringer.
func (p ProductSize) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProductSize.
func (p ProductSize) IsValid() bool {
	for _, candidate := range ProductSizes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProductSize converts raw input into a ProductSize.
func ParseProductSize(value string) (ProductSize, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range ProductSizes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product size %q", value)
}
