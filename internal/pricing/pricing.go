package pricing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
)

// sizePricePrefix marks the legacy metadata line that older product rows
// carry at the top of their description.
const sizePricePrefix = "[[SIZE_PRICES]]"

// Source tags where a resolved price came from.
type Source string

const (
	SourceSizeMap        Source = "size_map"
	SourceLegacyMetadata Source = "legacy_metadata"
	SourceBasePrice      Source = "base_price"
)

// Quote is the result of resolving a unit price for a (product, size)
// pair.
type Quote struct {
	Price  decimal.Decimal
	Source Source
}

// Resolve returns the unit price for the given size. The lookup order is
// the structured size_prices column, then legacy description metadata,
// then the base price. Entries that are negative fall through to the
// base price rather than failing.
func Resolve(product models.Product, size enums.ProductSize) (Quote, error) {
	if !size.IsValid() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product size %q", size))
	}

	prices, source := SizePriceMapFor(product)
	price, ok := prices[size]
	if !ok {
		price = product.Price
		source = SourceBasePrice
	}

	if price.Sign() <= 0 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("no price for size %s on product %d", size, product.ID))
	}
	return Quote{Price: price, Source: source}, nil
}

// SizePriceMapFor returns a fully populated per-size price map for the
// product and where the overrides came from. Every size gets an entry;
// sizes without a valid override inherit the base price.
func SizePriceMapFor(product models.Product) (models.SizePriceMap, Source) {
	if product.SizePrices != nil {
		return normalize(product.SizePrices, product.Price), SourceSizeMap
	}
	if legacy, ok := parseMetadata(product.Description); ok {
		return normalize(legacy, product.Price), SourceLegacyMetadata
	}
	return normalize(nil, product.Price), SourceBasePrice
}

func normalize(overrides models.SizePriceMap, base decimal.Decimal) models.SizePriceMap {
	out := make(models.SizePriceMap, len(enums.ProductSizes))
	for _, size := range enums.ProductSizes {
		price, ok := overrides[size]
		if !ok || price.Sign() < 0 {
			price = base
		}
		out[size] = price
	}
	return out
}

// parseMetadata extracts the legacy size-price map embedded in the first
// line of a description. A malformed metadata line is ignored so old
// rows keep working on base price.
func parseMetadata(description string) (models.SizePriceMap, bool) {
	firstLine, _, _ := strings.Cut(description, "\n")
	firstLine = strings.TrimSpace(firstLine)
	if !strings.HasPrefix(firstLine, sizePricePrefix) {
		return nil, false
	}

	jsonPart := firstLine[len(sizePricePrefix):]
	var raw map[enums.ProductSize]decimal.Decimal
	if err := json.Unmarshal([]byte(jsonPart), &raw); err != nil {
		return nil, false
	}
	return models.SizePriceMap(raw), true
}

// VisibleDescription strips the legacy metadata line, returning the text
// a customer should actually see.
func VisibleDescription(description string) string {
	firstLine, rest, found := strings.Cut(description, "\n")
	if !strings.HasPrefix(strings.TrimSpace(firstLine), sizePricePrefix) {
		return strings.TrimSpace(description)
	}
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}

// EncodeDescription prepends the metadata line to a visible description
// so rows stay readable by clients that only understand the legacy
// encoding.
func EncodeDescription(visible string, prices models.SizePriceMap) (string, error) {
	encoded, err := json.Marshal(prices)
	if err != nil {
		return "", err
	}
	metadataLine := sizePricePrefix + string(encoded)
	trimmed := strings.TrimSpace(visible)
	if trimmed == "" {
		return metadataLine, nil
	}
	return metadataLine + "\n" + trimmed, nil
}

// Orderable reports whether at least one size resolves to a positive
// price, i.e. the product can be added to a cart at all.
func Orderable(product models.Product) bool {
	prices, _ := SizePriceMapFor(product)
	for _, price := range prices {
		if price.Sign() > 0 {
			return true
		}
	}
	return false
}
