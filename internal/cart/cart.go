package cart

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/internal/pricing"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
)

// Line is one (product, size) entry. UnitPrice is snapshotted when the
// line is created and never re-resolved against the live catalog.
type Line struct {
	ProductID int64
	Name      string
	Size      enums.ProductSize
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart accumulates priced line items for one session. A session mutates
// its cart from one goroutine at a time in practice; the mutex guards
// against accidental sharing, not designed-for contention.
type Cart struct {
	mu            sync.Mutex
	lines         []*Line
	fulfillment   enums.FulfillmentOption
	termsAccepted bool
}

func New() *Cart {
	return &Cart{}
}

// Snapshot is an immutable copy handed to checkout.
type Snapshot struct {
	Lines         []Line
	Fulfillment   enums.FulfillmentOption
	TermsAccepted bool
	Total         decimal.Decimal
}

// AddItem snapshots a unit price for (product, size) and either appends
// a new line with quantity 1 or increments the existing line. A rejected
// add leaves the cart untouched.
func (c *Cart) AddItem(product models.Product, size enums.ProductSize) error {
	if product.ID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product: missing id")
	}
	if strings.TrimSpace(product.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product: missing name")
	}
	if product.Price.Sign() < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product: negative price")
	}

	quote, err := pricing.Resolve(product, size)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if line := c.find(product.ID, size); line != nil {
		line.Quantity++
		return nil
	}

	c.lines = append(c.lines, &Line{
		ProductID: product.ID,
		Name:      product.Name,
		Size:      size,
		Quantity:  1,
		UnitPrice: quote.Price,
	})
	return nil
}

// NormalizeQuantity coerces a raw client quantity to a usable integer.
// Non-finite input reports ok=false (callers treat it as a no-op);
// fractional values are floored.
func NormalizeQuantity(raw float64) (int, bool) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, false
	}
	return int(math.Floor(raw)), true
}

// UpdateQuantity replaces the quantity on the matching line. Zero or
// negative removes the line; a missing line is a no-op.
func (c *Cart) UpdateQuantity(productID int64, size enums.ProductSize, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(productID, size)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if line := c.find(productID, size); line != nil {
		line.Quantity = quantity
	}
}

// RemoveItem deletes the matching line if present.
func (c *Cart) RemoveItem(productID int64, size enums.ProductSize) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, line := range c.lines {
		if line.ProductID == productID && line.Size == size {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart and resets fulfillment state.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.fulfillment = enums.FulfillmentUnset
	c.termsAccepted = false
}

// SetFulfillmentOption records the delivery-vs-collection choice.
func (c *Cart) SetFulfillmentOption(option enums.FulfillmentOption) error {
	if !option.IsSet() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid fulfillment option %q", option))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fulfillment = option
	return nil
}

// AcceptDeliveryTerms is monotonic; only Clear resets it.
func (c *Cart) AcceptDeliveryTerms() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.termsAccepted = true
}

// Total is recomputed from the lines on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

func (c *Cart) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Lines returns a copy in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	for i, line := range c.lines {
		out[i] = *line
	}
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Fulfillment returns the current fulfillment choice.
func (c *Cart) Fulfillment() enums.FulfillmentOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fulfillment
}

// TermsAccepted reports whether delivery terms were accepted.
func (c *Cart) TermsAccepted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.termsAccepted
}

// Snapshot captures the cart for checkout in one locked read.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, len(c.lines))
	for i, line := range c.lines {
		lines[i] = *line
	}
	return Snapshot{
		Lines:         lines,
		Fulfillment:   c.fulfillment,
		TermsAccepted: c.termsAccepted,
		Total:         c.totalLocked(),
	}
}

func (c *Cart) find(productID int64, size enums.ProductSize) *Line {
	for _, line := range c.lines {
		if line.ProductID == productID && line.Size == size {
			return line
		}
	}
	return nil
}
