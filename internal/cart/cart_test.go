package cart

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func testProduct(id int64, price string) models.Product {
	return models.Product{
		ID:       id,
		Name:     "Margherita",
		Price:    dec(price),
		IsActive: true,
		InStock:  true,
	}
}

func TestAddItemMergesSameProductAndSize(t *testing.T) {
	t.Parallel()

	c := New()
	product := testProduct(1, "10.00")

	if err := c.AddItem(product, enums.ProductSizeM); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddItem(product, enums.ProductSizeM); err != nil {
		t.Fatalf("add: %v", err)
	}

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", lines[0].Quantity)
	}
	if !c.Total().Equal(dec("20.00")) {
		t.Errorf("total = %s, want 20.00", c.Total())
	}
}

func TestAddItemDifferentSizesAreSeparateLines(t *testing.T) {
	t.Parallel()

	c := New()
	product := testProduct(1, "10.00")

	if err := c.AddItem(product, enums.ProductSizeM); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.AddItem(product, enums.ProductSizeL); err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(c.Lines()) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(c.Lines()))
	}
}

func TestAddItemRejectsMalformedProduct(t *testing.T) {
	t.Parallel()

	c := New()

	cases := []struct {
		name    string
		product models.Product
	}{
		{name: "missing id", product: models.Product{Name: "x", Price: dec("1.00")}},
		{name: "missing name", product: models.Product{ID: 1, Price: dec("1.00")}},
		{name: "negative price", product: models.Product{ID: 1, Name: "x", Price: dec("-1.00")}},
	}
	for _, tc := range cases {
		err := c.AddItem(tc.product, enums.ProductSizeM)
		if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	if !c.IsEmpty() {
		t.Error("rejected adds must leave the cart unmodified")
	}
}

func TestAddItemSnapshotsPrice(t *testing.T) {
	t.Parallel()

	c := New()
	product := testProduct(1, "10.00")
	if err := c.AddItem(product, enums.ProductSizeM); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A later catalog price change must not affect the existing line.
	product.Price = dec("99.00")
	if err := c.AddItem(product, enums.ProductSizeM); err != nil {
		t.Fatalf("add: %v", err)
	}

	lines := c.Lines()
	if !lines[0].UnitPrice.Equal(dec("10.00")) {
		t.Errorf("unit price = %s, want snapshotted 10.00", lines[0].UnitPrice)
	}
	if !c.Total().Equal(dec("20.00")) {
		t.Errorf("total = %s, want 20.00", c.Total())
	}
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	c := New()
	if err := c.AddItem(testProduct(1, "5.00"), enums.ProductSizeS); err != nil {
		t.Fatalf("add: %v", err)
	}

	c.UpdateQuantity(1, enums.ProductSizeS, 0)
	if !c.IsEmpty() {
		t.Error("quantity 0 should remove the line")
	}

	if err := c.AddItem(testProduct(1, "5.00"), enums.ProductSizeS); err != nil {
		t.Fatalf("add: %v", err)
	}
	c.UpdateQuantity(1, enums.ProductSizeS, -3)
	if !c.IsEmpty() {
		t.Error("negative quantity should remove the line")
	}
}

func TestUpdateQuantityReplacesAndIgnoresMissing(t *testing.T) {
	t.Parallel()

	c := New()
	if err := c.AddItem(testProduct(1, "5.00"), enums.ProductSizeS); err != nil {
		t.Fatalf("add: %v", err)
	}

	c.UpdateQuantity(1, enums.ProductSizeS, 7)
	if got := c.Lines()[0].Quantity; got != 7 {
		t.Errorf("quantity = %d, want 7", got)
	}

	c.UpdateQuantity(42, enums.ProductSizeS, 3)
	if len(c.Lines()) != 1 {
		t.Error("updating a missing line must be a no-op")
	}
}

func TestNormalizeQuantity(t *testing.T) {
	t.Parallel()

	if _, ok := NormalizeQuantity(math.NaN()); ok {
		t.Error("NaN should not normalize")
	}
	if _, ok := NormalizeQuantity(math.Inf(1)); ok {
		t.Error("+Inf should not normalize")
	}
	if got, ok := NormalizeQuantity(2.9); !ok || got != 2 {
		t.Errorf("NormalizeQuantity(2.9) = %d, %v; want 2, true", got, ok)
	}
	if got, ok := NormalizeQuantity(-1.5); !ok || got != -2 {
		t.Errorf("NormalizeQuantity(-1.5) = %d, %v; want -2, true", got, ok)
	}
}

func TestClearResetsFulfillmentState(t *testing.T) {
	t.Parallel()

	c := New()
	if err := c.AddItem(testProduct(1, "5.00"), enums.ProductSizeS); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.SetFulfillmentOption(enums.FulfillmentDelivery); err != nil {
		t.Fatalf("set fulfillment: %v", err)
	}
	c.AcceptDeliveryTerms()

	c.Clear()

	if !c.IsEmpty() {
		t.Error("clear should empty the cart")
	}
	if c.Fulfillment() != enums.FulfillmentUnset {
		t.Error("clear should reset fulfillment")
	}
	if c.TermsAccepted() {
		t.Error("clear should reset delivery terms")
	}
}

func TestSetFulfillmentOptionRejectsUnset(t *testing.T) {
	t.Parallel()

	c := New()
	if err := c.SetFulfillmentOption(enums.FulfillmentUnset); err == nil {
		t.Error("expected error for unset option")
	}
	if err := c.SetFulfillmentOption(enums.FulfillmentOption("pickup")); err == nil {
		t.Error("expected error for unknown option")
	}
}

// TestTotalMatchesLineSum drives the cart with a random operation
// sequence and checks the computed total against an independent sum
// after every step.
func TestTotalMatchesLineSum(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	products := []models.Product{
		testProduct(1, "3.50"),
		testProduct(2, "7.25"),
		testProduct(3, "11.00"),
	}
	sizes := []enums.ProductSize{enums.ProductSizeS, enums.ProductSizeM, enums.ProductSizeL, enums.ProductSizeXL}

	c := New()
	for i := 0; i < 500; i++ {
		product := products[rng.Intn(len(products))]
		size := sizes[rng.Intn(len(sizes))]

		switch rng.Intn(4) {
		case 0, 1:
			if err := c.AddItem(product, size); err != nil {
				t.Fatalf("add: %v", err)
			}
		case 2:
			c.UpdateQuantity(product.ID, size, rng.Intn(6)-1)
		case 3:
			c.RemoveItem(product.ID, size)
		}

		expected := decimal.Zero
		for _, line := range c.Lines() {
			if line.Quantity < 1 {
				t.Fatalf("line quantity %d below 1", line.Quantity)
			}
			expected = expected.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		if !c.Total().Equal(expected) {
			t.Fatalf("step %d: total %s != line sum %s", i, c.Total(), expected)
		}
	}
}

func TestRegistryOneCartPerUser(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	userA := uuid.MustParse("4b4b0a10-51b9-4be1-b875-6a0071a4ab52")
	userB := uuid.MustParse("9e107d9d-3729-4b2c-a4ca-3f1f2ddfa111")

	if registry.Get(userA) != registry.Get(userA) {
		t.Error("same user must get the same cart")
	}
	if registry.Get(userA) == registry.Get(userB) {
		t.Error("different users must get different carts")
	}

	registry.Get(userA).AcceptDeliveryTerms()
	registry.Drop(userA)
	if registry.Get(userA).TermsAccepted() {
		t.Error("dropped cart must not survive")
	}
}
