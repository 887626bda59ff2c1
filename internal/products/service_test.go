package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thandondaba/quickbite-backend/internal/checkout"
	"github.com/thandondaba/quickbite-backend/internal/pricing"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
)

type stubProductRepo struct {
	nextID   int64
	products map[int64]models.Product
}

func newStubProductRepo(rows ...models.Product) *stubProductRepo {
	repo := &stubProductRepo{products: make(map[int64]models.Product)}
	for _, row := range rows {
		repo.products[row.ID] = row
		if row.ID > repo.nextID {
			repo.nextID = row.ID
		}
	}
	return repo
}

func (r *stubProductRepo) ListActive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	for _, row := range r.products {
		if row.IsActive {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *stubProductRepo) GetByID(ctx context.Context, productID int64) (*models.Product, error) {
	row, ok := r.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *stubProductRepo) Save(ctx context.Context, product *models.Product, emit func(tx *gorm.DB) error) error {
	if product.ID == 0 {
		r.nextID++
		product.ID = r.nextID
	}
	r.products[product.ID] = *product
	if emit != nil {
		return emit(nil)
	}
	return nil
}

var (
	staff    = checkout.Identity{UserID: uuid.MustParse("0a62cd7e-3c7e-47b1-a6a9-43e7e4e3a001"), Group: models.GroupAdmin}
	customer = checkout.Identity{UserID: uuid.MustParse("7c1f7a40-9a8f-49cb-9a2e-9f05c2f4b002"), Group: models.GroupUser}
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newTestService(t *testing.T, repo ProductRepo) *Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestGetStripsLegacyMetadata(t *testing.T) {
	t.Parallel()

	repo := newStubProductRepo(models.Product{
		ID:          1,
		Name:        "Margherita",
		Price:       dec("10.00"),
		Description: `[[SIZE_PRICES]]{"S":8.00,"L":12.00}` + "\nStone-baked classic.",
		IsActive:    true,
		InStock:     true,
	})
	svc := newTestService(t, repo)

	view, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Description != "Stone-baked classic." {
		t.Errorf("description = %q", view.Description)
	}
	if !view.SizePrices[enums.ProductSizeS].Equal(dec("8.00")) {
		t.Errorf("S price = %s, want 8.00", view.SizePrices[enums.ProductSizeS])
	}
	if !view.SizePrices[enums.ProductSizeM].Equal(dec("10.00")) {
		t.Errorf("M price = %s, want base 10.00", view.SizePrices[enums.ProductSizeM])
	}
	if view.PriceSource != pricing.SourceLegacyMetadata {
		t.Errorf("source = %s, want legacy metadata", view.PriceSource)
	}

	if _, err := svc.Get(context.Background(), 42); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListReturnsOnlyActive(t *testing.T) {
	t.Parallel()

	repo := newStubProductRepo(
		models.Product{ID: 1, Name: "Margherita", Price: dec("10.00"), IsActive: true},
		models.Product{ID: 2, Name: "Retired", Price: dec("5.00"), IsActive: false},
	)
	svc := newTestService(t, repo)

	views, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].ID != 1 {
		t.Errorf("expected only the active product, got %v", views)
	}
}

func TestUpsertWritesLegacyMetadata(t *testing.T) {
	t.Parallel()

	repo := newStubProductRepo()
	svc := newTestService(t, repo)

	product, err := svc.Upsert(context.Background(), staff, UpsertInput{
		Name:        "Quattro Formaggi",
		Description: "Four cheeses.",
		Price:       dec("11.00"),
		SizePrices: models.SizePriceMap{
			enums.ProductSizeXL: dec("15.00"),
		},
		IsActive: true,
		InStock:  true,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if product.ID == 0 {
		t.Fatal("expected a generated product id")
	}

	// The stored description must carry the metadata line and still
	// round-trip to the visible text.
	if got := pricing.VisibleDescription(product.Description); got != "Four cheeses." {
		t.Errorf("visible description = %q", got)
	}
	prices, source := pricing.SizePriceMapFor(models.Product{
		Price:       product.Price,
		Description: product.Description,
	})
	if source != pricing.SourceLegacyMetadata {
		t.Errorf("legacy readers should resolve metadata, got source %s", source)
	}
	if !prices[enums.ProductSizeXL].Equal(dec("15.00")) {
		t.Errorf("XL = %s, want 15.00", prices[enums.ProductSizeXL])
	}
	if !prices[enums.ProductSizeS].Equal(dec("11.00")) {
		t.Errorf("S = %s, want base 11.00", prices[enums.ProductSizeS])
	}
}

func TestUpsertValidation(t *testing.T) {
	t.Parallel()

	repo := newStubProductRepo()
	svc := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, customer, UpsertInput{Name: "x", Price: dec("1.00")}); !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Errorf("expected forbidden for non-staff, got %v", err)
	}
	if _, err := svc.Upsert(ctx, staff, UpsertInput{Price: dec("1.00")}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Errorf("expected validation error for missing name, got %v", err)
	}
	if _, err := svc.Upsert(ctx, staff, UpsertInput{Name: "x", Price: dec("-1.00")}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Errorf("expected validation error for negative price, got %v", err)
	}

	// Zero base price and no positive overrides: nothing orderable.
	if _, err := svc.Upsert(ctx, staff, UpsertInput{Name: "x", Price: decimal.Zero}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Errorf("expected validation error for unorderable product, got %v", err)
	}

	if _, err := svc.Upsert(ctx, staff, UpsertInput{
		Name:       "x",
		Price:      dec("1.00"),
		SizePrices: models.SizePriceMap{enums.ProductSize("XXL"): dec("2.00")},
	}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Errorf("expected validation error for unknown size key, got %v", err)
	}

	// One positive override on a zero base is enough.
	if _, err := svc.Upsert(ctx, staff, UpsertInput{
		Name:       "x",
		Price:      decimal.Zero,
		SizePrices: models.SizePriceMap{enums.ProductSizeL: dec("9.00")},
	}); err != nil {
		t.Errorf("expected orderable product to pass, got %v", err)
	}
}
