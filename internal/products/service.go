package products

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/thandondaba/quickbite-backend/internal/checkout"
	"github.com/thandondaba/quickbite-backend/internal/pricing"
	dbpkg "github.com/thandondaba/quickbite-backend/pkg/db"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
	"github.com/thandondaba/quickbite-backend/pkg/outbox"
)

// ProductRepo is the persistence surface the service drives.
type ProductRepo interface {
	ListActive(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, productID int64) (*models.Product, error)
	Save(ctx context.Context, product *models.Product, emit func(tx *gorm.DB) error) error
}

// View is the customer-facing projection: legacy metadata stripped from
// the description, size prices fully resolved.
type View struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Price       decimal.Decimal      `json:"price"`
	SizePrices  models.SizePriceMap  `json:"size_prices"`
	PriceSource pricing.Source       `json:"-"`
	Image       *string              `json:"image,omitempty"`
	InStock     bool                 `json:"in_stock"`
}

// Service serves catalog reads and staff upserts.
type Service struct {
	repo   ProductRepo
	outbox *outbox.Service
}

func NewService(repo ProductRepo, outboxSvc *outbox.Service) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &Service{repo: repo, outbox: outboxSvc}, nil
}

// List returns the active menu.
func (s *Service) List(ctx context.Context) ([]View, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	views := make([]View, len(rows))
	for i, row := range rows {
		views[i] = toView(row)
	}
	return views, nil
}

// Get returns one listing.
func (s *Service) Get(ctx context.Context, productID int64) (*View, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", productID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	view := toView(*product)
	return &view, nil
}

// UpsertInput is the staff-facing write payload. Description is the
// visible text; the legacy metadata line is managed by the service.
type UpsertInput struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	SizePrices  models.SizePriceMap
	Image       *string
	IsActive    bool
	InStock     bool
}

// Upsert validates and persists a listing. The size-price map is
// written both to the structured column and to the legacy description
// metadata so old clients keep resolving the same prices.
func (s *Service) Upsert(ctx context.Context, actor checkout.Identity, input UpsertInput) (*models.Product, error) {
	if actor.Group != models.GroupAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff may edit the catalog")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.Sign() < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price must be non-negative")
	}
	for size := range input.SizePrices {
		if !size.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown size %q in price map", size))
		}
	}

	product := models.Product{
		ID:          input.ID,
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		SizePrices:  input.SizePrices,
		Image:       input.Image,
		IsActive:    input.IsActive,
		InStock:     input.InStock,
		Description: strings.TrimSpace(input.Description),
	}

	if !pricing.Orderable(product) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one size must have a positive price")
	}

	// Keep the legacy encoding in sync for clients that still read it.
	prices, _ := pricing.SizePriceMapFor(product)
	encoded, err := pricing.EncodeDescription(input.Description, prices)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding size price metadata")
	}
	product.Description = encoded

	err = s.repo.Save(ctx, &product, func(tx *gorm.DB) error {
		return s.emitChanged(ctx, tx, actor, product, input.ID != 0)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving product")
	}
	return &product, nil
}

func (s *Service) emitChanged(ctx context.Context, tx *gorm.DB, actor checkout.Identity, product models.Product, existing bool) error {
	if s.outbox == nil {
		return nil
	}
	change := enums.ChangeEventInsert
	if existing {
		change = enums.ChangeEventUpdate
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventProductChanged,
		AggregateType: enums.AggregateProduct,
		AggregateID:   strconv.FormatInt(product.ID, 10),
		Actor:         &outbox.ActorRef{UserID: actor.UserID, Group: actor.Group},
		Version:       1,
		Data: outbox.ProductChangedEvent{
			ProductID: product.ID,
			Change:    change,
			Table:     outbox.TableProducts,
		},
	})
}

func toView(product models.Product) View {
	prices, source := pricing.SizePriceMapFor(product)
	return View{
		ID:          product.ID,
		Name:        product.Name,
		Description: pricing.VisibleDescription(product.Description),
		Price:       product.Price,
		SizePrices:  prices,
		PriceSource: source,
		Image:       product.Image,
		InStock:     product.InStock,
	}
}
