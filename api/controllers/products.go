package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/api/middleware"
	"github.com/thandondaba/quickbite-backend/api/responses"
	"github.com/thandondaba/quickbite-backend/api/validators"
	productsvc "github.com/thandondaba/quickbite-backend/internal/products"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
)

// ProductsList serves the active menu, cached behind the bridge keys.
func ProductsList(svc *productsvc.Service, views viewStore, viewTTL time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var key string
		if views != nil {
			key = views.ViewKey("products", "list")
			if cached, ok := readView(r.Context(), views, key); ok {
				responses.WriteSuccess(w, cached)
				return
			}
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeView(r.Context(), views, key, viewTTL, list)
		responses.WriteSuccess(w, list)
	}
}

// ProductDetail serves one listing.
func ProductDetail(svc *productsvc.Service, views viewStore, viewTTL time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "productId")
		productID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || productID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}

		var key string
		if views != nil {
			key = views.ViewKey("products", "detail", raw)
			if cached, ok := readView(r.Context(), views, key); ok {
				responses.WriteSuccess(w, cached)
				return
			}
		}

		view, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeView(r.Context(), views, key, viewTTL, view)
		responses.WriteSuccess(w, view)
	}
}

type upsertProductRequest struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price" validate:"required"`
	SizePrices  map[string]string `json:"size_prices"`
	Image       *string           `json:"image"`
	IsActive    bool              `json:"is_active"`
	InStock     bool              `json:"in_stock"`
}

// AdminProductUpsert creates or updates a catalog listing.
func AdminProductUpsert(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload upsertProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sizePrices, err := parseSizePrices(payload.SizePrices)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		product, err := svc.Upsert(r.Context(), identity, productsvc.UpsertInput{
			ID:          payload.ID,
			Name:        payload.Name,
			Description: payload.Description,
			Price:       payload.Price,
			SizePrices:  sizePrices,
			Image:       payload.Image,
			IsActive:    payload.IsActive,
			InStock:     payload.InStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"id": product.ID})
	}
}

func parseSizePrices(raw map[string]string) (models.SizePriceMap, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	prices := make(models.SizePriceMap, len(raw))
	for size, value := range raw {
		price, err := decimal.NewFromString(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size price")
		}
		prices[enums.ProductSize(size)] = price
	}
	return prices, nil
}
