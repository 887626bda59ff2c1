package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/api/middleware"
	"github.com/thandondaba/quickbite-backend/api/responses"
	"github.com/thandondaba/quickbite-backend/api/validators"
	cartpkg "github.com/thandondaba/quickbite-backend/internal/cart"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
)

// productSource loads catalog rows for price resolution at add time.
type productSource interface {
	GetByID(ctx context.Context, productID int64) (*models.Product, error)
}

// CartFetch returns the caller's current cart.
func CartFetch(carts *cartpkg.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		userCart := carts.Get(identity.UserID)
		responses.WriteSuccess(w, newCartResponse(userCart))
	}
}

type addItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,min=1"`
	Size      string `json:"size" validate:"required"`
}

// CartAddItem resolves a price for (product, size) and merges the line
// into the cart.
func CartAddItem(carts *cartpkg.Registry, products productSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		size, err := enums.ParseProductSize(payload.Size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size"))
			return
		}

		product, err := products.GetByID(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found"))
			return
		}
		if !product.IsActive || !product.InStock {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product is not orderable"))
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		userCart := carts.Get(identity.UserID)
		if err := userCart.AddItem(*product, size); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(userCart))
	}
}

type updateItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,min=1"`
	Size      string  `json:"size" validate:"required"`
	Quantity  float64 `json:"quantity"`
}

// CartUpdateItem replaces a line quantity. Fractional quantities are
// floored; zero or negative removes the line.
func CartUpdateItem(carts *cartpkg.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		size, err := enums.ParseProductSize(payload.Size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size"))
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		userCart := carts.Get(identity.UserID)

		if quantity, ok := cartpkg.NormalizeQuantity(payload.Quantity); ok {
			userCart.UpdateQuantity(payload.ProductID, size, quantity)
		}

		responses.WriteSuccess(w, newCartResponse(userCart))
	}
}

type removeItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,min=1"`
	Size      string `json:"size" validate:"required"`
}

func CartRemoveItem(carts *cartpkg.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload removeItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		size, err := enums.ParseProductSize(payload.Size)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size"))
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		userCart := carts.Get(identity.UserID)
		userCart.RemoveItem(payload.ProductID, size)

		responses.WriteSuccess(w, newCartResponse(userCart))
	}
}

func CartClear(carts *cartpkg.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		userCart := carts.Get(identity.UserID)
		userCart.Clear()
		responses.WriteSuccess(w, newCartResponse(userCart))
	}
}

type fulfillmentRequest struct {
	Option string `json:"option" validate:"required,oneof=delivery collection"`
}

func CartFulfillment(carts *cartpkg.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload fulfillmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		option, err := enums.ParseFulfillmentOption(payload.Option)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment option"))
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		userCart := carts.Get(identity.UserID)
		if err := userCart.SetFulfillmentOption(option); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(userCart))
	}
}

func CartAcceptTerms(carts *cartpkg.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		userCart := carts.Get(identity.UserID)
		userCart.AcceptDeliveryTerms()
		responses.WriteSuccess(w, newCartResponse(userCart))
	}
}

type cartLineResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartResponse struct {
	Items         []cartLineResponse `json:"items"`
	Fulfillment   string             `json:"fulfillment,omitempty"`
	TermsAccepted bool               `json:"terms_accepted"`
	Total         decimal.Decimal    `json:"total"`
}

func newCartResponse(userCart *cartpkg.Cart) cartResponse {
	snapshot := userCart.Snapshot()
	items := make([]cartLineResponse, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		items = append(items, cartLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			Size:      string(line.Size),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal(),
		})
	}
	return cartResponse{
		Items:         items,
		Fulfillment:   string(snapshot.Fulfillment),
		TermsAccepted: snapshot.TermsAccepted,
		Total:         snapshot.Total,
	}
}
