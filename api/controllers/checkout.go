package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/api/middleware"
	"github.com/thandondaba/quickbite-backend/api/responses"
	cartpkg "github.com/thandondaba/quickbite-backend/internal/cart"
	checkoutsvc "github.com/thandondaba/quickbite-backend/internal/checkout"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
)

type checkoutResponse struct {
	OrderID int64  `json:"order_id,omitempty"`
	Outcome string `json:"outcome"`
}

// Checkout converts the caller's cart into a persisted order. The
// delivery fee is resolved at wiring time from configuration and only
// applies to delivery orders.
func Checkout(svc *checkoutsvc.Service, carts *cartpkg.Registry, deliveryFee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())
		userCart := carts.Get(identity.UserID)

		result, err := svc.Checkout(r.Context(), identity, userCart, deliveryFee)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			OrderID: result.OrderID,
			Outcome: result.Outcome.String(),
		})
	}
}
