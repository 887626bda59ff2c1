package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/thandondaba/quickbite-backend/api/middleware"
	"github.com/thandondaba/quickbite-backend/api/responses"
	"github.com/thandondaba/quickbite-backend/api/validators"
	"github.com/thandondaba/quickbite-backend/internal/checkout"
	ordersvc "github.com/thandondaba/quickbite-backend/internal/orders"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
)

// viewStore is the read-view cache surface; the realtime bridge deletes
// the same keys when the underlying rows change.
type viewStore interface {
	ViewKey(scope string, parts ...string) string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// OrdersList serves the active/archived order tabs, cached per caller.
func OrdersList(svc *ordersvc.Service, views viewStore, viewTTL time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := middleware.IdentityFromContext(r.Context())

		group := enums.StatusGroupActive
		if raw := r.URL.Query().Get("group"); raw != "" {
			parsed, err := enums.ParseStatusGroup(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status group"))
				return
			}
			group = parsed
		}

		key := listViewKey(views, identity, group)
		if cached, ok := readView(r.Context(), views, key); ok {
			responses.WriteSuccess(w, cached)
			return
		}

		rows, err := svc.ListByGroup(r.Context(), identity, group)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := make([]orderResponse, len(rows))
		for i, row := range rows {
			payload[i] = newOrderResponse(row)
		}

		writeView(r.Context(), views, key, viewTTL, payload)
		responses.WriteSuccess(w, payload)
	}
}

// OrderDetail serves one order with its lines. Only the staff view is
// cached; customer reads always carry the ownership check.
func OrderDetail(svc *ordersvc.Service, views viewStore, viewTTL time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		staff := identity.Group == models.GroupAdmin

		var key string
		if staff && views != nil {
			key = views.ViewKey("orders", "detail", strconv.FormatInt(orderID, 10))
			if cached, ok := readView(r.Context(), views, key); ok {
				responses.WriteSuccess(w, cached)
				return
			}
		}

		order, err := svc.GetDetail(r.Context(), identity, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := newOrderResponse(*order)
		if staff {
			writeView(r.Context(), views, key, viewTTL, payload)
		}
		responses.WriteSuccess(w, payload)
	}
}

type updateStatusRequest struct {
	CurrentStatus string `json:"current_status" validate:"required"`
	NextStatus    string `json:"next_status" validate:"required"`
}

// OrderUpdateStatus applies one staff-driven status transition.
func OrderUpdateStatus(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		updated, err := svc.UpdateStatus(r.Context(), identity, orderID, payload.CurrentStatus, payload.NextStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(*updated))
	}
}

func orderIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "orderId")
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || orderID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}
	return orderID, nil
}

func listViewKey(views viewStore, identity checkout.Identity, group enums.StatusGroup) string {
	if views == nil {
		return ""
	}
	if identity.Group == models.GroupAdmin {
		return views.ViewKey("orders", "list", "staff", group.String())
	}
	return views.ViewKey("orders", "list", "user", identity.UserID.String(), group.String())
}

func readView(ctx context.Context, views viewStore, key string) (json.RawMessage, bool) {
	if views == nil || key == "" {
		return nil, false
	}
	// A flaky cache reads as a miss.
	cached, err := views.Get(ctx, key)
	if err != nil || cached == "" {
		return nil, false
	}
	return json.RawMessage(cached), true
}

func writeView(ctx context.Context, views viewStore, key string, ttl time.Duration, payload any) {
	if views == nil || key == "" || ttl <= 0 {
		return
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = views.Set(ctx, key, string(encoded), ttl)
}

type orderItemResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type orderResponse struct {
	ID             int64               `json:"id"`
	UserID         string              `json:"user_id"`
	Status         string              `json:"status"`
	Total          decimal.Decimal     `json:"total"`
	DeliveryOption string              `json:"delivery_option"`
	DeliveryTerms  *string             `json:"delivery_terms,omitempty"`
	Items          []orderItemResponse `json:"items,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func newOrderResponse(order models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      name,
			Size:      string(item.Size),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return orderResponse{
		ID:             order.ID,
		UserID:         order.UserID.String(),
		Status:         order.Status.String(),
		Total:          order.Total,
		DeliveryOption: order.DeliveryOption.String(),
		DeliveryTerms:  order.DeliveryTerms,
		Items:          items,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}
