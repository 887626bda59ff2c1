package realtime

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"

	"github.com/thandondaba/quickbite-backend/pkg/enums"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
	"github.com/thandondaba/quickbite-backend/pkg/outbox"
	redispkg "github.com/thandondaba/quickbite-backend/pkg/redis"
)

// ViewCache drops cached read views when the rows behind them change.
// It is the standard bridge subscriber: order events clear the order
// lists and the order detail, product events clear the catalog views.
type ViewCache struct {
	store redispkg.ViewStore
	logg  *logger.Logger
}

func NewViewCache(store redispkg.ViewStore, logg *logger.Logger) (*ViewCache, error) {
	if store == nil {
		return nil, errors.New("view store required")
	}
	return &ViewCache{store: store, logg: logg}, nil
}

// Attach registers the orders and products subscriptions under scope
// and returns a teardown function releasing both. Teardown is safe to
// call exactly once; the caller owns the lifetime (typically the
// process, or a test).
func (v *ViewCache) Attach(bridge *Bridge, scope string) (func(), error) {
	ordersHandle, err := bridge.Subscribe(scope, outbox.TableOrders, nil, v.invalidateOrders)
	if err != nil {
		return nil, err
	}
	productsHandle, err := bridge.Subscribe(scope, outbox.TableProducts, nil, v.invalidateProducts)
	if err != nil {
		bridge.Unsubscribe(ordersHandle)
		return nil, err
	}
	return func() {
		bridge.Unsubscribe(ordersHandle)
		bridge.Unsubscribe(productsHandle)
	}, nil
}

func (v *ViewCache) invalidateOrders(ctx context.Context, event Event) {
	// Status transitions move orders between the two tabs, so both
	// list views go stale regardless of the change kind.
	keys := []string{
		v.store.ViewKey("orders", "list", "staff", enums.StatusGroupActive.String()),
		v.store.ViewKey("orders", "list", "staff", enums.StatusGroupArchived.String()),
	}
	if event.UserID != uuid.Nil {
		keys = append(keys,
			v.store.ViewKey("orders", "list", "user", event.UserID.String(), enums.StatusGroupActive.String()),
			v.store.ViewKey("orders", "list", "user", event.UserID.String(), enums.StatusGroupArchived.String()),
		)
	}
	if event.OrderID != 0 {
		keys = append(keys, v.store.ViewKey("orders", "detail", strconv.FormatInt(event.OrderID, 10)))
	}
	v.drop(ctx, event, keys)
}

func (v *ViewCache) invalidateProducts(ctx context.Context, event Event) {
	keys := []string{v.store.ViewKey("products", "list")}
	if event.ProductID != 0 {
		keys = append(keys, v.store.ViewKey("products", "detail", strconv.FormatInt(event.ProductID, 10)))
	}
	v.drop(ctx, event, keys)
}

func (v *ViewCache) drop(ctx context.Context, event Event, keys []string) {
	if err := v.store.Del(ctx, keys...); err != nil {
		// The views stay warm until their TTL; the next event retries.
		if v.logg != nil {
			logCtx := v.logg.WithFields(ctx, map[string]any{
				"table":  event.Table,
				"change": string(event.Change),
			})
			v.logg.Error(logCtx, "dropping stale view keys failed", err)
		}
		return
	}
	if v.logg != nil {
		logCtx := v.logg.WithFields(ctx, map[string]any{
			"table": event.Table,
			"keys":  len(keys),
		})
		v.logg.Debug(logCtx, "stale views dropped")
	}
}
