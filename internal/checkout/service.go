package checkout

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/thandondaba/quickbite-backend/internal/cart"
	"github.com/thandondaba/quickbite-backend/pkg/config"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
	"github.com/thandondaba/quickbite-backend/pkg/metrics"
	"github.com/thandondaba/quickbite-backend/pkg/outbox"
)

// Identity is the acting user, threaded explicitly into every call.
type Identity struct {
	UserID uuid.UUID
	Group  string
}

// OrderStore is the persistence surface the engine drives.
type OrderStore interface {
	CreateHeader(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem, emit func(tx *gorm.DB) error) error
	DeleteHeader(ctx context.Context, orderID int64) error
}

// Service converts a cart into a persisted order through a two-phase
// write with a compensating delete.
type Service struct {
	store   OrderStore
	outbox  *outbox.Service
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
	cfg     config.CheckoutConfig
}

func NewService(store OrderStore, outboxSvc *outbox.Service, m *metrics.CheckoutMetrics, logg *logger.Logger, cfg config.CheckoutConfig) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("order store required")
	}
	return &Service{
		store:   store,
		outbox:  outboxSvc,
		metrics: m,
		logg:    logg,
		cfg:     cfg,
	}, nil
}

// Checkout runs the full saga: validate, insert header, insert items,
// compensate on partial failure, clear the cart on success. The cart is
// only cleared when both phases commit.
func (s *Service) Checkout(ctx context.Context, identity Identity, userCart *cart.Cart, deliveryFee decimal.Decimal) (Result, error) {
	start := time.Now()
	result, err := s.checkout(ctx, identity, userCart, deliveryFee)
	if s.metrics != nil && result.Outcome != "" {
		s.metrics.IncOutcome(result.Outcome.String())
		s.metrics.ObserveDuration(result.Outcome.String(), time.Since(start))
	}
	return result, err
}

func (s *Service) checkout(ctx context.Context, identity Identity, userCart *cart.Cart, deliveryFee decimal.Decimal) (Result, error) {
	if identity.UserID == uuid.Nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "checkout requires an authenticated user")
	}
	if userCart == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is required")
	}

	snapshot := userCart.Snapshot()
	if len(snapshot.Lines) == 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !snapshot.Fulfillment.IsSet() {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "fulfillment choice is required before checkout")
	}
	if snapshot.Fulfillment == enums.FulfillmentDelivery && !snapshot.TermsAccepted {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery terms must be accepted for delivery orders")
	}
	if snapshot.Total.Sign() <= 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "cart total must be positive")
	}

	finalTotal := snapshot.Total
	if snapshot.Fulfillment == enums.FulfillmentDelivery && deliveryFee.Sign() > 0 {
		finalTotal = finalTotal.Add(deliveryFee)
	}

	header := models.Order{
		UserID:         identity.UserID,
		Status:         enums.OrderStatusNew,
		Total:          finalTotal,
		DeliveryOption: enums.DeliveryOptionFromFulfillment(snapshot.Fulfillment),
	}

	headerCtx, cancelHeader := s.stepContext(ctx)
	err := s.store.CreateHeader(headerCtx, &header)
	cancelHeader()
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inserting order header")
	}

	items := make([]models.OrderItem, len(snapshot.Lines))
	for i, line := range snapshot.Lines {
		items[i] = models.OrderItem{
			OrderID:   header.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Size:      line.Size,
			UnitPrice: line.UnitPrice,
		}
	}

	itemsCtx, cancelItems := s.stepContext(ctx)
	err = s.store.CreateItems(itemsCtx, items, func(tx *gorm.DB) error {
		return s.emitOrderCreated(itemsCtx, tx, identity, header, len(items))
	})
	cancelItems()
	if err != nil {
		return s.compensate(ctx, header.ID, err)
	}

	userCart.Clear()

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, header.ID)
		s.logg.Info(logCtx, "checkout committed")
	}
	return Result{OrderID: header.ID, Outcome: OutcomeCommitted}, nil
}

// compensate issues exactly one best-effort header delete. The original
// items-insert error is what propagates; a failed delete leaves an
// orphaned header behind, which is logged and counted rather than
// retried.
func (s *Service) compensate(ctx context.Context, orderID int64, cause error) (Result, error) {
	// Compensation still has to run when the caller's context is gone.
	compCtx, cancel := s.stepContext(context.WithoutCancel(ctx))
	defer cancel()

	wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "inserting order items")

	if delErr := s.store.DeleteHeader(compCtx, orderID); delErr != nil {
		if s.logg != nil {
			logCtx := s.logg.WithOrderID(ctx, orderID)
			s.logg.Error(logCtx, "compensating delete failed, order header orphaned", multierr.Append(cause, delErr))
		}
		if s.metrics != nil {
			s.metrics.IncCompensationFailure()
		}
		return Result{OrderID: orderID, Outcome: OutcomeOrphanedHeader}, wrapped
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, orderID)
		s.logg.Warn(logCtx, "checkout rolled back after items insert failure")
	}
	return Result{Outcome: OutcomeRolledBack}, wrapped
}

func (s *Service) emitOrderCreated(ctx context.Context, tx *gorm.DB, identity Identity, header models.Order, itemCount int) error {
	if s.outbox == nil {
		return nil
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   strconv.FormatInt(header.ID, 10),
		Actor:         &outbox.ActorRef{UserID: identity.UserID, Group: identity.Group},
		Version:       1,
		Data: outbox.OrderCreatedEvent{
			OrderID:        header.ID,
			UserID:         header.UserID,
			Total:          header.Total,
			DeliveryOption: header.DeliveryOption,
			ItemCount:      itemCount,
			Change:         enums.ChangeEventInsert,
			Table:          outbox.TableOrders,
		},
	})
}

func (s *Service) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.StepTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
