package orders

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thandondaba/quickbite-backend/internal/checkout"
	dbpkg "github.com/thandondaba/quickbite-backend/pkg/db"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
	"github.com/thandondaba/quickbite-backend/pkg/metrics"
	"github.com/thandondaba/quickbite-backend/pkg/outbox"
)

// OrderRepo is the persistence surface the service drives.
type OrderRepo interface {
	UpdateStatusCAS(ctx context.Context, orderID int64, expected, next enums.OrderStatus, emit func(tx *gorm.DB) error) (bool, error)
	GetByID(ctx context.Context, orderID int64) (*models.Order, error)
	GetDetail(ctx context.Context, orderID int64) (*models.Order, error)
	ListByStatuses(ctx context.Context, userID *uuid.UUID, statuses []enums.OrderStatus) ([]models.Order, error)
}

// Service applies status transitions and serves order reads.
type Service struct {
	repo    OrderRepo
	outbox  *outbox.Service
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
}

func NewService(repo OrderRepo, outboxSvc *outbox.Service, m *metrics.OrderMetrics, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &Service{repo: repo, outbox: outboxSvc, metrics: m, logg: logg}, nil
}

// UpdateStatus validates and applies one transition with optimistic
// concurrency. rawCurrent is what the caller last read; if the persisted
// status moved on since then, the caller gets Conflict and must re-read
// before retrying.
func (s *Service) UpdateStatus(ctx context.Context, actor checkout.Identity, orderID int64, rawCurrent, rawNext string) (*models.Order, error) {
	if actor.Group != models.GroupAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff may change order status")
	}

	current, err := enums.ParseOrderStatus(rawCurrent)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid current status")
	}
	next, err := enums.ParseOrderStatus(rawNext)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid next status")
	}

	if !CanTransition(current, next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("transition %s -> %s is not allowed", current, next))
	}

	matched, err := s.repo.UpdateStatusCAS(ctx, orderID, current, next, func(tx *gorm.DB) error {
		return s.emitStatusChanged(ctx, tx, actor, orderID, current, next)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
	}

	if !matched {
		// Disambiguate: a missing row is NotFound; an existing row whose
		// status moved on is a lost optimistic-concurrency race.
		if _, probeErr := s.repo.GetByID(ctx, orderID); probeErr != nil {
			if dbpkg.IsNotFound(probeErr) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %d not found", orderID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, probeErr, "probing order after status mismatch")
		}
		if s.metrics != nil {
			s.metrics.IncConflict()
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("order %d status changed concurrently, re-read before retrying", orderID))
	}

	if s.metrics != nil {
		s.metrics.IncTransition(current.String(), next.String())
	}
	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, orderID)
		s.logg.Info(logCtx, fmt.Sprintf("order status %s -> %s", current, next))
	}

	updated, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading order after status update")
	}
	return updated, nil
}

// ListByGroup returns orders in the active or archived tab. Non-staff
// callers only ever see their own orders.
func (s *Service) ListByGroup(ctx context.Context, actor checkout.Identity, group enums.StatusGroup) ([]models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "listing orders requires an authenticated user")
	}

	var owner *uuid.UUID
	if actor.Group != models.GroupAdmin {
		owner = &actor.UserID
	}

	rows, err := s.repo.ListByStatuses(ctx, owner, group.Statuses())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return rows, nil
}

// GetDetail loads one order with items, enforcing ownership for
// non-staff callers.
func (s *Service) GetDetail(ctx context.Context, actor checkout.Identity, orderID int64) (*models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "order detail requires an authenticated user")
	}

	order, err := s.repo.GetDetail(ctx, orderID)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %d not found", orderID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order detail")
	}

	if actor.Group != models.GroupAdmin && order.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %d not found", orderID))
	}
	return order, nil
}

func (s *Service) emitStatusChanged(ctx context.Context, tx *gorm.DB, actor checkout.Identity, orderID int64, from, to enums.OrderStatus) error {
	if s.outbox == nil {
		return nil
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   strconv.FormatInt(orderID, 10),
		Actor:         &outbox.ActorRef{UserID: actor.UserID, Group: actor.Group},
		Version:       1,
		Data: outbox.OrderStatusChangedEvent{
			OrderID: orderID,
			UserID:  actor.UserID,
			From:    from,
			To:      to,
			Change:  enums.ChangeEventUpdate,
			Table:   outbox.TableOrders,
		},
	})
}
