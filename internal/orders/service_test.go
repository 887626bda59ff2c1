package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thandondaba/quickbite-backend/internal/checkout"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
	pkgerrors "github.com/thandondaba/quickbite-backend/pkg/errors"
)

type stubRepo struct {
	mu     sync.Mutex
	orders map[int64]*models.Order
}

func newStubRepo(orders ...*models.Order) *stubRepo {
	repo := &stubRepo{orders: make(map[int64]*models.Order)}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (r *stubRepo) UpdateStatusCAS(ctx context.Context, orderID int64, expected, next enums.OrderStatus, emit func(tx *gorm.DB) error) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok || order.Status != expected {
		return false, nil
	}
	order.Status = next
	if emit != nil {
		if err := emit(nil); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *stubRepo) GetByID(ctx context.Context, orderID int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *stubRepo) GetDetail(ctx context.Context, orderID int64) (*models.Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r *stubRepo) ListByStatuses(ctx context.Context, userID *uuid.UUID, statuses []enums.OrderStatus) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []models.Order
	for _, order := range r.orders {
		if userID != nil && order.UserID != *userID {
			continue
		}
		for _, status := range statuses {
			if order.Status == status {
				rows = append(rows, *order)
				break
			}
		}
	}
	return rows, nil
}

var (
	staffActor    = checkout.Identity{UserID: uuid.MustParse("0a62cd7e-3c7e-47b1-a6a9-43e7e4e3a001"), Group: models.GroupAdmin}
	customerActor = checkout.Identity{UserID: uuid.MustParse("7c1f7a40-9a8f-49cb-9a2e-9f05c2f4b002"), Group: models.GroupUser}
)

func newTestService(t *testing.T, repo OrderRepo) *Service {
	t.Helper()
	svc, err := NewService(repo, nil, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestUpdateStatusAppliesTransition(t *testing.T) {
	t.Parallel()

	repo := newStubRepo(&models.Order{ID: 1, UserID: customerActor.UserID, Status: enums.OrderStatusNew})
	svc := newTestService(t, repo)

	updated, err := svc.UpdateStatus(context.Background(), staffActor, 1, "new", "Cooking")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != enums.OrderStatusCooking {
		t.Errorf("status = %s, want Cooking", updated.Status)
	}
}

func TestUpdateStatusRejectsNonStaff(t *testing.T) {
	t.Parallel()

	repo := newStubRepo(&models.Order{ID: 1, Status: enums.OrderStatusNew})
	svc := newTestService(t, repo)

	_, err := svc.UpdateStatus(context.Background(), customerActor, 1, "New", "Cooking")
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	t.Parallel()

	repo := newStubRepo(&models.Order{ID: 1, Status: enums.OrderStatusNew})
	svc := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, staffActor, 1, "Pending", "Cooking"); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Errorf("expected validation error for unknown current, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, staffActor, 1, "New", "Shipped"); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Errorf("expected validation error for unknown next, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, staffActor, 1, "New", "Delivering"); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Errorf("expected state conflict for skipped step, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, staffActor, 1, "New", "New"); !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
		t.Errorf("expected state conflict for self transition, got %v", err)
	}
}

func TestUpdateStatusConflictVersusNotFound(t *testing.T) {
	t.Parallel()

	repo := newStubRepo(&models.Order{ID: 1, Status: enums.OrderStatusCooking})
	svc := newTestService(t, repo)
	ctx := context.Background()

	// Row exists but the caller's view is stale.
	_, err := svc.UpdateStatus(ctx, staffActor, 1, "New", "Cooking")
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Errorf("expected conflict, got %v", err)
	}

	// Row does not exist at all.
	_, err = svc.UpdateStatus(ctx, staffActor, 99, "New", "Cooking")
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

// Two racing transitions from the same observed status: exactly one
// wins, the other sees Conflict.
func TestUpdateStatusRaceExactlyOneWins(t *testing.T) {
	t.Parallel()

	repo := newStubRepo(&models.Order{ID: 1, Status: enums.OrderStatusNew})
	svc := newTestService(t, repo)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.UpdateStatus(context.Background(), staffActor, 1, "New", "Cooking")
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case pkgerrors.HasCode(err, pkgerrors.CodeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected 1 success and 1 conflict, got %d/%d", successes, conflicts)
	}

	order, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != enums.OrderStatusCooking {
		t.Errorf("final status = %s, want Cooking", order.Status)
	}
}

func TestListByGroupScopesNonStaffToOwnOrders(t *testing.T) {
	t.Parallel()

	other := uuid.MustParse("b26a40b6-9f6e-4b06-8a64-1f90f1a4d003")
	repo := newStubRepo(
		&models.Order{ID: 1, UserID: customerActor.UserID, Status: enums.OrderStatusNew},
		&models.Order{ID: 2, UserID: other, Status: enums.OrderStatusCooking},
		&models.Order{ID: 3, UserID: customerActor.UserID, Status: enums.OrderStatusDelivered},
	)
	svc := newTestService(t, repo)
	ctx := context.Background()

	active, err := svc.ListByGroup(ctx, customerActor, enums.StatusGroupActive)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != 1 {
		t.Errorf("expected only own active order, got %v", active)
	}

	archived, err := svc.ListByGroup(ctx, customerActor, enums.StatusGroupArchived)
	if err != nil {
		t.Fatalf("list archived: %v", err)
	}
	if len(archived) != 1 || archived[0].ID != 3 {
		t.Errorf("expected only own archived order, got %v", archived)
	}

	all, err := svc.ListByGroup(ctx, staffActor, enums.StatusGroupActive)
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("staff should see all active orders, got %d", len(all))
	}

	if _, err := svc.ListByGroup(ctx, checkout.Identity{}, enums.StatusGroupActive); !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Errorf("expected unauthorized for anonymous caller, got %v", err)
	}
}

func TestGetDetailEnforcesOwnership(t *testing.T) {
	t.Parallel()

	other := uuid.MustParse("b26a40b6-9f6e-4b06-8a64-1f90f1a4d003")
	repo := newStubRepo(&models.Order{ID: 1, UserID: other, Status: enums.OrderStatusNew})
	svc := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.GetDetail(ctx, customerActor, 1); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Errorf("foreign order must read as not found, got %v", err)
	}

	if _, err := svc.GetDetail(ctx, staffActor, 1); err != nil {
		t.Errorf("staff should read any order: %v", err)
	}

	if _, err := svc.GetDetail(ctx, customerActor, 42); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Errorf("missing order must be not found, got %v", err)
	}
}
