package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/thandondaba/quickbite-backend/pkg/db"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
)

// Repository reads and writes order rows.
type Repository struct {
	client *dbpkg.Client
}

func NewRepository(client *dbpkg.Client) *Repository {
	return &Repository{client: client}
}

// UpdateStatusCAS conditions the write on the persisted status still
// matching expected. It reports false when no row matched, which the
// service disambiguates into Conflict or NotFound.
func (r *Repository) UpdateStatusCAS(ctx context.Context, orderID int64, expected, next enums.OrderStatus, emit func(tx *gorm.DB) error) (bool, error) {
	matched := false
	err := r.client.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, expected).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		matched = true
		if emit != nil {
			return emit(tx)
		}
		return nil
	})
	return matched, err
}

// GetByID loads one order header.
func (r *Repository) GetByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := r.client.DB().WithContext(ctx).First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetDetail loads one order with its items and their products.
func (r *Repository) GetDetail(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := r.client.DB().WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByStatuses returns orders in any of the given statuses, newest
// first. A non-nil userID restricts the list to that owner.
func (r *Repository) ListByStatuses(ctx context.Context, userID *uuid.UUID, statuses []enums.OrderStatus) ([]models.Order, error) {
	q := r.client.DB().WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
