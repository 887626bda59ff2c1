package checkout

import (
	"context"

	"gorm.io/gorm"

	dbpkg "github.com/thandondaba/quickbite-backend/pkg/db"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
)

// Repository performs the raw order writes. The header and the items are
// deliberately separate statements: the two-phase layout with a
// compensating delete is the contract, not an optimization target.
type Repository struct {
	client *dbpkg.Client
}

func NewRepository(client *dbpkg.Client) *Repository {
	return &Repository{client: client}
}

// CreateHeader inserts the order row and fills in the generated id.
func (r *Repository) CreateHeader(ctx context.Context, order *models.Order) error {
	return r.client.DB().WithContext(ctx).Create(order).Error
}

// CreateItems batch-inserts the order lines and runs emit inside the
// same transaction so the outbox row commits with the items.
func (r *Repository) CreateItems(ctx context.Context, items []models.OrderItem, emit func(tx *gorm.DB) error) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		if emit != nil {
			return emit(tx)
		}
		return nil
	})
}

// DeleteHeader removes an order row. Used only as the compensating
// action after a failed items insert.
func (r *Repository) DeleteHeader(ctx context.Context, orderID int64) error {
	return r.client.DB().WithContext(ctx).Delete(&models.Order{}, orderID).Error
}
