package products

import (
	"context"

	"gorm.io/gorm"

	dbpkg "github.com/thandondaba/quickbite-backend/pkg/db"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
)

// Repository reads and writes catalog rows.
type Repository struct {
	client *dbpkg.Client
}

func NewRepository(client *dbpkg.Client) *Repository {
	return &Repository{client: client}
}

// ListActive returns active listings, newest first.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.client.DB().WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID loads one product.
func (r *Repository) GetByID(ctx context.Context, productID int64) (*models.Product, error) {
	var product models.Product
	if err := r.client.DB().WithContext(ctx).First(&product, productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Save upserts the product and runs emit in the same transaction.
func (r *Repository) Save(ctx context.Context, product *models.Product, emit func(tx *gorm.DB) error) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Save(product).Error; err != nil {
			return err
		}
		if emit != nil {
			return emit(tx)
		}
		return nil
	})
}
