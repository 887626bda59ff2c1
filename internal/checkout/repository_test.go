package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/thandondaba/quickbite-backend/pkg/db"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
)

func setupCheckoutTestDB(t *testing.T) *dbpkg.Client {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'New',
  total NUMERIC NOT NULL,
  delivery_option TEXT NOT NULL DEFAULT 'No',
  delivery_terms TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL,
  product_id INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  size TEXT NOT NULL,
  unit_price NUMERIC NOT NULL
);`
	outboxEvents := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, conn.Exec(orders).Error)
	require.NoError(t, conn.Exec(orderItems).Error)
	require.NoError(t, conn.Exec(outboxEvents).Error)
	return dbpkg.NewWithConn(conn)
}

func TestCreateHeaderAssignsID(t *testing.T) {
	client := setupCheckoutTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	order := &models.Order{
		UserID:         uuid.New(),
		Status:         enums.OrderStatusNew,
		Total:          decimal.RequireFromString("31.00"),
		DeliveryOption: enums.DeliveryOptionYes,
	}
	require.NoError(t, repo.CreateHeader(ctx, order))
	assert.NotZero(t, order.ID)
}

func TestCreateItemsEmitsInSameTx(t *testing.T) {
	client := setupCheckoutTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	order := &models.Order{
		UserID:         uuid.New(),
		Status:         enums.OrderStatusNew,
		Total:          decimal.RequireFromString("20.00"),
		DeliveryOption: enums.DeliveryOptionNo,
	}
	require.NoError(t, repo.CreateHeader(ctx, order))

	items := []models.OrderItem{
		{OrderID: order.ID, ProductID: 1, Quantity: 1, Size: enums.ProductSizeM, UnitPrice: decimal.RequireFromString("12.00")},
		{OrderID: order.ID, ProductID: 2, Quantity: 2, Size: enums.ProductSizeL, UnitPrice: decimal.RequireFromString("4.00")},
	}
	eventID := uuid.New()
	err := repo.CreateItems(ctx, items, func(tx *gorm.DB) error {
		return tx.Create(&models.OutboxEvent{
			ID:            eventID,
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   "1",
			Payload:       json.RawMessage(`{}`),
		}).Error
	})
	require.NoError(t, err)

	var itemCount int64
	require.NoError(t, client.DB().Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(2), itemCount)

	var event models.OutboxEvent
	require.NoError(t, client.DB().First(&event, "id = ?", eventID).Error)
	assert.Equal(t, enums.EventOrderCreated, event.EventType)
}

func TestCreateItemsEmitFailureRollsBack(t *testing.T) {
	client := setupCheckoutTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	order := &models.Order{
		UserID:         uuid.New(),
		Status:         enums.OrderStatusNew,
		Total:          decimal.RequireFromString("8.00"),
		DeliveryOption: enums.DeliveryOptionNo,
	}
	require.NoError(t, repo.CreateHeader(ctx, order))

	emitErr := errors.New("outbox write failed")
	items := []models.OrderItem{
		{OrderID: order.ID, ProductID: 3, Quantity: 1, Size: enums.ProductSizeS, UnitPrice: decimal.RequireFromString("8.00")},
	}
	err := repo.CreateItems(ctx, items, func(tx *gorm.DB) error {
		return emitErr
	})
	require.ErrorIs(t, err, emitErr)

	var itemCount int64
	require.NoError(t, client.DB().Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount, "items must not survive a failed outbox write")
}

func TestDeleteHeaderCompensation(t *testing.T) {
	client := setupCheckoutTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	order := &models.Order{
		UserID:         uuid.New(),
		Status:         enums.OrderStatusNew,
		Total:          decimal.RequireFromString("15.00"),
		DeliveryOption: enums.DeliveryOptionNo,
	}
	require.NoError(t, repo.CreateHeader(ctx, order))
	require.NoError(t, repo.DeleteHeader(ctx, order.ID))

	err := client.DB().First(&models.Order{}, order.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
