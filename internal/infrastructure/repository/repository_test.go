package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	domainRepo "github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createOrder(t *testing.T, db *gorm.DB, status enum.OrderStatus) *entity.Order {
	t.Helper()
	order := &entity.Order{
		Status:      status,
		Channel:     enum.OrderChannelOnline,
		TotalAmount: testutil.Dec("10.00"),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func createPayment(t *testing.T, db *gorm.DB, orderID uuid.UUID, expiresAt *time.Time) *entity.Payment {
	t.Helper()
	payment := &entity.Payment{
		OrderID:   orderID,
		Method:    enum.PaymentMethodGatewayQRIS,
		Status:    enum.PaymentStatusPending,
		Amount:    testutil.Dec("10.00"),
		ExpiresAt: expiresAt,
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func TestPaymentTransition_StaleVersionLoses(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	order := createOrder(t, db, enum.OrderStatusPending)
	stored := createPayment(t, db, order.ID, nil)

	first, err := repo.GetByOrderID(ctx, order.ID)
	require.NoError(t, err)
	second, err := repo.GetByOrderID(ctx, order.ID)
	require.NoError(t, err)

	paid := testutil.Dec("10.00")
	require.NoError(t, repo.Transition(ctx, first, domainRepo.PaymentTransition{
		Status:     enum.PaymentStatusSuccess,
		PaidAmount: &paid,
	}))
	assert.Equal(t, enum.PaymentStatusSuccess, first.Status)
	assert.Equal(t, stored.Version+1, first.Version)

	err = repo.Transition(ctx, second, domainRepo.PaymentTransition{Status: enum.PaymentStatusExpired})
	assert.ErrorIs(t, err, domainRepo.ErrStaleTransition)

	reloaded, err := repo.GetByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusSuccess, reloaded.Status)
	assert.True(t, paid.Equal(reloaded.PaidAmount))
}

func TestListExpiredPending(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPaymentRepository(db)
	now := time.Now()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	expired := createPayment(t, db, createOrder(t, db, enum.OrderStatusPending).ID, &past)
	createPayment(t, db, createOrder(t, db, enum.OrderStatusPending).ID, &future)
	noExpiry := createPayment(t, db, createOrder(t, db, enum.OrderStatusPending).ID, nil)

	got, err := repo.ListExpiredPending(context.Background(), now, now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, expired.ID, got[0].ID)

	got, err = repo.ListExpiredPending(context.Background(), now, now.Add(time.Second), 10)
	require.NoError(t, err)
	ids := []uuid.UUID{}
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{expired.ID, noExpiry.ID}, ids)
}

func TestDecrementBatch_AllOrNothing(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMaterialRepository(db)
	beans := testutil.CreateMaterial(t, db, "Beans", "10")
	milk := testutil.CreateMaterial(t, db, "Milk", "1.5")

	err := repo.DecrementBatch(context.Background(), []domainRepo.StockChange{
		{MaterialID: beans.ID, Quantity: testutil.Dec("4")},
		{MaterialID: milk.ID, Quantity: testutil.Dec("2")},
	})
	var shortfall *domainRepo.InsufficientStockError
	require.True(t, errors.As(err, &shortfall))
	assert.Equal(t, milk.ID, shortfall.MaterialID)

	assert.True(t, testutil.Dec("10").Equal(testutil.StockOf(t, db, beans.ID)))
	assert.True(t, testutil.Dec("1.5").Equal(testutil.StockOf(t, db, milk.ID)))

	require.NoError(t, repo.DecrementBatch(context.Background(), []domainRepo.StockChange{
		{MaterialID: beans.ID, Quantity: testutil.Dec("10")},
		{MaterialID: milk.ID, Quantity: testutil.Dec("0.5")},
	}))
	assert.True(t, testutil.StockOf(t, db, beans.ID).IsZero())
	assert.True(t, testutil.Dec("1").Equal(testutil.StockOf(t, db, milk.ID)))
}

func TestDecrementBatch_SavepointInsideTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMaterialRepository(db)
	orders := NewOrderRepository(db)
	tx := NewTransactor(db)
	beans := testutil.CreateMaterial(t, db, "Beans", "1")
	order := createOrder(t, db, enum.OrderStatusPending)

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		err := repo.DecrementBatch(ctx, []domainRepo.StockChange{{MaterialID: beans.ID, Quantity: testutil.Dec("2")}})
		var shortfall *domainRepo.InsufficientStockError
		require.True(t, errors.As(err, &shortfall))
		return orders.MarkStockShortfall(ctx, order.ID)
	})
	require.NoError(t, err)

	reloaded, err := orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.StockShortfall)
	assert.True(t, testutil.Dec("1").Equal(testutil.StockOf(t, db, beans.ID)))
}

func TestOrderTransitionStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()
	order := createOrder(t, db, enum.OrderStatusPending)

	moved, err := repo.TransitionStatus(ctx, order.ID, []enum.OrderStatus{enum.OrderStatusPending}, enum.OrderStatusProcessing)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repo.TransitionStatus(ctx, order.ID, []enum.OrderStatus{enum.OrderStatusPending}, enum.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, moved)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderList_FiltersByCustomer(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewOrderRepository(db)
	customer := uuid.New()

	mine := createOrder(t, db, enum.OrderStatusPending)
	require.NoError(t, db.Model(mine).Update("customer_id", customer).Error)
	createOrder(t, db, enum.OrderStatusPending)

	orders, total, err := repo.List(context.Background(), &domainRepo.OrderFilterParams{CustomerID: &customer})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)
}

func TestIdempotencyKeys(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewIdempotencyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{
		Key: "k1", Scope: "ip:1.2.3.4", Endpoint: "/api/v1/orders", RequestHash: "h",
		ResponseCode: 201, ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{
		Key: "k2", Scope: "ip:1.2.3.4", Endpoint: "/api/v1/orders", RequestHash: "h",
		ResponseCode: 201, ExpiresAt: time.Now().Add(-time.Hour),
	}))

	got, err := repo.GetByKey(ctx, "ip:1.2.3.4", "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 201, got.ResponseCode)

	other, err := repo.GetByKey(ctx, "ip:5.6.7.8", "k1")
	require.NoError(t, err)
	assert.Nil(t, other)

	purged, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	require.NoError(t, repo.DeleteByKey(ctx, "ip:1.2.3.4", "k1"))
	gone, err := repo.GetByKey(ctx, "ip:1.2.3.4", "k1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}
