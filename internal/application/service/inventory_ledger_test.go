package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/testutil"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndReserve_ShortfallLeavesStockUntouched(t *testing.T) {
	h := newHarness(t)
	plenty := testutil.CreateMaterial(t, h.db, "Sugar", "50")
	scarce := testutil.CreateMaterial(t, h.db, "Milk", "3")

	err := h.ledger.CheckAndReserve(context.Background(), []MaterialRequirement{
		{MaterialID: plenty.ID, Quantity: testutil.Dec("10")},
		{MaterialID: scarce.ID, Quantity: testutil.Dec("4")},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.True(t, IsInsufficientStock(err))
	assert.Contains(t, err.Error(), "Milk")

	assert.True(t, testutil.Dec("3").Equal(testutil.StockOf(t, h.db, scarce.ID)))
	assert.True(t, testutil.Dec("50").Equal(testutil.StockOf(t, h.db, plenty.ID)))
}

func TestCheckAndReserve_ExactStockReachesZero(t *testing.T) {
	h := newHarness(t)
	milk := testutil.CreateMaterial(t, h.db, "Milk", "4")

	require.NoError(t, h.ledger.CheckAndReserve(context.Background(), []MaterialRequirement{
		{MaterialID: milk.ID, Quantity: testutil.Dec("4")},
	}))
	assert.True(t, testutil.StockOf(t, h.db, milk.ID).IsZero())
}

func TestCommit_IsIdempotentPerOrder(t *testing.T) {
	h := newHarness(t)
	milk := testutil.CreateMaterial(t, h.db, "Milk", "10")
	orderID := uuid.New()
	reqs := []MaterialRequirement{{MaterialID: milk.ID, Quantity: testutil.Dec("4")}}

	applied, err := h.ledger.Commit(context.Background(), orderID, reqs)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = h.ledger.Commit(context.Background(), orderID, reqs)
	require.NoError(t, err)
	assert.False(t, applied)

	assert.True(t, testutil.Dec("6").Equal(testutil.StockOf(t, h.db, milk.ID)))
	assert.EqualValues(t, 1, h.count(t, &entity.MaterialUsage{}))
}

func TestCommit_ShortfallRecordsNoUsage(t *testing.T) {
	h := newHarness(t)
	milk := testutil.CreateMaterial(t, h.db, "Milk", "3")
	orderID := uuid.New()

	_, err := h.ledger.Commit(context.Background(), orderID, []MaterialRequirement{
		{MaterialID: milk.ID, Quantity: testutil.Dec("4")},
	})
	require.Error(t, err)
	assert.True(t, IsInsufficientStock(err))
	assert.EqualValues(t, 0, h.count(t, &entity.MaterialUsage{}))
	assert.True(t, testutil.Dec("3").Equal(testutil.StockOf(t, h.db, milk.ID)))
}

func TestRelease_RestoresCommittedStock(t *testing.T) {
	h := newHarness(t)
	milk := testutil.CreateMaterial(t, h.db, "Milk", "10")
	beans := testutil.CreateMaterial(t, h.db, "Beans", "5")
	orderID := uuid.New()

	_, err := h.ledger.Commit(context.Background(), orderID, []MaterialRequirement{
		{MaterialID: milk.ID, Quantity: testutil.Dec("4")},
		{MaterialID: beans.ID, Quantity: testutil.Dec("0.5")},
	})
	require.NoError(t, err)

	released, err := h.ledger.Release(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, released)
	assert.True(t, testutil.Dec("10").Equal(testutil.StockOf(t, h.db, milk.ID)))
	assert.True(t, testutil.Dec("5").Equal(testutil.StockOf(t, h.db, beans.ID)))

	released, err = h.ledger.Release(context.Background(), orderID)
	require.NoError(t, err)
	assert.False(t, released)
}

func TestLowStock(t *testing.T) {
	h := newHarness(t)
	milk := testutil.CreateMaterial(t, h.db, "Milk", "1")
	beans := testutil.CreateMaterial(t, h.db, "Beans", "20")

	low, err := h.ledger.LowStock(context.Background(), []MaterialRequirement{
		{MaterialID: milk.ID, Quantity: testutil.Dec("1")},
		{MaterialID: beans.ID, Quantity: testutil.Dec("1")},
	})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, milk.ID, low[0].ID)
}
