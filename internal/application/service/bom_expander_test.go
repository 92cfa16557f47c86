package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand_CompoundsAddonWithLineQuantity(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")

	reqs, err := h.bom.Expand(context.Background(), uuid.New(), []BOMLine{{
		ProductID: m.product.ID,
		Quantity:  2,
		Addons:    []BOMAddonLine{{AddonID: m.addon.ID, Quantity: 3}},
	}})
	require.NoError(t, err)

	got := map[uuid.UUID]string{}
	for _, r := range reqs {
		got[r.MaterialID] = r.Quantity.String()
	}
	assert.Equal(t, map[uuid.UUID]string{m.x.ID: "4", m.y.ID: "6"}, got)
}

func TestExpand_AggregatesAndSortsByMaterial(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")
	mocha := testutil.CreateProduct(t, h.db, "Mocha", "30.00", "9.00")
	testutil.ProductRecipe(t, h.db, mocha.ID, nil, m.x.ID, "1.5")
	testutil.ProductRecipe(t, h.db, mocha.ID, nil, m.y.ID, "1")

	reqs, err := h.bom.Expand(context.Background(), uuid.New(), []BOMLine{
		{ProductID: m.product.ID, Quantity: 1},
		{ProductID: mocha.ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	for i := 1; i < len(reqs); i++ {
		assert.Negative(t, bytes.Compare(reqs[i-1].MaterialID[:], reqs[i].MaterialID[:]))
	}
	for _, r := range reqs {
		switch r.MaterialID {
		case m.x.ID:
			assert.True(t, testutil.Dec("5").Equal(r.Quantity), r.Quantity.String())
		case m.y.ID:
			assert.True(t, testutil.Dec("2").Equal(r.Quantity), r.Quantity.String())
		}
	}
}

func TestExpand_VariantRecipesOverrideGeneric(t *testing.T) {
	h := newHarness(t)
	m := seedMenu(t, h.db, "100", "100")
	ice := testutil.CreateMaterial(t, h.db, "Ice", "100")
	iced := "Iced"
	testutil.ProductRecipe(t, h.db, m.product.ID, &iced, ice.ID, "3")

	lower := "iced"
	reqs, err := h.bom.Expand(context.Background(), uuid.New(), []BOMLine{{ProductID: m.product.ID, Variant: &lower, Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, ice.ID, reqs[0].MaterialID)
	assert.True(t, testutil.Dec("3").Equal(reqs[0].Quantity))

	hot := "Hot"
	reqs, err = h.bom.Expand(context.Background(), uuid.New(), []BOMLine{{ProductID: m.product.ID, Variant: &hot, Quantity: 1}})
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, m.x.ID, reqs[0].MaterialID)
}

func TestExpand_SkipsItemsWithoutRecipe(t *testing.T) {
	h := newHarness(t)
	water := testutil.CreateProduct(t, h.db, "Water", "3.00", "0.50")

	reqs, err := h.bom.Expand(context.Background(), uuid.New(), []BOMLine{{ProductID: water.ID, Quantity: 4}})
	require.NoError(t, err)
	assert.Empty(t, reqs)
}
