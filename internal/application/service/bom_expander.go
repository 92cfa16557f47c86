package service

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BOMAddonLine is an add-on on a BOM line. Quantity is per unit of the line.
type BOMAddonLine struct {
	AddonID  uuid.UUID
	Quantity int
}

// BOMLine is one order line as seen by recipe expansion.
type BOMLine struct {
	ProductID uuid.UUID
	Variant   *string
	Quantity  int
	Addons    []BOMAddonLine
}

// MaterialRequirement is the total quantity of one material an order consumes.
type MaterialRequirement struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
}

// BOMExpander turns order lines into aggregated material requirements
type BOMExpander struct {
	recipes repository.RecipeRepository
	log     logrus.FieldLogger
}

// NewBOMExpander creates a new BOM expander
func NewBOMExpander(recipes repository.RecipeRepository, log logrus.FieldLogger) *BOMExpander {
	return &BOMExpander{recipes: recipes, log: log}
}

// LinesFromItems rebuilds BOM lines from persisted order items.
func LinesFromItems(items []entity.OrderItem) []BOMLine {
	lines := make([]BOMLine, 0, len(items))
	for _, item := range items {
		line := BOMLine{
			ProductID: item.ProductID,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
		}
		for _, a := range item.Addons {
			line.Addons = append(line.Addons, BOMAddonLine{AddonID: a.AddonID, Quantity: a.Quantity})
		}
		lines = append(lines, line)
	}
	return lines
}

// ExpandOrder expands the persisted items of order. Items and their add-ons
// must be loaded.
func (b *BOMExpander) ExpandOrder(ctx context.Context, order *entity.Order) ([]MaterialRequirement, error) {
	return b.Expand(ctx, order.ID, LinesFromItems(order.Items))
}

// Expand aggregates recipe usage across lines. The result has one entry per
// material, sorted by material id. Items without an active recipe are skipped.
func (b *BOMExpander) Expand(ctx context.Context, orderID uuid.UUID, lines []BOMLine) ([]MaterialRequirement, error) {
	totals := make(map[uuid.UUID]decimal.Decimal)
	log := b.log.WithField("order_id", orderID)

	for _, line := range lines {
		lineQty := decimal.NewFromInt(int64(line.Quantity))

		entries, err := b.recipes.ListActiveForProduct(ctx, line.ProductID)
		if err != nil {
			return nil, apperror.NewInternalError("Failed to load recipe", err)
		}
		entries = selectVariant(entries, line.Variant)
		if len(entries) == 0 {
			log.WithField("product_id", line.ProductID).Warn("No active recipe for product, skipping stock usage")
		}
		for _, r := range entries {
			totals[r.MaterialID] = totals[r.MaterialID].Add(r.QuantityPerUnit.Mul(lineQty))
		}

		for _, addon := range line.Addons {
			entries, err := b.recipes.ListActiveForAddon(ctx, addon.AddonID)
			if err != nil {
				return nil, apperror.NewInternalError("Failed to load recipe", err)
			}
			if len(entries) == 0 {
				log.WithField("addon_id", addon.AddonID).Warn("No active recipe for add-on, skipping stock usage")
				continue
			}
			units := decimal.NewFromInt(int64(addon.Quantity)).Mul(lineQty)
			for _, r := range entries {
				totals[r.MaterialID] = totals[r.MaterialID].Add(r.QuantityPerUnit.Mul(units))
			}
		}
	}

	reqs := make([]MaterialRequirement, 0, len(totals))
	for id, qty := range totals {
		if qty.IsPositive() {
			reqs = append(reqs, MaterialRequirement{MaterialID: id, Quantity: qty})
		}
	}
	sort.Slice(reqs, func(i, j int) bool {
		return bytes.Compare(reqs[i].MaterialID[:], reqs[j].MaterialID[:]) < 0
	})
	return reqs, nil
}

// selectVariant keeps the entries for variant when any exist, otherwise the
// entries that apply to every variant.
func selectVariant(entries []entity.Recipe, variant *string) []entity.Recipe {
	var specific, generic []entity.Recipe
	for _, r := range entries {
		switch {
		case r.Variant == nil || *r.Variant == "":
			generic = append(generic, r)
		case variant != nil && strings.EqualFold(*r.Variant, *variant):
			specific = append(specific, r)
		}
	}
	if len(specific) > 0 {
		return specific
	}
	return generic
}
