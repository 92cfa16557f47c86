package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/sangkips/brewline-api/internal/infrastructure/gateway"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// LineAddonInput is an add-on requested on a line. Quantity is per unit of the line.
type LineAddonInput struct {
	AddonID  uuid.UUID
	Quantity int
}

// LineInput is one requested cart line.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Variant   *string
	Addons    []LineAddonInput
}

// PriceInput is the raw cart to price.
type PriceInput struct {
	Channel       string
	PaymentMethod string
	Items         []LineInput
}

// PricedOrder is a validated cart with snapshotted prices.
type PricedOrder struct {
	Method       enum.PaymentMethod
	Channel      enum.OrderChannel
	Items        []entity.OrderItem
	Total        decimal.Decimal
	GatewayItems []gateway.ChargeItem
}

// PricingEngine validates carts and prices them against the catalog
type PricingEngine struct {
	catalog CatalogReader
}

// NewPricingEngine creates a new pricing engine
func NewPricingEngine(catalog CatalogReader) *PricingEngine {
	return &PricingEngine{catalog: catalog}
}

// ParsePaymentMethod maps a raw method string onto the closed method set.
func ParsePaymentMethod(raw string) (enum.PaymentMethod, error) {
	m, err := enum.ParsePaymentMethod(raw)
	if err != nil {
		return "", apperror.NewValidationError([]apperror.FieldError{
			{Field: "payment_method", Message: fmt.Sprintf("unsupported payment method %q", raw)},
		})
	}
	return m, nil
}

// Price validates the cart and computes line subtotals and the order total.
// It has no side effects.
func (e *PricingEngine) Price(ctx context.Context, in PriceInput) (*PricedOrder, error) {
	method, err := ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	channel, err := enum.ParseOrderChannel(in.Channel)
	if err != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "channel", Message: fmt.Sprintf("unsupported channel %q", in.Channel)},
		})
	}

	if fieldErrs := validateLines(in.Items); len(fieldErrs) > 0 {
		return nil, apperror.NewValidationError(fieldErrs)
	}

	priced := &PricedOrder{
		Method:  method,
		Channel: channel,
		Items:   make([]entity.OrderItem, 0, len(in.Items)),
		Total:   decimal.Zero,
	}

	for _, line := range in.Items {
		product, err := e.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, apperror.NewInternalError("Failed to load product", err)
		}
		if product == nil || !product.Active {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", line.ProductID))
		}

		lineQty := decimal.NewFromInt(int64(line.Quantity))
		item := entity.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Variant:   normalizeVariant(line.Variant),
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			UnitCost:  product.Cost,
			Subtotal:  product.Price.Mul(lineQty),
		}

		if method.IsGatewayRouted() {
			priced.GatewayItems = append(priced.GatewayItems, gateway.ChargeItem{
				ID:       product.ID.String(),
				Name:     product.Name,
				Price:    product.Price,
				Quantity: line.Quantity,
			})
		}

		for _, req := range line.Addons {
			addon, err := e.catalog.GetAddon(ctx, req.AddonID)
			if err != nil {
				return nil, apperror.NewInternalError("Failed to load add-on", err)
			}
			if addon == nil || !addon.Active {
				return nil, apperror.NewNotFoundError(fmt.Sprintf("Add-on %s", req.AddonID))
			}

			subtotal := addon.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
			item.Addons = append(item.Addons, entity.OrderItemAddon{
				AddonID:  addon.ID,
				Name:     addon.Name,
				Quantity: req.Quantity,
				Price:    addon.Price,
				Cost:     addon.Cost,
				Subtotal: subtotal,
			})
			item.Subtotal = item.Subtotal.Add(subtotal)

			if method.IsGatewayRouted() {
				priced.GatewayItems = append(priced.GatewayItems, gateway.ChargeItem{
					ID:       addon.ID.String(),
					Name:     addon.Name,
					Price:    addon.Price,
					Quantity: req.Quantity,
				})
			}
		}

		priced.Total = priced.Total.Add(item.Subtotal)
		priced.Items = append(priced.Items, item)
	}

	return priced, nil
}

func validateLines(lines []LineInput) []apperror.FieldError {
	if len(lines) == 0 {
		return []apperror.FieldError{{Field: "items", Message: "at least one item is required"}}
	}

	var errs []apperror.FieldError
	for i, line := range lines {
		if line.ProductID == uuid.Nil {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "is required"})
		}
		if line.Quantity <= 0 {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be greater than zero"})
		}
		for j, a := range line.Addons {
			if a.AddonID == uuid.Nil {
				errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].addons[%d].addon_id", i, j), Message: "is required"})
			}
			if a.Quantity <= 0 {
				errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("items[%d].addons[%d].quantity", i, j), Message: "must be greater than zero"})
			}
		}
	}
	return errs
}

func normalizeVariant(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
