package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/infrastructure/gateway"
	"github.com/sangkips/brewline-api/internal/infrastructure/queue"
)

// CatalogReader looks up products and add-ons. Missing rows return nil, nil.
type CatalogReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetAddon(ctx context.Context, id uuid.UUID) (*entity.Addon, error)
}

// PaymentGateway issues charge tokens for gateway-routed payments.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error)
}

// DelayQueue holds jobs until their execution time. Due claims the jobs it
// returns; no other caller receives them.
type DelayQueue interface {
	Schedule(ctx context.Context, executeAt time.Time, job queue.Job) error
	Due(ctx context.Context, now time.Time, limit int) ([]queue.Job, error)
}

// EventPublisher announces online orders that are ready for preparation.
type EventPublisher interface {
	PublishNewOrder(ctx context.Context, order *entity.Order) error
}

// InvoiceSender delivers the receipt of a paid order.
type InvoiceSender interface {
	SendInvoice(ctx context.Context, order *entity.Order) error
}
