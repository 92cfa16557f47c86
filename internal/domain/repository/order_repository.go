package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/sangkips/brewline-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	// Create inserts the order together with its items and add-ons.
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// GetWithDetails loads items, add-ons and the payment.
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// TransitionStatus moves the order to status only if its current status is
	// one of from. It reports whether a row was updated.
	TransitionStatus(ctx context.Context, id uuid.UUID, from []enum.OrderStatus, to enum.OrderStatus) (bool, error)
	MarkStockShortfall(ctx context.Context, id uuid.UUID) error
	// MarkRefundDue flags a paid order that was cancelled for out-of-band refund.
	MarkRefundDue(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Status     *enum.OrderStatus
	Channel    *enum.OrderChannel
	CustomerID *uuid.UUID
	Pagination *pagination.PaginationParams
}
