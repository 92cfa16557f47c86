package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockChange is a positive quantity applied to one material.
type StockChange struct {
	MaterialID uuid.UUID
	Quantity   decimal.Decimal
}

// MaterialRepository defines the interface for stock and usage operations
type MaterialRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Material, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Material, error)
	// DecrementBatch applies every change with a conditional decrement that
	// never takes a quantity below zero. The first change that cannot be
	// applied aborts the batch with *InsufficientStockError.
	DecrementBatch(ctx context.Context, changes []StockChange) error
	IncrementBatch(ctx context.Context, changes []StockChange) error
	HasUsage(ctx context.Context, orderID uuid.UUID) (bool, error)
	CreateUsage(ctx context.Context, usages []entity.MaterialUsage) error
	ListUsage(ctx context.Context, orderID uuid.UUID) ([]entity.MaterialUsage, error)
	DeleteUsage(ctx context.Context, orderID uuid.UUID) error
}
