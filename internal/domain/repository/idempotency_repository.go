package repository

import (
	"context"

	"github.com/sangkips/brewline-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key by its scope and key string
	GetByKey(ctx context.Context, scope, key string) (*entity.IdempotencyKey, error)
	// Create stores a new idempotency key
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteByKey removes one key so it can be stored again
	DeleteByKey(ctx context.Context, scope, key string) error
	// DeleteExpired removes expired idempotency keys (for cleanup)
	DeleteExpired(ctx context.Context) (int64, error)
}
