package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// PaymentTransition describes the target state of a guarded payment update.
type PaymentTransition struct {
	Status        enum.PaymentStatus
	PaidAmount    *decimal.Decimal
	PaidAt        *time.Time
	GatewayStatus string
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entity.Payment, error)
	SetChargeToken(ctx context.Context, id uuid.UUID, token, redirectURL string) error
	// Transition applies t only while the stored row is still PENDING at the
	// version held by payment; otherwise it returns ErrStaleTransition. On
	// success payment is updated in place.
	Transition(ctx context.Context, payment *entity.Payment, t PaymentTransition) error
	// ListExpiredPending returns PENDING payments whose expiry is at or before
	// cutoff, plus PENDING rows without an expiry created at or before createdBefore.
	ListExpiredPending(ctx context.Context, cutoff, createdBefore time.Time, limit int) ([]entity.Payment, error)
}
