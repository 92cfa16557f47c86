package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	domainRepo "github.com/sangkips/brewline-api/internal/domain/repository"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return dbFrom(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entity.Payment, error) {
	var payment entity.Payment
	err := dbFrom(ctx, r.db).First(&payment, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &payment, err
}

func (r *paymentRepository) SetChargeToken(ctx context.Context, id uuid.UUID, token, redirectURL string) error {
	return dbFrom(ctx, r.db).Model(&entity.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"charge_token": token,
			"redirect_url": redirectURL,
			"updated_at":   time.Now(),
		}).Error
}

// Transition is the only write path for payment status. The WHERE clause on
// status and version makes concurrent writers race on a single row update.
func (r *paymentRepository) Transition(ctx context.Context, payment *entity.Payment, t domainRepo.PaymentTransition) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     t.Status,
		"version":    gorm.Expr("version + 1"),
		"updated_at": now,
	}
	if t.PaidAmount != nil {
		updates["paid_amount"] = *t.PaidAmount
	}
	if t.PaidAt != nil {
		updates["paid_at"] = *t.PaidAt
	}
	if t.GatewayStatus != "" {
		updates["gateway_status"] = t.GatewayStatus
	}

	result := dbFrom(ctx, r.db).Model(&entity.Payment{}).
		Where("id = ? AND status = ? AND version = ?", payment.ID, enum.PaymentStatusPending, payment.Version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrStaleTransition
	}

	payment.Status = t.Status
	payment.Version++
	payment.UpdatedAt = now
	if t.PaidAmount != nil {
		payment.PaidAmount = *t.PaidAmount
	}
	if t.PaidAt != nil {
		payment.PaidAt = t.PaidAt
	}
	if t.GatewayStatus != "" {
		payment.GatewayStatus = t.GatewayStatus
	}
	return nil
}

func (r *paymentRepository) ListExpiredPending(ctx context.Context, cutoff, createdBefore time.Time, limit int) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := dbFrom(ctx, r.db).
		Where("status = ?", enum.PaymentStatusPending).
		Where("(expires_at IS NOT NULL AND expires_at <= ?) OR (expires_at IS NULL AND created_at <= ?)", cutoff, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}
