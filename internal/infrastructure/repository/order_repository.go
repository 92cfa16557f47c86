package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	domainRepo "github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/pkg/pagination"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return dbFrom(ctx, r.db).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := dbFrom(ctx, r.db).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := dbFrom(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Items.Addons").
		Preload("Payment").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from []enum.OrderStatus, to enum.OrderStatus) (bool, error) {
	result := dbFrom(ctx, r.db).Model(&entity.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepository) MarkStockShortfall(ctx context.Context, id uuid.UUID) error {
	return dbFrom(ctx, r.db).Model(&entity.Order{}).
		Where("id = ?", id).
		Update("stock_shortfall", true).Error
}

func (r *orderRepository) MarkRefundDue(ctx context.Context, id uuid.UUID) error {
	return dbFrom(ctx, r.db).Model(&entity.Order{}).
		Where("id = ?", id).
		Update("refund_due", true).Error
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := dbFrom(ctx, r.db).Model(&entity.Order{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Channel != nil {
		query = query.Where("channel = ?", *params.Channel)
	}

	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items.Addons").
		Preload("Payment").
		Order("created_at DESC").
		Find(&orders).Error

	return orders, total, err
}
