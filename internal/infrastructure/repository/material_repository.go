package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brewline-api/internal/domain/repository"
	"gorm.io/gorm"
)

type materialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository creates a new material repository
func NewMaterialRepository(db *gorm.DB) domainRepo.MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Material, error) {
	var material entity.Material
	err := dbFrom(ctx, r.db).First(&material, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &material, err
}

// ListByIDs retrieves multiple materials by their IDs in a single query
func (r *materialRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Material, error) {
	if len(ids) == 0 {
		return []entity.Material{}, nil
	}
	var materials []entity.Material
	err := dbFrom(ctx, r.db).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&materials).Error
	return materials, err
}

// DecrementBatch atomically decrements stock for multiple materials in one transaction.
// Uses: UPDATE materials SET quantity = quantity - amount WHERE id = ? AND quantity >= amount
// Changes are applied in the order given; callers sort by material id so
// concurrent batches take row locks in the same order.
func (r *materialRepository) DecrementBatch(ctx context.Context, changes []domainRepo.StockChange) error {
	if len(changes) == 0 {
		return nil
	}

	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		for _, c := range changes {
			result := tx.Model(&entity.Material{}).
				Where("id = ? AND quantity >= ?", c.MaterialID, c.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", c.Quantity))

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 0 {
				return &domainRepo.InsufficientStockError{MaterialID: c.MaterialID}
			}
		}
		return nil
	})
}

// IncrementBatch restores stock for multiple materials (for cancellations).
func (r *materialRepository) IncrementBatch(ctx context.Context, changes []domainRepo.StockChange) error {
	if len(changes) == 0 {
		return nil
	}

	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		for _, c := range changes {
			if err := tx.Model(&entity.Material{}).
				Where("id = ?", c.MaterialID).
				Update("quantity", gorm.Expr("quantity + ?", c.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *materialRepository) HasUsage(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).Model(&entity.MaterialUsage{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count > 0, err
}

func (r *materialRepository) CreateUsage(ctx context.Context, usages []entity.MaterialUsage) error {
	if len(usages) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).Create(&usages).Error
}

func (r *materialRepository) ListUsage(ctx context.Context, orderID uuid.UUID) ([]entity.MaterialUsage, error) {
	var usages []entity.MaterialUsage
	err := dbFrom(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("material_id ASC").
		Find(&usages).Error
	return usages, err
}

func (r *materialRepository) DeleteUsage(ctx context.Context, orderID uuid.UUID) error {
	return dbFrom(ctx, r.db).
		Where("order_id = ?", orderID).
		Delete(&entity.MaterialUsage{}).Error
}
