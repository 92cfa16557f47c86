package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/brewline-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brewline-api/internal/domain/repository"
	"gorm.io/gorm"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, scope, key string) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := dbFrom(ctx, r.db).
		Where("scope = ? AND key = ?", scope, key).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return dbFrom(ctx, r.db).Create(ikey).Error
}

func (r *idempotencyRepository) DeleteByKey(ctx context.Context, scope, key string) error {
	return dbFrom(ctx, r.db).
		Where("scope = ? AND key = ?", scope, key).
		Delete(&entity.IdempotencyKey{}).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := dbFrom(ctx, r.db).
		Where("expires_at < ?", time.Now()).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}
