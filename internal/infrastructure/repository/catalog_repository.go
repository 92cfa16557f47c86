package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	domainRepo "github.com/sangkips/brewline-api/internal/domain/repository"
	"gorm.io/gorm"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new product and add-on reader
func NewCatalogRepository(db *gorm.DB) domainRepo.CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := dbFrom(ctx, r.db).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *catalogRepository) GetAddon(ctx context.Context, id uuid.UUID) (*entity.Addon, error) {
	var addon entity.Addon
	err := dbFrom(ctx, r.db).First(&addon, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &addon, err
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) domainRepo.RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) ListActiveForProduct(ctx context.Context, productID uuid.UUID) ([]entity.Recipe, error) {
	var recipes []entity.Recipe
	err := dbFrom(ctx, r.db).
		Where("product_id = ? AND active = ?", productID, true).
		Order("material_id ASC").
		Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) ListActiveForAddon(ctx context.Context, addonID uuid.UUID) ([]entity.Recipe, error) {
	var recipes []entity.Recipe
	err := dbFrom(ctx, r.db).
		Where("addon_id = ? AND active = ?", addonID, true).
		Order("material_id ASC").
		Find(&recipes).Error
	return recipes, err
}
