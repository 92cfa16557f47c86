package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
)

// CatalogRepository reads products and add-ons. Missing rows return nil, nil.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetAddon(ctx context.Context, id uuid.UUID) (*entity.Addon, error)
}

// RecipeRepository reads active bill-of-materials entries.
type RecipeRepository interface {
	// ListActiveForProduct returns entries for every variant of the product.
	ListActiveForProduct(ctx context.Context, productID uuid.UUID) ([]entity.Recipe, error)
	ListActiveForAddon(ctx context.Context, addonID uuid.UUID) ([]entity.Recipe, error)
}
