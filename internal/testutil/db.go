// Package testutil holds fixtures shared by repository, service and handler tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/infrastructure/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database in a per-test directory. A single
// connection serializes concurrent writers the way row locks would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

// Dec parses a decimal literal.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateProduct inserts an active product.
func CreateProduct(t testing.TB, db *gorm.DB, name, price, cost string) *entity.Product {
	t.Helper()
	p := &entity.Product{Name: name, Price: Dec(price), Cost: Dec(cost), Active: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateAddon inserts an active add-on.
func CreateAddon(t testing.TB, db *gorm.DB, name, price, cost string) *entity.Addon {
	t.Helper()
	a := &entity.Addon{Name: name, Price: Dec(price), Cost: Dec(cost), Active: true}
	require.NoError(t, db.Create(a).Error)
	return a
}

// CreateMaterial inserts a material with the given stock.
func CreateMaterial(t testing.TB, db *gorm.DB, name, quantity string) *entity.Material {
	t.Helper()
	m := &entity.Material{Name: name, Quantity: Dec(quantity), Unit: "g", ReorderThreshold: Dec("1")}
	require.NoError(t, db.Create(m).Error)
	return m
}

// ProductRecipe links a product (optionally a variant) to a material.
func ProductRecipe(t testing.TB, db *gorm.DB, productID uuid.UUID, variant *string, materialID uuid.UUID, perUnit string) {
	t.Helper()
	id := productID
	r := &entity.Recipe{ProductID: &id, Variant: variant, MaterialID: materialID, QuantityPerUnit: Dec(perUnit), Active: true}
	require.NoError(t, db.Create(r).Error)
}

// AddonRecipe links an add-on to a material.
func AddonRecipe(t testing.TB, db *gorm.DB, addonID uuid.UUID, materialID uuid.UUID, perUnit string) {
	t.Helper()
	id := addonID
	r := &entity.Recipe{AddonID: &id, MaterialID: materialID, QuantityPerUnit: Dec(perUnit), Active: true}
	require.NoError(t, db.Create(r).Error)
}

// StockOf reads the current quantity of a material.
func StockOf(t testing.TB, db *gorm.DB, materialID uuid.UUID) decimal.Decimal {
	t.Helper()
	var m entity.Material
	require.NoError(t, db.First(&m, "id = ?", materialID).Error)
	return m.Quantity
}
