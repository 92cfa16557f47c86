package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedDemoCatalog inserts a small coffee-bar catalog with recipes when the
// products table is empty. Catalog management lives in another service; this
// only exists so a fresh local database can take orders.
func SeedDemoCatalog(db *gorm.DB, log logrus.FieldLogger) error {
	var count int64
	if err := db.Model(&entity.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Catalog already present, skipping seed")
		return nil
	}

	d := decimal.RequireFromString
	iced := "iced"

	beans := entity.Material{Name: "Espresso beans", Quantity: d("5000"), Unit: "g", ReorderThreshold: d("500")}
	milk := entity.Material{Name: "Fresh milk", Quantity: d("20000"), Unit: "ml", ReorderThreshold: d("2000")}
	ice := entity.Material{Name: "Ice", Quantity: d("10000"), Unit: "g", ReorderThreshold: d("1000")}
	syrup := entity.Material{Name: "Vanilla syrup", Quantity: d("2000"), Unit: "ml", ReorderThreshold: d("200")}

	latte := entity.Product{Name: "Cafe Latte", Price: d("28000"), Cost: d("9000"), Active: true}
	americano := entity.Product{Name: "Americano", Price: d("22000"), Cost: d("6000"), Active: true}
	vanilla := entity.Addon{Name: "Vanilla shot", Price: d("5000"), Cost: d("1500"), Active: true}
	extraShot := entity.Addon{Name: "Extra shot", Price: d("6000"), Cost: d("2000"), Active: true}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []*entity.Material{&beans, &milk, &ice, &syrup} {
			if err := tx.Create(m).Error; err != nil {
				return fmt.Errorf("seed material %s: %w", m.Name, err)
			}
		}
		for _, p := range []*entity.Product{&latte, &americano} {
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", p.Name, err)
			}
		}
		for _, a := range []*entity.Addon{&vanilla, &extraShot} {
			if err := tx.Create(a).Error; err != nil {
				return fmt.Errorf("seed addon %s: %w", a.Name, err)
			}
		}

		ptr := func(id uuid.UUID) *uuid.UUID { return &id }
		recipes := []entity.Recipe{
			{ProductID: ptr(latte.ID), MaterialID: beans.ID, QuantityPerUnit: d("18"), Active: true},
			{ProductID: ptr(latte.ID), MaterialID: milk.ID, QuantityPerUnit: d("200"), Active: true},
			{ProductID: ptr(latte.ID), Variant: &iced, MaterialID: beans.ID, QuantityPerUnit: d("18"), Active: true},
			{ProductID: ptr(latte.ID), Variant: &iced, MaterialID: milk.ID, QuantityPerUnit: d("150"), Active: true},
			{ProductID: ptr(latte.ID), Variant: &iced, MaterialID: ice.ID, QuantityPerUnit: d("120"), Active: true},
			{ProductID: ptr(americano.ID), MaterialID: beans.ID, QuantityPerUnit: d("18"), Active: true},
			{AddonID: ptr(vanilla.ID), MaterialID: syrup.ID, QuantityPerUnit: d("15"), Active: true},
			{AddonID: ptr(extraShot.ID), MaterialID: beans.ID, QuantityPerUnit: d("9"), Active: true},
		}
		if err := tx.Create(&recipes).Error; err != nil {
			return fmt.Errorf("seed recipes: %w", err)
		}

		log.WithFields(logrus.Fields{
			"products":  2,
			"addons":    2,
			"materials": 4,
		}).Info("Demo catalog seeded")
		return nil
	})
}
