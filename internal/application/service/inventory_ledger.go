package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// InventoryLedger owns every stock mutation. Stock only moves through the
// repository's conditional decrement, never by read-modify-write.
type InventoryLedger struct {
	tx        repository.Transactor
	materials repository.MaterialRepository
	log       logrus.FieldLogger
}

// NewInventoryLedger creates a new inventory ledger
func NewInventoryLedger(tx repository.Transactor, materials repository.MaterialRepository, log logrus.FieldLogger) *InventoryLedger {
	return &InventoryLedger{tx: tx, materials: materials, log: log}
}

// CheckAndReserve decrements every requirement or none. A shortfall fails
// with a Conflict naming the material.
func (l *InventoryLedger) CheckAndReserve(ctx context.Context, reqs []MaterialRequirement) error {
	changes := make([]repository.StockChange, 0, len(reqs))
	for _, r := range reqs {
		changes = append(changes, repository.StockChange{MaterialID: r.MaterialID, Quantity: r.Quantity})
	}

	err := l.materials.DecrementBatch(ctx, changes)
	var short *repository.InsufficientStockError
	if errors.As(err, &short) {
		return l.shortfallError(ctx, short)
	}
	if err != nil {
		return apperror.NewInternalError("Failed to reserve stock", err)
	}
	return nil
}

// RecordUsage appends the usage audit rows for orderID.
func (l *InventoryLedger) RecordUsage(ctx context.Context, orderID uuid.UUID, reqs []MaterialRequirement) error {
	usages := make([]entity.MaterialUsage, 0, len(reqs))
	for _, r := range reqs {
		usages = append(usages, entity.MaterialUsage{
			OrderID:    orderID,
			MaterialID: r.MaterialID,
			Quantity:   r.Quantity,
		})
	}
	if err := l.materials.CreateUsage(ctx, usages); err != nil {
		return apperror.NewInternalError("Failed to record stock usage", err)
	}
	return nil
}

// Commit reserves stock and records usage in one transaction. It runs at
// most once per order: when usage rows already exist it returns false
// without touching stock.
func (l *InventoryLedger) Commit(ctx context.Context, orderID uuid.UUID, reqs []MaterialRequirement) (bool, error) {
	applied := false
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := l.materials.HasUsage(ctx, orderID)
		if err != nil {
			return apperror.NewInternalError("Failed to check stock usage", err)
		}
		if exists {
			return nil
		}
		if err := l.CheckAndReserve(ctx, reqs); err != nil {
			return err
		}
		if err := l.RecordUsage(ctx, orderID, reqs); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if !applied {
		l.log.WithField("order_id", orderID).Info("Stock already committed for order, skipping")
	}
	return applied, nil
}

// Release returns the stock recorded for orderID and removes its usage rows.
// It reports whether anything was released.
func (l *InventoryLedger) Release(ctx context.Context, orderID uuid.UUID) (bool, error) {
	released := false
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		usages, err := l.materials.ListUsage(ctx, orderID)
		if err != nil {
			return apperror.NewInternalError("Failed to load stock usage", err)
		}
		if len(usages) == 0 {
			return nil
		}

		changes := make([]repository.StockChange, 0, len(usages))
		for _, u := range usages {
			changes = append(changes, repository.StockChange{MaterialID: u.MaterialID, Quantity: u.Quantity})
		}
		if err := l.materials.IncrementBatch(ctx, changes); err != nil {
			return apperror.NewInternalError("Failed to restore stock", err)
		}
		if err := l.materials.DeleteUsage(ctx, orderID); err != nil {
			return apperror.NewInternalError("Failed to clear stock usage", err)
		}
		released = true
		return nil
	})
	return released, err
}

// LowStock returns the materials among reqs at or below their reorder threshold.
func (l *InventoryLedger) LowStock(ctx context.Context, reqs []MaterialRequirement) ([]entity.Material, error) {
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.MaterialID)
	}
	materials, err := l.materials.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.NewInternalError("Failed to load materials", err)
	}

	var low []entity.Material
	for _, m := range materials {
		if m.BelowThreshold() {
			low = append(low, m)
		}
	}
	return low, nil
}

// WarnLowStock logs materials that crossed their reorder threshold.
func (l *InventoryLedger) WarnLowStock(ctx context.Context, reqs []MaterialRequirement) {
	low, err := l.LowStock(ctx, reqs)
	if err != nil {
		l.log.WithError(err).Warn("Low stock check failed")
		return
	}
	for _, m := range low {
		l.log.WithFields(logrus.Fields{
			"material_id": m.ID,
			"material":    m.Name,
			"quantity":    m.Quantity.String(),
			"threshold":   m.ReorderThreshold.String(),
		}).Warn("Material at or below reorder threshold")
	}
}

// shortfallError keeps the repository error as cause so callers can tell a
// stock shortfall from other conflicts with errors.As.
func (l *InventoryLedger) shortfallError(ctx context.Context, short *repository.InsufficientStockError) error {
	name := short.MaterialID.String()
	if m, err := l.materials.GetByID(ctx, short.MaterialID); err == nil && m != nil {
		name = fmt.Sprintf("%s (%s)", m.Name, short.MaterialID)
	}
	return apperror.NewConflictError("Insufficient stock for material " + name).WithCause(short)
}

// IsInsufficientStock reports whether err is a stock shortfall.
func IsInsufficientStock(err error) bool {
	var short *repository.InsufficientStockError
	return errors.As(err, &short)
}
