package repository

import (
	"context"

	domainRepo "github.com/sangkips/brewline-api/internal/domain/repository"
	"gorm.io/gorm"
)

type txKey struct{}

type transactor struct {
	db *gorm.DB
}

// NewTransactor creates a gorm backed transaction runner
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return inTx(ctx, t.db, func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the transaction carried by ctx, or db when there is none.
func dbFrom(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// inTx runs fn in a transaction. Inside an ambient transaction gorm opens a
// savepoint, so a failing fn rolls back only its own writes.
func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx).Transaction(fn)
	}
	return db.WithContext(ctx).Transaction(fn)
}
