package repository

import "context"

// Transactor runs fn inside a database transaction. Repository calls made with
// the context handed to fn join that transaction; a nested call joins the
// outer transaction through a savepoint: an error from the inner fn undoes
// only the inner writes.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
