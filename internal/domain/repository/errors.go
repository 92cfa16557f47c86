package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrStaleTransition is returned when a guarded status update matched no row:
// another writer moved the record first.
var ErrStaleTransition = errors.New("repository: stale transition")

// InsufficientStockError reports the first material whose conditional
// decrement matched no row.
type InsufficientStockError struct {
	MaterialID uuid.UUID
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("repository: insufficient stock for material %s", e.MaterialID)
}
