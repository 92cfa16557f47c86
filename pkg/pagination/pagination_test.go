package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Clamps(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = &PaginationParams{Page: 3, PerPage: 0}
	p.Validate()
	assert.Equal(t, 15, p.PerPage)
	assert.Equal(t, 30, p.Offset())
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(2, 10, 25)
	assert.Equal(t, 3, pg.TotalPages)
	assert.True(t, pg.HasNext)
	assert.True(t, pg.HasPrev)

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasNext)
}

func TestNewPaginatedResult_NeverNilItems(t *testing.T) {
	res := NewPaginatedResult[int](nil, NewPagination(1, 15, 0))
	assert.NotNil(t, res.Items)
}
