package response

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, int64(3), p.TotalPages)
	assert.True(t, p.HasMore)
	assert.Equal(t, 11, p.From)
	assert.Equal(t, 20, p.To)

	last := NewPagination(3, 10, 25)
	assert.False(t, last.HasMore)
	assert.Equal(t, 25, last.To)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.From)
	assert.Equal(t, 0, empty.To)
	assert.False(t, empty.HasMore)
}

func TestNewPaginationBoundsHugeInput(t *testing.T) {
	p := NewPagination(4, 1<<62, 5)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, int64(1), p.TotalPages)
	assert.Equal(t, 0, p.From)
	assert.Equal(t, 0, p.To)

	far := NewPagination(math.MaxInt, 10, 25)
	assert.Equal(t, 0, far.From)
	assert.Equal(t, 0, far.To)
	assert.False(t, far.HasMore)

	first := NewPagination(1, math.MaxInt, 250)
	assert.Equal(t, 1, first.From)
	assert.Equal(t, MaxPageSize, first.To)
	assert.True(t, first.HasMore)
}
