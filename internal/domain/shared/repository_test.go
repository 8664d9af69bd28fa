package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	f := NewPage(0, 0, "expiry_date", "asc")
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, "expiry_date", f.OrderBy)
	assert.NotNil(t, f.Filters)
	assert.Zero(t, f.Offset())

	assert.Equal(t, DefaultPageSize, NewPage(1, MaxPageSize+1, "", "").PageSize)
	assert.Equal(t, 40, NewPage(3, 20, "", "").Offset())
	assert.Equal(t, "INV-BR001", NewPage(1, 10, "", "").WithSearch("INV-BR001").Search)
}
