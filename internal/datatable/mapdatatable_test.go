package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapDataTable(t *testing.T) {
	table := NewMapDataTable()

	_, ok := table.Get("missing")
	assert.False(t, ok)

	table.Put("a", "1")
	table.Put("b", "2")
	table.Put("a", "3")

	value, ok := table.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "3", value)
	assert.Equal(t, 2, table.Size())
	assert.ElementsMatch(t, []string{"a", "b"}, table.Keys())

	assert.True(t, table.Delete("a"))
	assert.False(t, table.Delete("a"))
	assert.Equal(t, 1, table.Size())
	assert.ElementsMatch(t, []string{"b"}, table.Keys())
}
