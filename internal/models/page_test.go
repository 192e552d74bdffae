package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		size       int
		totalPages int
	}{
		{name: "exact multiple", total: 30, size: 15, totalPages: 2},
		{name: "partial last page", total: 31, size: 15, totalPages: 3},
		{name: "single page", total: 4, size: 15, totalPages: 1},
		{name: "empty", total: 0, size: 15, totalPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage([]int{1, 2, 3}, 2, tt.size, tt.total)
			assert.Equal(t, 2, page.CurrentPage)
			assert.Equal(t, tt.totalPages, page.TotalPages)
			assert.Equal(t, int(tt.total), page.TotalItems)
			assert.Equal(t, tt.size, page.ItemsPerPage)
		})
	}
}

func TestNewPage_NilItems(t *testing.T) {
	page := NewPage[int](nil, 1, 15, 0)
	assert.NotNil(t, page.Items, "items must serialize as [], not null")
	assert.Empty(t, page.Items)
}

func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 0, DefaultPageSize)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = NormalizePage(-3, 7, DefaultPageSize)
	assert.Equal(t, 1, page)
	assert.Equal(t, 7, size)

	page, size = NormalizePage(4, 20, DefaultPageSize)
	assert.Equal(t, 4, page)
	assert.Equal(t, 20, size)
}
