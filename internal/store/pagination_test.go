package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPage_HasMore(t *testing.T) {
	tests := []struct {
		name string
		page Page[int]
		want bool
	}{
		{"first of many", Page[int]{Items: []int{1, 2}, Total: 5, Limit: 2}, true},
		{"last page", Page[int]{Items: []int{5}, Total: 5, Limit: 2, Offset: 4}, false},
		{"exact fit", Page[int]{Items: []int{1, 2}, Total: 2, Limit: 2}, false},
		{"past the end", Page[int]{Items: []int{}, Total: 3, Limit: 2, Offset: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.page.HasMore())
		})
	}
}
