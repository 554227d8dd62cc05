package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, size     int
		wantFrom, want int
	}{
		{page: 1, size: 20, wantFrom: 0, want: 20},
		{page: 3, size: 5, wantFrom: 10, want: 5},
		{page: 0, size: 0, wantFrom: 0, want: DefaultPageSize},
		{page: 2, size: 500, wantFrom: DefaultPageSize, want: DefaultPageSize},
	}
	for _, tt := range tests {
		from, limit := Calculate(tt.page, tt.size)
		assert.Equal(t, tt.wantFrom, from)
		assert.Equal(t, tt.want, limit)
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}
