package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageMeta(t *testing.T) {
	meta := NewPageMeta(41, 2, 20)
	assert.EqualValues(t, 41, meta.Total)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 3, meta.Pages)

	meta = NewPageMeta(0, 0, 0)
	assert.EqualValues(t, 0, meta.Total)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 0, meta.Pages)

	meta = NewPageMeta(20, 1, 20)
	assert.Equal(t, 1, meta.Pages)
}
