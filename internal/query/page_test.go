package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageMeta(t *testing.T) {
	tests := []struct {
		name  string
		items int
		total int
		spec  Spec
		want  Meta
	}{
		{"exact multiple", 10, 30, Spec{Page: 1, Limit: 10}, Meta{30, 10, 10, 3, 1}},
		{"partial last page", 1, 21, Spec{Page: 3, Limit: 10}, Meta{21, 1, 10, 3, 3}},
		{"empty", 0, 0, Spec{Page: 1, Limit: 10}, Meta{0, 0, 10, 0, 1}},
		{"beyond last page", 0, 5, Spec{Page: 9, Limit: 10}, Meta{5, 0, 10, 1, 9}},
		{"unset spec", 0, 3, Spec{}, Meta{3, 0, 10, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []string{}
			if tt.items > 0 {
				items = strings.Split(strings.Repeat("x", tt.items), "")
			}
			assert.Equal(t, tt.want, NewPage(items, tt.total, tt.spec).Meta)
		})
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	page := NewPage[int](nil, 0, Spec{Page: 1, Limit: 10})
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestMapKeepsMeta(t *testing.T) {
	page := NewPage([]int{1, 2}, 7, Spec{Page: 2, Limit: 2})
	mapped := Map(page, func(v int) string { return strings.Repeat("*", v) })

	assert.Equal(t, []string{"*", "**"}, mapped.Items)
	assert.Equal(t, page.Meta, mapped.Meta)
}
