package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func float(v float64) *float64 { return &v }

func TestSQLEmptySpec(t *testing.T) {
	clause := Build(Input{}, productResource()).SQL(productResource())

	assert.Empty(t, clause.Where)
	assert.Empty(t, clause.Args)
	assert.Equal(t, "ORDER BY p.name ASC, p.id ASC", clause.OrderBy)

	page, args := clause.Page(Spec{Page: 1, Limit: 10})
	assert.Equal(t, "LIMIT $1 OFFSET $2", page)
	assert.Equal(t, []any{10, 0}, args)
}

func TestSQLRanges(t *testing.T) {
	res := productResource()

	tests := []struct {
		name   string
		bounds Bounds
		where  string
		args   []any
	}{
		{"both", Bounds{Min: float(5), Max: float(9)}, "WHERE p.price BETWEEN $1 AND $2", []any{5.0, 9.0}},
		{"min only", Bounds{Min: float(5)}, "WHERE p.price >= $1", []any{5.0}},
		{"max only", Bounds{Max: float(9)}, "WHERE p.price <= $1", []any{9.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause := Spec{Ranges: map[string]Bounds{"price": tt.bounds}, SortField: "name", Order: Asc}.SQL(res)
			assert.Equal(t, tt.where, clause.Where)
			assert.Equal(t, tt.args, clause.Args)
		})
	}
}

func TestSQLCombinesFiltersInStableOrder(t *testing.T) {
	spec := Spec{
		Search:    "50%_off",
		Equal:     map[string]string{"categoryId": "c1"},
		Ranges:    map[string]Bounds{"price": {Max: float(20)}, "stock": {Min: float(1)}},
		SortField: "price",
		Order:     Desc,
		Page:      3,
		Limit:     5,
	}

	clause := spec.SQL(productResource())

	assert.Equal(t,
		`WHERE (p.name ILIKE $1) AND p.category_id = $2 AND p.price <= $3 AND p.stock >= $4`,
		clause.Where)
	assert.Equal(t, []any{`%50\%\_off%`, "c1", 20.0, 1.0}, clause.Args)
	assert.Equal(t, "ORDER BY p.price DESC, p.id DESC", clause.OrderBy)

	page, args := clause.Page(spec)
	assert.Equal(t, "LIMIT $5 OFFSET $6", page)
	assert.Equal(t, 5, args[4])
	assert.Equal(t, 10, args[5])
	assert.Len(t, clause.Args, 4, "Page must not mutate the clause args")
}

func TestSQLSearchAcrossColumns(t *testing.T) {
	res := Resource{
		SearchColumns: []string{"email", "handle"},
		SortFields:    map[string]string{"email": "email"},
		DefaultSort:   "email",
	}

	clause := Spec{Search: "ann"}.SQL(res)
	assert.Equal(t, "WHERE (email ILIKE $1 OR handle ILIKE $1)", clause.Where)
	assert.Equal(t, "ORDER BY email ASC", clause.OrderBy)
}

func TestSQLUnknownSortUsesDefault(t *testing.T) {
	clause := Spec{SortField: "1; DROP TABLE products", Order: "sideways"}.SQL(productResource())
	assert.Equal(t, "ORDER BY p.name ASC, p.id ASC", clause.OrderBy)
}

func TestClauseAnd(t *testing.T) {
	assert.Equal(t, "WHERE deleted_at IS NULL", Clause{}.And("deleted_at IS NULL").Where)

	clause := Spec{Equal: map[string]string{"categoryId": "c1"}}.SQL(productResource()).And("p.stock > 0")
	assert.Equal(t, "WHERE p.category_id = $1 AND p.stock > 0", clause.Where)
}
