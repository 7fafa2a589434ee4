package query

import (
	"fmt"
	"sort"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Clause is a rendered Spec. Where carries its own leading "WHERE" when
// non-empty; Args are positional and start at the offset given to SQL.
type Clause struct {
	Where   string
	OrderBy string
	Args    []any
	next    int
}

// Page appends LIMIT/OFFSET placeholders and returns them with their args.
func (c Clause) Page(spec Spec) (string, []any) {
	args := append(append([]any{}, c.Args...), spec.Limit, spec.Offset())
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", c.next, c.next+1), args
}

// SQL renders the filters of spec as PostgreSQL predicates. Column names come
// only from res, never from input, so the output is safe to interpolate.
func (s Spec) SQL(res Resource) Clause {
	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if s.Search != "" && len(res.SearchColumns) > 0 {
		ors := make([]string, 0, len(res.SearchColumns))
		for _, col := range res.SearchColumns {
			ors = append(ors, fmt.Sprintf("%s ILIKE $%d", col, argIdx))
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
		args = append(args, "%"+likeEscaper.Replace(s.Search)+"%")
		argIdx++
	}

	for _, param := range sortedKeys(s.Equal) {
		col, ok := res.EqualFields[param]
		if !ok {
			continue
		}
		where = append(where, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, s.Equal[param])
		argIdx++
	}

	for _, name := range sortedKeys(s.Ranges) {
		field, ok := res.RangeFields[name]
		if !ok {
			continue
		}
		b := s.Ranges[name]
		switch {
		case b.Min != nil && b.Max != nil:
			where = append(where, fmt.Sprintf("%s BETWEEN $%d AND $%d", field.Column, argIdx, argIdx+1))
			args = append(args, *b.Min, *b.Max)
			argIdx += 2
		case b.Min != nil:
			where = append(where, fmt.Sprintf("%s >= $%d", field.Column, argIdx))
			args = append(args, *b.Min)
			argIdx++
		case b.Max != nil:
			where = append(where, fmt.Sprintf("%s <= $%d", field.Column, argIdx))
			args = append(args, *b.Max)
			argIdx++
		}
	}

	clause := Clause{Args: args, next: argIdx}
	if len(where) > 0 {
		clause.Where = "WHERE " + strings.Join(where, " AND ")
	}

	col, ok := res.SortFields[s.SortField]
	if !ok {
		col = res.SortFields[res.DefaultSort]
	}
	order := s.Order
	if order != Asc && order != Desc {
		order = Asc
	}
	clause.OrderBy = fmt.Sprintf("ORDER BY %s %s", col, order)
	if res.TieBreaker != "" && res.TieBreaker != col {
		clause.OrderBy += fmt.Sprintf(", %s %s", res.TieBreaker, order)
	}

	return clause
}

// And joins an extra fixed predicate (e.g. "deleted_at IS NULL") onto the clause.
func (c Clause) And(predicate string) Clause {
	if c.Where == "" {
		c.Where = "WHERE " + predicate
		return c
	}
	c.Where += " AND " + predicate
	return c
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
