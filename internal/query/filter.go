// Package query turns raw listing parameters into a normalized filter
// specification, renders it as PostgreSQL predicates and computes the
// pagination envelope of the result.
package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"inventory-api/pkg/apierror"
)

type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// RangeField binds a numeric column to its lower/upper query parameters.
// Either parameter name may be empty when the resource exposes only one bound.
type RangeField struct {
	Column   string
	MinParam string
	MaxParam string
}

// Resource declares what a listable resource allows.
type Resource struct {
	Name string

	// SearchColumns are matched case-insensitively, OR-ed together.
	SearchColumns []string

	// EqualFields maps a query parameter to the column it filters by equality.
	EqualFields map[string]string

	// RangeFields maps a logical field name to its column and parameters.
	RangeFields map[string]RangeField

	// SortFields maps an allowed sortBy value to its column.
	SortFields map[string]string

	DefaultSort  string
	DefaultOrder Order
	MaxLimit     int

	// TieBreaker is appended to every ORDER BY for deterministic pages.
	TieBreaker string
}

type Bounds struct {
	Min *float64
	Max *float64
}

// Input is the raw, unvalidated listing request.
type Input struct {
	Search string
	Equal  map[string]string
	Ranges map[string]Bounds
	SortBy string
	Order  string
	Page   string
	Limit  string
}

// Spec is the normalized filter handed to the persistence layer.
type Spec struct {
	Search    string
	Equal     map[string]string
	Ranges    map[string]Bounds
	SortField string
	Order     Order
	Page      int
	Limit     int
}

func (s Spec) Offset() int {
	return (s.Page - 1) * s.Limit
}

// ParseValues reads the resource's parameters from a URL query. Numeric bounds
// that do not parse are rejected; everything else is normalized by Build.
func ParseValues(values url.Values, res Resource) (Input, error) {
	in := Input{
		Search: values.Get("search"),
		Equal:  map[string]string{},
		Ranges: map[string]Bounds{},
		SortBy: values.Get("sortBy"),
		Order:  values.Get("order"),
		Page:   values.Get("page"),
		Limit:  values.Get("limit"),
	}

	for param := range res.EqualFields {
		if v := strings.TrimSpace(values.Get(param)); v != "" {
			in.Equal[param] = v
		}
	}

	invalid := map[string]string{}
	for name, field := range res.RangeFields {
		var b Bounds
		if field.MinParam != "" {
			v, err := parseFloatParam(values.Get(field.MinParam))
			if err != nil {
				invalid[field.MinParam] = "must be a number"
			}
			b.Min = v
		}
		if field.MaxParam != "" {
			v, err := parseFloatParam(values.Get(field.MaxParam))
			if err != nil {
				invalid[field.MaxParam] = "must be a number"
			}
			b.Max = v
		}
		if b.Min != nil || b.Max != nil {
			in.Ranges[name] = b
		}
	}

	if len(invalid) > 0 {
		return Input{}, apierror.Validation("invalid filter parameters", invalid)
	}

	return in, nil
}

// Build normalizes in against res. It never fails: unknown sort fields and
// orders fall back to the resource defaults, bad paging falls back to 1/10.
func Build(in Input, res Resource) Spec {
	spec := Spec{
		Search:    strings.TrimSpace(in.Search),
		Equal:     map[string]string{},
		Ranges:    map[string]Bounds{},
		SortField: res.DefaultSort,
		Order:     res.DefaultOrder,
		Page:      positiveIntOr(in.Page, DefaultPage),
		Limit:     positiveIntOr(in.Limit, DefaultLimit),
	}

	if spec.Order != Asc && spec.Order != Desc {
		spec.Order = Asc
	}

	for param, value := range in.Equal {
		if _, ok := res.EqualFields[param]; !ok {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			spec.Equal[param] = value
		}
	}

	for name, b := range in.Ranges {
		if _, ok := res.RangeFields[name]; !ok {
			continue
		}
		if b.Min != nil || b.Max != nil {
			spec.Ranges[name] = b
		}
	}

	if _, ok := res.SortFields[in.SortBy]; ok {
		spec.SortField = in.SortBy
	}

	switch Order(in.Order) {
	case Asc, Desc:
		spec.Order = Order(in.Order)
	}

	if res.MaxLimit > 0 && spec.Limit > res.MaxLimit {
		spec.Limit = res.MaxLimit
	}

	// Keep (Page-1)*Limit representable so the offset never goes negative.
	if maxPage := math.MaxInt / spec.Limit; spec.Page > maxPage {
		spec.Page = maxPage
	}

	return spec
}

func positiveIntOr(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func parseFloatParam(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	return &v, nil
}
