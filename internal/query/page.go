package query

type Meta struct {
	TotalItems   int `json:"totalItems"`
	ItemCount    int `json:"itemCount"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

type Page[T any] struct {
	Items []T `json:"items"`
	Meta  Meta `json:"meta"`
}

// NewPage wraps one page of results. totalPages = ceil(total/limit).
func NewPage[T any](items []T, total int, spec Spec) Page[T] {
	if items == nil {
		items = []T{}
	}

	limit := spec.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	page := spec.Page
	if page < 1 {
		page = DefaultPage
	}
	if total < 0 {
		total = 0
	}

	return Page[T]{
		Items: items,
		Meta: Meta{
			TotalItems:   total,
			ItemCount:    len(items),
			ItemsPerPage: limit,
			TotalPages:   (total + limit - 1) / limit,
			CurrentPage:  page,
		},
	}
}

// Map converts the items of a page while keeping its metadata.
func Map[T any, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		out = append(out, fn(item))
	}
	return Page[U]{Items: out, Meta: p.Meta}
}
