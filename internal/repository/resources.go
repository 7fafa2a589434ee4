package repository

import "inventory-api/internal/query"

// UserListing declares how users may be searched, filtered and sorted.
func UserListing(maxLimit int) query.Resource {
	return query.Resource{
		Name:          "users",
		SearchColumns: []string{"email", "handle", "first_name", "last_name"},
		EqualFields:   map[string]string{"role": "role::text"},
		SortFields: map[string]string{
			"createdAt": "created_at",
			"email":     "email",
			"handle":    "handle",
			"firstName": "first_name",
			"lastName":  "last_name",
		},
		DefaultSort:  "createdAt",
		DefaultOrder: query.Desc,
		MaxLimit:     maxLimit,
		TieBreaker:   "id",
	}
}

func ProductListing(maxLimit int) query.Resource {
	return query.Resource{
		Name:          "products",
		SearchColumns: []string{"p.name"},
		EqualFields:   map[string]string{"categoryId": "p.category_id"},
		RangeFields: map[string]query.RangeField{
			"price": {Column: "p.price", MinParam: "minPrice", MaxParam: "maxPrice"},
			"stock": {Column: "p.stock", MinParam: "minStock"},
		},
		SortFields: map[string]string{
			"name":      "p.name",
			"price":     "p.price",
			"stock":     "p.stock",
			"createdAt": "p.created_at",
		},
		DefaultSort:  "name",
		DefaultOrder: query.Asc,
		MaxLimit:     maxLimit,
		TieBreaker:   "p.id",
	}
}

func CategoryListing(maxLimit int) query.Resource {
	return query.Resource{
		Name:          "categories",
		SearchColumns: []string{"name"},
		SortFields: map[string]string{
			"name":      "name",
			"createdAt": "created_at",
		},
		DefaultSort:  "name",
		DefaultOrder: query.Asc,
		MaxLimit:     maxLimit,
		TieBreaker:   "id",
	}
}

func AuditListing() query.Resource {
	return query.Resource{
		Name:          "audit_entries",
		SearchColumns: []string{"resource"},
		EqualFields: map[string]string{
			"action":  "action",
			"actorId": "actor_user_id",
			"status":  "status",
		},
		SortFields: map[string]string{
			"occurredAt": "occurred_at",
			"action":     "action",
		},
		DefaultSort:  "occurredAt",
		DefaultOrder: query.Desc,
		MaxLimit:     200,
		TieBreaker:   "id",
	}
}
