package model

import "time"

type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	Stock       int              `json:"stock"`
	CategoryID  string           `json:"categoryId"`
	Category    *CategorySummary `json:"category,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	CategoryID  *string
}
