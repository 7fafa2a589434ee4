package model

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CategoryDetail struct {
	Category
	Products []Product `json:"products"`
}

type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CategoryPatch struct {
	Name        *string
	Description *string
}
