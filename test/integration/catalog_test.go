//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-api/internal/model"
	"inventory-api/internal/query"
)

type productPage struct {
	Items []model.Product `json:"items"`
	Meta  query.Meta      `json:"meta"`
}

type auditPage struct {
	Items []model.AuditEntry `json:"items"`
	Meta  query.Meta         `json:"meta"`
}

func TestCatalogAgainstPostgres(t *testing.T) {
	s := newStack(t)
	token := s.admin(t)

	status, resp := s.call(t, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Tools"})
	require.Equal(t, http.StatusCreated, status)
	tools := decodeData[model.Category](t, resp.Data)

	status, _ = s.call(t, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Tools"})
	assert.Equal(t, http.StatusConflict, status)

	for _, p := range []map[string]any{
		{"name": "Hammer", "price": 12.5, "stock": 40, "categoryId": tools.ID},
		{"name": "Saw", "price": 30, "stock": 0, "categoryId": tools.ID},
		{"name": "Drill", "price": 89.99, "stock": 7, "categoryId": tools.ID},
	} {
		status, resp := s.call(t, http.MethodPost, "/api/v1/products", token, p)
		require.Equal(t, http.StatusCreated, status, resp.Error)
	}

	status, resp = s.call(t, http.MethodGet, "/api/v1/products?minPrice=10&maxPrice=50&sortBy=price&order=DESC", token, nil)
	require.Equal(t, http.StatusOK, status)
	page := decodeData[productPage](t, resp.Data)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Saw", page.Items[0].Name)
	assert.Equal(t, "Hammer", page.Items[1].Name)
	require.NotNil(t, page.Items[0].Category)
	assert.Equal(t, "Tools", page.Items[0].Category.Name)

	status, resp = s.call(t, http.MethodGet, "/api/v1/products?minStock=1", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, decodeData[productPage](t, resp.Data).Meta.TotalItems)

	status, resp = s.call(t, http.MethodDelete, "/api/v1/categories/"+tools.ID, token, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, resp = s.call(t, http.MethodGet, "/api/v1/categories/"+tools.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[model.CategoryDetail](t, resp.Data).Products, 3)

	require.Eventually(t, func() bool {
		var count int
		err := s.db.Pool.QueryRow(context.Background(),
			`SELECT COUNT(*) FROM audit_entries WHERE action = 'product.created'`).Scan(&count)
		return err == nil && count == 3
	}, 5*time.Second, 50*time.Millisecond)

	status, resp = s.call(t, http.MethodGet, "/api/v1/audit?action=product.created&limit=2", token, nil)
	require.Equal(t, http.StatusOK, status)
	audit := decodeData[auditPage](t, resp.Data)
	assert.Equal(t, 3, audit.Meta.TotalItems)
	assert.Len(t, audit.Items, 2)
	assert.Equal(t, "root@example.com", audit.Items[0].Actor.Email)
}

func TestHealthAgainstPostgres(t *testing.T) {
	s := newStack(t)

	status, resp := s.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
}
