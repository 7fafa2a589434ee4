package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"inventory-api/internal/model"
	"inventory-api/internal/query"
	"inventory-api/internal/service"
)

type ProductHandler struct {
	service *service.ProductService
	listing query.Resource
}

func NewProductHandler(service *service.ProductService, listing query.Resource) *ProductHandler {
	return &ProductHandler{service: service, listing: listing}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.ProductRequest
	if err := decodeAndValidate(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), actorFromRequest(r), payload.Product())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, product)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	spec, err := listSpec(r, h.listing, map[string][]validation.Rule{
		"categoryId": {is.UUID},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := h.service.List(r.Context(), spec)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, page)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateProductRequest
	if err := decodeAndValidate(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	product, err := h.service.Update(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), payload.Patch())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actorFromRequest(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeNoContent(w)
}
