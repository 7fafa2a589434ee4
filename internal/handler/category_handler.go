package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inventory-api/internal/model"
	"inventory-api/internal/query"
	"inventory-api/internal/service"
)

type CategoryHandler struct {
	service *service.CategoryService
	listing query.Resource
}

func NewCategoryHandler(service *service.CategoryService, listing query.Resource) *CategoryHandler {
	return &CategoryHandler{service: service, listing: listing}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CategoryRequest
	if err := decodeAndValidate(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	category, err := h.service.Create(r.Context(), actorFromRequest(r), payload.Category())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	spec, err := listSpec(r, h.listing, nil)
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

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, detail)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateCategoryRequest
	if err := decodeAndValidate(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	category, err := h.service.Update(r.Context(), actorFromRequest(r), chi.URLParam(r, "id"), payload.Patch())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actorFromRequest(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeNoContent(w)
}
