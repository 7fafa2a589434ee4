package handler

import (
	"net/http"

	"inventory-api/internal/query"
	"inventory-api/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
	listing query.Resource
}

func NewAuditHandler(service *service.AuditService, listing query.Resource) *AuditHandler {
	return &AuditHandler{service: service, listing: listing}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
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
