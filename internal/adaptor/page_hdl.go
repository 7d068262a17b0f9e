package adaptor

import (
	"net/http"

	"user-admin/internal/view"
)

type PageHandler struct {
	responder
}

func NewPageHandler(base responder) *PageHandler {
	return &PageHandler{responder: base}
}

// News handles GET /news
func (h *PageHandler) News(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, view.PageNews, h.page(r, "News"))
}

// NotFound renders the 404 page for unknown routes.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.fail(w, r, http.StatusNotFound, "Page not found")
}

// Forbidden renders the 403 page for role checks.
func (h *PageHandler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.fail(w, r, http.StatusForbidden, "Access denied")
}
