package tools

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the public catalog router, mounted at /api/tools.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/search", h.Search)
	r.Get("/featured", h.Featured)
	r.Get("/slug/{slug}", h.GetBySlug)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/similar", h.Similar)
	return r
}
