package collections

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the public router, mounted at /api/collections.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Featured)
	r.Get("/{id}", h.Get)
	return r
}

// AdminRoutes returns the admin router, mounted at /api/admin/collections.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}
