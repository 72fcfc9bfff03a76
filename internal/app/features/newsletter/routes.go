package newsletter

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the public signup router, mounted at /api/newsletter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Subscribe)
	return r
}

// AdminRoutes returns the admin router, mounted at /api/admin/newsletter.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/export.csv", h.Export)
	return r
}
