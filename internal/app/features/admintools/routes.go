package admintools

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the admin catalog router, mounted at /api/admin/tools.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/export.csv", h.Export)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Put("/{id}/featured", h.SetFeatured)
	r.Put("/{id}/popular", h.SetPopular)
	r.Put("/{id}/seo", h.UpdateSEO)
	return r
}

// ImportRoutes returns the CSV import router, mounted at /api/admin/import.
func ImportRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/check", h.ImportCheck)
	r.Post("/upload", h.ImportUpload)
	return r
}
