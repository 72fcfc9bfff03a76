package submissions

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the public router, mounted at /api/submissions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Submit)
	return r
}

// AdminRoutes returns the moderation router, mounted at /api/admin/submissions
// behind the admin gate.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Queue)
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)
	return r
}
