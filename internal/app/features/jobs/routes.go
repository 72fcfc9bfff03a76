// internal/app/features/jobs/routes.go
package jobsfeature

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the jobs feature, mounted at /api/admin/jobs.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/{name}/run", h.ServeRun)
	return r
}
