// internal/app/features/stats/routes.go
package statsfeature

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the stats feature, mounted at /api/admin/stats.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSummary)
	return r
}
