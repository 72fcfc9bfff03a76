// Package tools serves the public, read-only catalog API.
//
// Endpoints (mounted at /api/tools):
//   - GET /                 - paginated list (page, page_size, filter, sort, category)
//   - GET /search?q=        - text search
//   - GET /featured         - featured tools
//   - GET /slug/{slug}      - one tool by slug
//   - GET /{id}             - one tool by id
//   - GET /{id}/similar     - related tools (limit)
//
// GET /api/categories is served by Categories.
package tools

import (
	"context"
	"net/http"
	"strconv"

	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/app/system/metrics"
	"github.com/dalemusser/stratatools/internal/app/system/normalize"
	"github.com/dalemusser/stratatools/internal/app/system/timeouts"
	"github.com/dalemusser/stratatools/internal/domain/catalog"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ToolReader loads single tools.
type ToolReader interface {
	GetByID(ctx context.Context, id int64) (*models.Tool, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tool, error)
}

// Handler handles public catalog requests.
type Handler struct {
	Engine  *catalog.Engine
	Tools   ToolReader
	Metrics *metrics.Metrics
	ErrLog  *errorsfeature.ErrorLogger
	Log     *zap.Logger
}

// NewHandler creates a new catalog handler.
func NewHandler(engine *catalog.Engine, tools ToolReader, m *metrics.Metrics, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:  engine,
		Tools:   tools,
		Metrics: m,
		ErrLog:  errLog,
		Log:     logger,
	}
}

// List handles GET /api/tools.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q, ok := ListQueryFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	h.Metrics.ObserveQuery("list")
	page, err := h.Engine.List(ctx, q)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to list tools", err)
		return
	}
	jsonutil.OK(w, page)
}

// ListQueryFromRequest reads the list parameters. It writes a 400 and returns
// false when page or page_size is not an integer.
func ListQueryFromRequest(w http.ResponseWriter, r *http.Request) (catalog.ListQuery, bool) {
	page, ok := intParam(w, r, "page")
	if !ok {
		return catalog.ListQuery{}, false
	}
	size, ok := intParam(w, r, "page_size")
	if !ok {
		return catalog.ListQuery{}, false
	}
	return catalog.ListQuery{
		Page:     page,
		PageSize: size,
		Filter:   query.Get(r, "filter"),
		Sort:     query.Get(r, "sort"),
		Category: query.Get(r, "category"),
	}, true
}

// Search handles GET /api/tools/search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	h.Metrics.ObserveQuery("search")
	res, err := h.Engine.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to search tools", err)
		return
	}
	jsonutil.OK(w, map[string]any{"tools": res, "total": len(res)})
}

// Featured handles GET /api/tools/featured.
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	h.Metrics.ObserveQuery("featured")
	res, err := h.Engine.Featured(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to load featured tools", err)
		return
	}
	jsonutil.OK(w, map[string]any{"tools": res})
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	h.Metrics.ObserveQuery("categories")
	res, err := h.Engine.Categories(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to count categories", err)
		return
	}
	jsonutil.OK(w, map[string]any{"categories": res})
}

// Get handles GET /api/tools/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tools.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to load tool", err)
		return
	}
	jsonutil.OK(w, t)
}

// GetBySlug handles GET /api/tools/slug/{slug}.
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tools.GetBySlug(ctx, normalize.QueryParam(chi.URLParam(r, "slug")))
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to load tool by slug", err)
		return
	}
	jsonutil.OK(w, t)
}

// Similar handles GET /api/tools/{id}/similar?limit=.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	id, ok := IDParam(w, r)
	if !ok {
		return
	}
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	h.Metrics.ObserveQuery("similar")
	res, err := h.Engine.Similar(ctx, id, limit)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to rank similar tools", err)
		return
	}
	jsonutil.OK(w, map[string]any{"tools": res})
}

// IDParam parses the {id} URL parameter. It writes a 400 and returns false
// when the value is not a positive integer.
func IDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		jsonutil.BadRequest(w, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// intParam reads an optional integer query parameter; absent means 0.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := query.Get(r, name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		jsonutil.BadRequest(w, name+" must be an integer")
		return 0, false
	}
	return n, true
}
