// Package admintools is the admin surface over the catalog: tool CRUD,
// featured/popular flags, SEO overrides, CSV export and CSV import.
package admintools

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	"github.com/dalemusser/stratatools/internal/app/features/tools"
	"github.com/dalemusser/stratatools/internal/app/store/audit"
	"github.com/dalemusser/stratatools/internal/app/system/auditlog"
	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/app/system/metrics"
	"github.com/dalemusser/stratatools/internal/app/system/timeouts"
	"github.com/dalemusser/stratatools/internal/domain/catalog"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"github.com/dalemusser/stratatools/internal/domain/slug"
	"github.com/dalemusser/stratatools/internal/domain/toolval"
	"go.uber.org/zap"
)

// ToolStore is the catalog persistence collaborator.
type ToolStore interface {
	AllTools(ctx context.Context) ([]models.Tool, error)
	GetByID(ctx context.Context, id int64) (*models.Tool, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, t models.Tool) (*models.Tool, error)
	Update(ctx context.Context, id int64, f models.ToolFields) (*models.Tool, error)
	SetFeatured(ctx context.Context, id int64, featured bool) (*models.Tool, error)
	SetPopular(ctx context.Context, id int64, popular bool) (*models.Tool, error)
	UpdateSEO(ctx context.Context, id int64, seo models.SEO) (*models.Tool, error)
	Delete(ctx context.Context, id int64) error
}

// CollectionPuller removes a deleted tool from every collection.
type CollectionPuller interface {
	PullTool(ctx context.Context, toolID int64) (int64, error)
}

// Invalidator drops cached catalog snapshots.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler handles admin catalog requests.
type Handler struct {
	Tools       ToolStore
	Collections CollectionPuller
	Cache       Invalidator
	Audit       auditlog.Eventer
	Metrics     *metrics.Metrics
	ErrLog      *errorsfeature.ErrorLogger
	Log         *zap.Logger

	// MaxUploadBytes caps CSV import bodies.
	MaxUploadBytes int64

	engine *catalog.Engine
}

// DefaultMaxUploadBytes is the import body limit when none is configured.
const DefaultMaxUploadBytes = 5 << 20

// NewHandler creates a new admin tools handler. Admin listings read the store
// directly, never the cache.
func NewHandler(store ToolStore, colls CollectionPuller, cache Invalidator, audit auditlog.Eventer, m *metrics.Metrics, pageSize int, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tools:          store,
		Collections:    colls,
		Cache:          cache,
		Audit:          audit,
		Metrics:        m,
		ErrLog:         errLog,
		Log:            logger,
		MaxUploadBytes: DefaultMaxUploadBytes,
		engine:         catalog.New(store, pageSize, 0),
	}
}

// List handles GET /api/admin/tools with the same parameters as the public list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q, ok := tools.ListQueryFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.engine.List(ctx, q)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to list tools", err)
		return
	}
	jsonutil.OK(w, page)
}

func decodeFields(w http.ResponseWriter, r *http.Request) (models.ToolFields, bool) {
	var f models.ToolFields
	if err := jsonutil.Decode(r, &f); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return f, false
	}
	f.Name = strings.TrimSpace(f.Name)
	f.IconURL = strings.TrimSpace(f.IconURL)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	f.PricingTag = strings.TrimSpace(f.PricingTag)
	f.OfficialLink = strings.TrimSpace(f.OfficialLink)
	if res := toolval.Validate(f); !res.Valid {
		jsonutil.ValidationError(w, res.Errors)
		return f, false
	}
	return f, true
}

// Create handles POST /api/admin/tools.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	s, err := slug.Unique(ctx, slug.Make(f.Name), h.Tools.SlugExists)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to derive slug", err)
		return
	}
	now := time.Now()
	t, err := h.Tools.Create(ctx, models.Tool{ToolFields: f, Slug: s, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to create tool", err)
		return
	}

	h.changed(ctx, r, audit.EventToolCreated, t.ID, map[string]string{"slug": t.Slug})
	jsonutil.Created(w, t)
}

// Update handles PUT /api/admin/tools/{id}. The slug is kept.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := tools.IDParam(w, r)
	if !ok {
		return
	}
	f, ok := decodeFields(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tools.Update(ctx, id, f)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to update tool", err)
		return
	}
	h.changed(ctx, r, audit.EventToolUpdated, t.ID, nil)
	jsonutil.OK(w, t)
}

// Delete handles DELETE /api/admin/tools/{id} and pulls the id from every collection.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := tools.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tools.Delete(ctx, id); err != nil {
		h.ErrLog.Respond(w, r, "failed to delete tool", err)
		return
	}
	pulled, err := h.Collections.PullTool(ctx, id)
	if err != nil {
		// The tool is gone; a dangling reference is skipped when collections resolve.
		h.ErrLog.LogWithFields(r, "failed to pull deleted tool from collections", err, zap.Int64("tool_id", id))
	}

	h.changed(ctx, r, audit.EventToolDeleted, id, map[string]string{"collections": strconv.FormatInt(pulled, 10)})
	jsonutil.NoContent(w)
}

type flagInput struct {
	Value *bool `json:"value"`
}

func decodeFlag(w http.ResponseWriter, r *http.Request) (bool, bool) {
	var in flagInput
	if err := jsonutil.Decode(r, &in); err != nil || in.Value == nil {
		jsonutil.BadRequest(w, `body must be {"value": true|false}`)
		return false, false
	}
	return *in.Value, true
}

// SetFeatured handles PUT /api/admin/tools/{id}/featured.
func (h *Handler) SetFeatured(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, audit.EventToolFeaturedChanged, h.Tools.SetFeatured)
}

// SetPopular handles PUT /api/admin/tools/{id}/popular.
func (h *Handler) SetPopular(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, audit.EventToolPopularChanged, h.Tools.SetPopular)
}

func (h *Handler) setFlag(w http.ResponseWriter, r *http.Request, event string, set func(context.Context, int64, bool) (*models.Tool, error)) {
	id, ok := tools.IDParam(w, r)
	if !ok {
		return
	}
	v, ok := decodeFlag(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := set(ctx, id, v)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to set tool flag", err)
		return
	}
	h.changed(ctx, r, event, id, map[string]string{"value": strconv.FormatBool(v)})
	jsonutil.OK(w, t)
}

// UpdateSEO handles PUT /api/admin/tools/{id}/seo. Blank or absent fields clear the override.
func (h *Handler) UpdateSEO(w http.ResponseWriter, r *http.Request) {
	id, ok := tools.IDParam(w, r)
	if !ok {
		return
	}
	var in models.SEO
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	in.Title = blankToNil(in.Title)
	in.Description = blankToNil(in.Description)
	in.Keywords = blankToNil(in.Keywords)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tools.UpdateSEO(ctx, id, in)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to update SEO", err)
		return
	}
	h.changed(ctx, r, audit.EventToolSEOUpdated, id, nil)
	jsonutil.OK(w, t)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Me handles GET /api/admin/me. Reaching it means the gate let the caller through.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]any{"admin": true, "actor": auditlog.AdminActor})
}

// changed invalidates the catalog cache and records the audit event.
func (h *Handler) changed(ctx context.Context, r *http.Request, event string, id int64, details map[string]string) {
	h.invalidate(ctx)
	auditlog.ToolEvent(ctx, h.Audit, r, event, id, details)
}

func (h *Handler) invalidate(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(ctx); err != nil {
		h.Log.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}
