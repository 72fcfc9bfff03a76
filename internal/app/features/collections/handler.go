// Package collections serves curated tool collections.
package collections

import (
	"context"
	"fmt"
	"net/http"

	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	"github.com/dalemusser/stratatools/internal/app/features/tools"
	"github.com/dalemusser/stratatools/internal/app/store/audit"
	collectionstore "github.com/dalemusser/stratatools/internal/app/store/collections"
	"github.com/dalemusser/stratatools/internal/app/system/auditlog"
	"github.com/dalemusser/stratatools/internal/app/system/inputval"
	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/app/system/normalize"
	"github.com/dalemusser/stratatools/internal/app/system/timeouts"
	"github.com/dalemusser/stratatools/internal/domain/apperr"
	"github.com/dalemusser/stratatools/internal/domain/catalog"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"go.uber.org/zap"
)

// Store is the collection persistence collaborator.
type Store interface {
	Create(ctx context.Context, c models.Collection) (*models.Collection, error)
	GetByID(ctx context.Context, id int64) (*models.Collection, error)
	Update(ctx context.Context, id int64, in collectionstore.UpdateInput) (*models.Collection, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.Collection, error)
	ListFeatured(ctx context.Context) ([]models.Collection, error)
}

// ToolLookup resolves tool references.
type ToolLookup interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Tool, error)
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// Handler handles collection requests.
type Handler struct {
	Store  Store
	Tools  ToolLookup
	Audit  auditlog.Eventer
	ErrLog *errorsfeature.ErrorLogger
	Log    *zap.Logger
}

// NewHandler creates a new collections handler.
func NewHandler(store Store, tools ToolLookup, audit auditlog.Eventer, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Tools: tools, Audit: audit, ErrLog: errLog, Log: logger}
}

// collectionInput is the create/update payload. On update, absent fields are left alone.
type collectionInput struct {
	Name       *string `json:"name"`
	ToolIDs    []int64 `json:"tool_ids"`
	IsFeatured *bool   `json:"is_featured"`
}

type nameCheck struct {
	Name string `validate:"required,max=120" label:"Collection name"`
}

// validate checks the name (when required or present) and that every tool id exists.
func (h *Handler) validate(ctx context.Context, in *collectionInput, requireName bool) error {
	var msgs []string
	if in.Name != nil {
		n := normalize.Name(*in.Name)
		in.Name = &n
	}
	if requireName || in.Name != nil {
		name := ""
		if in.Name != nil {
			name = *in.Name
		}
		if res := inputval.Validate(nameCheck{Name: name}); res.HasErrors() {
			msgs = append(msgs, res.First())
		}
	}
	if len(in.ToolIDs) > 0 {
		missing, err := h.Tools.MissingIDs(ctx, in.ToolIDs)
		if err != nil {
			return err
		}
		for _, id := range missing {
			msgs = append(msgs, fmt.Sprintf("Unknown tool id: %d", id))
		}
	}
	if len(msgs) > 0 {
		return &apperr.ValidationError{Messages: msgs}
	}
	return nil
}

// resolve attaches tools to each collection in stored order.
func (h *Handler) resolve(ctx context.Context, cs ...models.Collection) ([]models.CollectionWithTools, error) {
	var ids []int64
	for _, c := range cs {
		ids = append(ids, c.ToolIDs...)
	}
	found, err := h.Tools.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.CollectionWithTools, 0, len(cs))
	for _, c := range cs {
		out = append(out, catalog.Resolve(c, found))
	}
	return out, nil
}

// Featured handles GET /api/collections.
func (h *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cs, err := h.Store.ListFeatured(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to list featured collections", err)
		return
	}
	resolved, err := h.resolve(ctx, cs...)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to resolve collection tools", err)
		return
	}
	jsonutil.OK(w, map[string]any{"collections": resolved})
}

// Get handles GET /api/collections/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := tools.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to load collection", err)
		return
	}
	resolved, err := h.resolve(ctx, *c)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to resolve collection tools", err)
		return
	}
	jsonutil.OK(w, resolved[0])
}

// List handles GET /api/admin/collections.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	cs, err := h.Store.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to list collections", err)
		return
	}
	jsonutil.OK(w, map[string]any{"collections": cs, "total": len(cs)})
}

// Create handles POST /api/admin/collections.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in collectionInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.validate(ctx, &in, true); err != nil {
		h.ErrLog.Respond(w, r, "failed to validate collection", err)
		return
	}
	c := models.Collection{Name: *in.Name, ToolIDs: in.ToolIDs}
	if in.IsFeatured != nil {
		c.IsFeatured = *in.IsFeatured
	}
	created, err := h.Store.Create(ctx, c)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to create collection", err)
		return
	}
	auditlog.CollectionEvent(ctx, h.Audit, r, audit.EventCollectionCreated, created.ID, created.Name)
	jsonutil.Created(w, created)
}

// Update handles PUT /api/admin/collections/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := tools.IDParam(w, r)
	if !ok {
		return
	}
	var in collectionInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.validate(ctx, &in, false); err != nil {
		h.ErrLog.Respond(w, r, "failed to validate collection", err)
		return
	}
	updated, err := h.Store.Update(ctx, id, collectionstore.UpdateInput{
		Name:       in.Name,
		ToolIDs:    in.ToolIDs,
		IsFeatured: in.IsFeatured,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to update collection", err)
		return
	}
	auditlog.CollectionEvent(ctx, h.Audit, r, audit.EventCollectionUpdated, updated.ID, updated.Name)
	jsonutil.OK(w, updated)
}

// Delete handles DELETE /api/admin/collections/{id}. Referenced tools are kept.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := tools.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.Respond(w, r, "failed to delete collection", err)
		return
	}
	auditlog.CollectionEvent(ctx, h.Audit, r, audit.EventCollectionDeleted, id, "")
	jsonutil.NoContent(w)
}
