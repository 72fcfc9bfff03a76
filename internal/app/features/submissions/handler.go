// Package submissions accepts tool suggestions from anonymous visitors and
// serves the admin moderation queue.
package submissions

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	"github.com/dalemusser/stratatools/internal/app/features/tools"
	"github.com/dalemusser/stratatools/internal/app/store/audit"
	"github.com/dalemusser/stratatools/internal/app/system/auditlog"
	"github.com/dalemusser/stratatools/internal/app/system/inputval"
	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/app/system/metrics"
	"github.com/dalemusser/stratatools/internal/app/system/timeouts"
	"github.com/dalemusser/stratatools/internal/domain/apperr"
	"github.com/dalemusser/stratatools/internal/domain/moderation"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Invalidator drops cached catalog snapshots.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler handles submission requests.
type Handler struct {
	Service *moderation.Service
	Cache   Invalidator
	Audit   auditlog.Eventer
	Metrics *metrics.Metrics
	ErrLog  *errorsfeature.ErrorLogger
	Log     *zap.Logger
}

// NewHandler creates a new submissions handler. cache and audit may be nil.
func NewHandler(svc *moderation.Service, cache Invalidator, audit auditlog.Eventer, m *metrics.Metrics, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Service: svc,
		Cache:   cache,
		Audit:   audit,
		Metrics: m,
		ErrLog:  errLog,
		Log:     logger,
	}
}

// Submit handles POST /api/submissions.
//
// Request body: the six tool fields (name, icon_url, description, category,
// pricing_tag, official_link). Response (201): {"id": 12, "status": "pending"}.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var in models.ToolFields
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	id, err := h.Service.Submit(ctx, in)
	if err != nil {
		var verr *apperr.ValidationError
		if errors.As(err, &verr) {
			h.Metrics.ObserveSubmission("invalid")
		} else {
			h.Metrics.ObserveSubmission("error")
		}
		h.ErrLog.Respond(w, r, "failed to store submission", err)
		return
	}

	h.Metrics.ObserveSubmission("accepted")
	h.Log.Info("submission received", zap.Int64("submission_id", id))
	jsonutil.Created(w, map[string]any{"id": id, "status": models.SubmissionPending})
}

type queueInput struct {
	Status string `validate:"substatus" label:"Status"`
}

// Queue handles GET /api/admin/submissions?status=.
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	in := queueInput{Status: query.Get(r, "status")}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, []string{res.First()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	subs, err := h.Service.Queue(ctx, in.Status)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to list submissions", err)
		return
	}
	jsonutil.OK(w, map[string]any{"submissions": subs, "total": len(subs)})
}

// Approve handles POST /api/admin/submissions/{id}/approve.
// Response (200): {"id": 3, "status": "approved", "tool_id": 41}.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := tools.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	toolID, err := h.Service.Approve(ctx, id)
	h.Metrics.ObserveDecision("approve", err)
	if err != nil {
		auditlog.SubmissionDecided(ctx, h.Audit, r, audit.EventSubmissionApproved, id, nil, err)
		h.ErrLog.Respond(w, r, "failed to approve submission", err)
		return
	}

	h.invalidate(ctx)
	auditlog.SubmissionDecided(ctx, h.Audit, r, audit.EventSubmissionApproved, id, &toolID, nil)
	jsonutil.OK(w, map[string]any{"id": id, "status": models.SubmissionApproved, "tool_id": toolID})
}

// Reject handles POST /api/admin/submissions/{id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := tools.IDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Service.Reject(ctx, id)
	h.Metrics.ObserveDecision("reject", err)
	auditlog.SubmissionDecided(ctx, h.Audit, r, audit.EventSubmissionRejected, id, nil, err)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to reject submission", err)
		return
	}
	jsonutil.OK(w, map[string]any{"id": id, "status": models.SubmissionRejected})
}

func (h *Handler) invalidate(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(ctx); err != nil {
		h.Log.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}
