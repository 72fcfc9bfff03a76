// internal/app/features/auditlog/auditlog.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	"github.com/dalemusser/stratatools/internal/app/store/audit"
	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Reader is the audit store surface the handler needs.
type Reader interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
}

// Handler provides the admin audit trail.
type Handler struct {
	auditStore Reader
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
}

// NewHandler creates a new audit log Handler.
func NewHandler(store Reader, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		auditStore: store,
		errLog:     errLog,
		logger:     logger,
	}
}

// listResponse is one page of audit events, newest first.
type listResponse struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	Limit  int64         `json:"limit"`
	Offset int64         `json:"offset"`
}

// Routes returns the audit router, mounted at /api/admin/audit behind the admin gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	return r
}

// list handles GET /api/admin/audit.
//
// Filters: event_type, subject_kind, subject_id, start and end (RFC 3339 or
// YYYY-MM-DD; a bare end date covers the whole day), limit and offset.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := audit.QueryFilter{
		Category:    audit.CategoryAdmin,
		EventType:   query.Get(r, "event_type"),
		SubjectKind: query.Get(r, "subject_kind"),
		SubjectID:   query.Get(r, "subject_id"),
		Limit:       defaultLimit,
	}

	if v := query.Get(r, "limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			jsonutil.BadRequest(w, "limit must be a positive integer")
			return
		}
		filter.Limit = min(n, maxLimit)
	}
	if v := query.Get(r, "offset"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			jsonutil.BadRequest(w, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	var ok bool
	if filter.StartTime, ok = parseTime(query.Get(r, "start"), false); !ok {
		jsonutil.BadRequest(w, "start must be RFC 3339 or YYYY-MM-DD")
		return
	}
	if filter.EndTime, ok = parseTime(query.Get(r, "end"), true); !ok {
		jsonutil.BadRequest(w, "end must be RFC 3339 or YYYY-MM-DD")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.auditStore.Query(ctx, filter)
	if err != nil {
		h.errLog.Respond(w, r, "failed to query audit events", err)
		return
	}

	total, err := h.auditStore.CountByFilter(ctx, filter)
	if err != nil {
		h.logger.Warn("failed to count audit events", zap.Error(err))
		total = int64(len(events))
	}

	if events == nil {
		events = []audit.Event{}
	}
	jsonutil.OK(w, listResponse{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// parseTime returns nil for an empty value. Dates are UTC; an end date is
// extended to the last second of that day.
func parseTime(v string, endOfDay bool) (*time.Time, bool) {
	if v == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, true
}
