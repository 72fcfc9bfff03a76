// Package newsletter handles mailing-list signups and the admin export.
package newsletter

import (
	"context"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	"github.com/dalemusser/stratatools/internal/app/store/audit"
	"github.com/dalemusser/stratatools/internal/app/system/auditlog"
	"github.com/dalemusser/stratatools/internal/app/system/inputval"
	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/app/system/metrics"
	"github.com/dalemusser/stratatools/internal/app/system/normalize"
	"github.com/dalemusser/stratatools/internal/app/system/timeouts"
	"github.com/dalemusser/stratatools/internal/domain/csvio"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"go.uber.org/zap"
)

// ExportFilename is the download name of the subscriber CSV.
const ExportFilename = "newsletter_subscribers.csv"

// Store is the mailing-list collaborator.
type Store interface {
	Subscribe(ctx context.Context, email string, at time.Time) (bool, error)
	List(ctx context.Context) ([]models.NewsletterSubscription, error)
}

// Handler handles newsletter requests.
type Handler struct {
	Store   Store
	Audit   auditlog.Eventer
	Metrics *metrics.Metrics
	ErrLog  *errorsfeature.ErrorLogger
	Log     *zap.Logger
}

// NewHandler creates a new newsletter handler.
func NewHandler(store Store, audit auditlog.Eventer, m *metrics.Metrics, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Audit: audit, Metrics: m, ErrLog: errLog, Log: logger}
}

type subscribeInput struct {
	Email string `json:"email" validate:"required,email,max=254" label:"Email"`
}

// Subscribe handles POST /api/newsletter.
//
// Response: 201 {"email": "...", "added": true} for a new address,
// 200 with "added": false when it was already subscribed.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var in subscribeInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "invalid JSON payload")
		return
	}
	in.Email = normalize.Email(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		h.Metrics.ObserveSubscription("invalid")
		jsonutil.ValidationError(w, []string{res.First()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	added, err := h.Store.Subscribe(ctx, in.Email, time.Now())
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to subscribe", err)
		return
	}

	resp := map[string]any{"email": in.Email, "added": added}
	if added {
		h.Metrics.ObserveSubscription("added")
		jsonutil.Created(w, resp)
		return
	}
	h.Metrics.ObserveSubscription("existing")
	jsonutil.OK(w, resp)
}

// List handles GET /api/admin/newsletter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	subs, err := h.Store.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to list subscribers", err)
		return
	}
	jsonutil.OK(w, map[string]any{"subscribers": subs, "total": len(subs)})
}

// Export handles GET /api/admin/newsletter/export.csv.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	subs, err := h.Store.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to export subscribers", err)
		return
	}

	records := make([][]string, 0, len(subs))
	for _, s := range subs {
		records = append(records, []string{s.Email, s.SubscribedAt.UTC().Format(time.RFC3339)})
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	if err := csvio.WriteDownload(w, []string{"email", "subscribed_at"}, records); err != nil {
		h.Log.Warn("subscriber export interrupted", zap.Error(err))
		return
	}
	auditlog.Exported(ctx, h.Audit, r, audit.EventNewsletterExported, audit.SubjectNewsletter, len(records))
}
