// internal/app/features/stats/handler.go
package statsfeature

import (
	"context"
	"net/http"

	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/app/system/timeouts"
	"github.com/dalemusser/stratatools/internal/domain/catalog"
	"github.com/dalemusser/stratatools/internal/domain/models"
	"go.uber.org/zap"
)

// SubmissionCounter counts the moderation queue by status.
type SubmissionCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// CollectionLister lists every collection.
type CollectionLister interface {
	List(ctx context.Context) ([]models.Collection, error)
}

// SubscriberCounter counts mailing list addresses.
type SubscriberCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Handler handles the admin statistics summary.
type Handler struct {
	Tools       catalog.Source
	Submissions SubmissionCounter
	Collections CollectionLister
	Subscribers SubscriberCounter
	ErrLog      *errorsfeature.ErrorLogger
	Log         *zap.Logger
}

// NewHandler creates a new stats handler. tools should be the store, not the cache.
func NewHandler(tools catalog.Source, subs SubmissionCounter, colls CollectionLister, subscribers SubscriberCounter, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tools:       tools,
		Submissions: subs,
		Collections: colls,
		Subscribers: subscribers,
		ErrLog:      errLog,
		Log:         logger,
	}
}

// ToolStats summarises the catalog.
type ToolStats struct {
	Total      int                    `json:"total"`
	Featured   int                    `json:"featured"`
	Popular    int                    `json:"popular"`
	ByCategory []models.CategoryCount `json:"by_category"`
	ByPricing  map[string]int         `json:"by_pricing"`
}

// Summary is the GET /api/admin/stats body.
type Summary struct {
	Tools       ToolStats        `json:"tools"`
	Submissions map[string]int64 `json:"submissions"`
	Collections int              `json:"collections"`
	Subscribers int64            `json:"subscribers"`
}

// ServeSummary handles GET /api/admin/stats.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := h.Tools.AllTools(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to load tools for stats", err)
		return
	}
	byCategory, err := catalog.New(h.Tools, 0, 0).Categories(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to count categories", err)
		return
	}
	subs, err := h.Submissions.CountByStatus(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to count submissions", err)
		return
	}
	colls, err := h.Collections.List(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to list collections", err)
		return
	}
	subscribers, err := h.Subscribers.Count(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to count subscribers", err)
		return
	}

	jsonutil.OK(w, Summary{
		Tools:       toolStats(all, byCategory),
		Submissions: subs,
		Collections: len(colls),
		Subscribers: subscribers,
	})
}

func toolStats(all []models.Tool, byCategory []models.CategoryCount) ToolStats {
	s := ToolStats{
		Total:      len(all),
		ByCategory: byCategory,
		ByPricing:  make(map[string]int, len(models.AllPricingTags)),
	}
	for _, p := range models.AllPricingTagValues() {
		s.ByPricing[p] = 0
	}
	for _, t := range all {
		if t.IsFeatured {
			s.Featured++
		}
		if t.IsPopular {
			s.Popular++
		}
		s.ByPricing[t.PricingTag]++
	}
	return s
}
