// internal/app/features/jobs/handler.go
package jobsfeature

import (
	"context"
	"errors"
	"net/http"
	"time"

	errorsfeature "github.com/dalemusser/stratatools/internal/app/features/errors"
	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/app/system/tasks"
	"github.com/dalemusser/stratatools/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Runner is the task runner surface the handler needs.
type Runner interface {
	Jobs() []string
	RunOnce(ctx context.Context, name string) error
}

// Handler handles background job requests.
type Handler struct {
	Runner Runner
	ErrLog *errorsfeature.ErrorLogger
	Log    *zap.Logger
}

// NewHandler creates a new jobs handler.
func NewHandler(runner Runner, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Runner: runner,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeList handles GET /api/admin/jobs.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, map[string]any{"jobs": h.Runner.Jobs()})
}

// ServeRun handles POST /api/admin/jobs/{name}/run and runs the job inline.
func (h *Handler) ServeRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	start := time.Now()
	err := h.Runner.RunOnce(ctx, name)
	if errors.Is(err, tasks.ErrUnknownJob) {
		jsonutil.NotFound(w, "unknown job: "+name)
		return
	}
	if err != nil {
		h.ErrLog.Respond(w, r, "manual job run failed", err)
		return
	}

	elapsed := time.Since(start)
	h.Log.Info("job run on demand", zap.String("job", name), zap.Duration("duration", elapsed))
	jsonutil.OK(w, map[string]any{
		"job":         name,
		"status":      "completed",
		"duration_ms": elapsed.Milliseconds(),
	})
}
