// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/domain/apperr"
	"go.uber.org/zap"
)

// ErrorLogger wraps the zap logger for error logging.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{logger: logger}
}

// Log logs an error with the given message and error.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.logger.Error(msg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
}

// LogWithFields logs an error with additional fields.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}, fields...)
	e.logger.Error(msg, allFields...)
}

// Respond writes the JSON response for a core error. Validation, parse, state
// and not-found errors are reported to the caller as-is. Anything else is
// logged under msg and answered with a generic 500.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var (
		verr *apperr.ValidationError
		perr *apperr.ParseError
		serr *apperr.StateError
	)
	switch {
	case stderrors.As(err, &verr):
		jsonutil.ValidationError(w, verr.Messages)
	case stderrors.As(err, &perr):
		jsonutil.JSON(w, http.StatusBadRequest, map[string]any{
			"error":    "could not parse input",
			"messages": perr.Messages,
		})
	case stderrors.As(err, &serr):
		jsonutil.Conflict(w, serr.Error())
	case apperr.IsNotFound(err):
		jsonutil.NotFound(w, err.Error())
	default:
		e.Log(r, msg, err)
		jsonutil.InternalError(w, "internal server error")
	}
}

// Handler answers unmatched routes with JSON instead of chi's plain text.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers 404 for unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	jsonutil.NotFound(w, "route not found")
}

// MethodNotAllowed answers 405.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonutil.Error(w, http.StatusMethodNotAllowed, "method not allowed")
}
