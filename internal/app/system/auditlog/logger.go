// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/stratatools/internal/app/store/audit"
	"github.com/dalemusser/stratatools/internal/app/system/network"
	"go.uber.org/zap"
)

// Logging modes for a category.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// AdminActor is recorded as the actor for actions taken through the admin gate.
const AdminActor = "admin-key"

// Config holds audit logging configuration.
type Config struct {
	// Admin controls logging for catalog, moderation and collection changes.
	// Values: "all", "db", "log", "off".
	Admin string
}

// Eventer records audit events. Handlers depend on this so tests can pass nil.
type Eventer interface {
	Log(ctx context.Context, event audit.Event)
}

// Logger logs audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}


func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.SubjectKind != "" {
		fields = append(fields,
			zap.String("subject_kind", event.SubjectKind),
			zap.String("subject_id", event.SubjectID))
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) setting(category string) string {
	switch category {
	case audit.CategoryAdmin:
		if l.config.Admin == "" {
			return ModeAll
		}
		return l.config.Admin
	default:
		return ModeAll
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := l.setting(event.Category)
	if setting == ModeOff {
		return
	}
	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// Admin builds an admin-category event from an incoming request.
func Admin(r *http.Request, eventType, kind, subjectID string, details map[string]string) audit.Event {
	return audit.Event{
		Category:    audit.CategoryAdmin,
		EventType:   eventType,
		SubjectKind: kind,
		SubjectID:   subjectID,
		Actor:       AdminActor,
		IP:          network.GetClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     true,
		Details:     details,
	}
}

// Failed marks an event unsuccessful with the given reason.
func Failed(event audit.Event, reason string) audit.Event {
	event.Success = false
	event.FailureReason = reason
	return event
}

// ToolEvent logs an admin action on a single tool.
func ToolEvent(ctx context.Context, e Eventer, r *http.Request, eventType string, toolID int64, details map[string]string) {
	if e == nil {
		return
	}
	e.Log(ctx, Admin(r, eventType, audit.SubjectTool, strconv.FormatInt(toolID, 10), details))
}

// SubmissionDecided logs an approve or reject, including failed attempts.
func SubmissionDecided(ctx context.Context, e Eventer, r *http.Request, eventType string, subID int64, toolID *int64, err error) {
	if e == nil {
		return
	}
	details := map[string]string{}
	if toolID != nil {
		details["tool_id"] = strconv.FormatInt(*toolID, 10)
	}
	ev := Admin(r, eventType, audit.SubjectSubmission, strconv.FormatInt(subID, 10), details)
	if err != nil {
		ev = Failed(ev, err.Error())
	}
	e.Log(ctx, ev)
}

// CollectionEvent logs a collection create, update or delete.
func CollectionEvent(ctx context.Context, e Eventer, r *http.Request, eventType string, collectionID int64, name string) {
	if e == nil {
		return
	}
	var details map[string]string
	if name != "" {
		details = map[string]string{"name": name}
	}
	e.Log(ctx, Admin(r, eventType, audit.SubjectCollection, strconv.FormatInt(collectionID, 10), details))
}

// ImportCompleted logs a bulk upload with its counts.
func ImportCompleted(ctx context.Context, e Eventer, r *http.Request, batch string, attempted, succeeded, failed, skipped int, err error) {
	if e == nil {
		return
	}
	ev := Admin(r, audit.EventToolsImported, audit.SubjectImport, batch, map[string]string{
		"attempted": strconv.Itoa(attempted),
		"succeeded": strconv.Itoa(succeeded),
		"failed":    strconv.Itoa(failed),
		"skipped":   strconv.Itoa(skipped),
	})
	if err != nil {
		ev = Failed(ev, err.Error())
	}
	e.Log(ctx, ev)
}

// Exported logs a CSV download of the catalog or mailing list.
func Exported(ctx context.Context, e Eventer, r *http.Request, eventType, kind string, rows int) {
	if e == nil {
		return
	}
	e.Log(ctx, Admin(r, eventType, kind, "", map[string]string{"rows": strconv.Itoa(rows)}))
}
