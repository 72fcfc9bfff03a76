package admintools

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/stratatools/internal/app/store/audit"
	"github.com/dalemusser/stratatools/internal/app/system/auditlog"
	"github.com/dalemusser/stratatools/internal/app/system/jsonutil"
	"github.com/dalemusser/stratatools/internal/app/system/timeouts"
	"github.com/dalemusser/stratatools/internal/domain/apperr"
	"github.com/dalemusser/stratatools/internal/domain/csvio"
	"github.com/dalemusser/stratatools/internal/domain/ingest"
	"go.uber.org/zap"
)

// ExportFilename is the download name of the catalog CSV.
const ExportFilename = "tools_export.csv"

// Export handles GET /api/admin/tools/export.csv. The header is the ingestion
// header so an export re-imports cleanly.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	all, err := h.Tools.AllTools(ctx)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to export tools", err)
		return
	}
	records := make([][]string, 0, len(all))
	for _, t := range all {
		records = append(records, ingest.Record(t.ToolFields))
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	if err := csvio.WriteDownload(w, ingest.Header, records); err != nil {
		h.Log.Warn("tool export interrupted", zap.Error(err))
		return
	}
	auditlog.Exported(ctx, h.Audit, r, audit.EventToolsExported, audit.SubjectTool, len(records))
}

// CheckResponse is the dry-run verdict for an uploaded CSV.
type CheckResponse struct {
	Rows        []ingest.RowResult `json:"rows"`
	Summary     ingest.Summary     `json:"summary"`
	ParseErrors []string           `json:"parse_errors"`
}

// UploadResponse reports what an upload created.
type UploadResponse struct {
	Report      ingest.Report  `json:"report"`
	Summary     ingest.Summary `json:"summary"`
	ParseErrors []string       `json:"parse_errors"`
	Error       string         `json:"error,omitempty"`
}

// readCSV returns the CSV text from a multipart "file" field or the raw body.
func (h *Handler) readCSV(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
			return "", err
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return "", err
		}
		defer f.Close()
		src = f
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// check parses and validates the CSV against the current catalog.
func (h *Handler) check(ctx context.Context, text string) (csvio.ParseResult, []ingest.RowResult, error) {
	parsed := csvio.Parse(text)
	if len(parsed.Rows) == 0 && len(parsed.Errors) > 0 &&
		(parsed.Errors[0] == csvio.MsgEmpty || parsed.Errors[0] == csvio.MsgHeadersMissing) {
		return parsed, nil, &apperr.ParseError{Messages: parsed.Errors}
	}
	existing, err := h.Tools.AllTools(ctx)
	if err != nil {
		return parsed, nil, err
	}
	return parsed, ingest.Check(parsed, existing), nil
}

func (h *Handler) readAndCheck(ctx context.Context, w http.ResponseWriter, r *http.Request) (csvio.ParseResult, []ingest.RowResult, bool) {
	text, err := h.readCSV(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonutil.Error(w, http.StatusRequestEntityTooLarge, "CSV file is too large")
			return csvio.ParseResult{}, nil, false
		}
		jsonutil.BadRequest(w, "could not read CSV upload")
		return csvio.ParseResult{}, nil, false
	}
	parsed, results, err := h.check(ctx, text)
	if err != nil {
		h.ErrLog.Respond(w, r, "failed to check CSV", err)
		return parsed, nil, false
	}
	return parsed, results, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ImportCheck handles POST /api/admin/import/check. Nothing is written.
func (h *Handler) ImportCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	parsed, results, ok := h.readAndCheck(ctx, w, r)
	if !ok {
		return
	}
	jsonutil.OK(w, CheckResponse{
		Rows:        results,
		Summary:     ingest.Summarize(results),
		ParseErrors: nonNil(parsed.Errors),
	})
}

// ImportUpload handles POST /api/admin/import/upload. Valid rows are created
// in order; a failure stops the upload and rows already created stay.
func (h *Handler) ImportUpload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	parsed, results, ok := h.readAndCheck(ctx, w, r)
	if !ok {
		return
	}

	rep := ingest.Upload(ctx, h.Tools, results, time.Now())
	h.Metrics.ObserveImport(rep.Succeeded, rep.Failed, rep.Skipped)
	if rep.Succeeded > 0 {
		h.invalidate(ctx)
	}
	auditlog.ImportCompleted(ctx, h.Audit, r, rep.Batch, rep.Attempted, rep.Succeeded, rep.Failed, rep.Skipped, rep.Err)

	resp := UploadResponse{
		Report:      rep,
		Summary:     ingest.Summarize(results),
		ParseErrors: nonNil(parsed.Errors),
	}
	if rep.Err != nil {
		h.ErrLog.LogWithFields(r, "import stopped early", rep.Err,
			zap.String("batch", rep.Batch),
			zap.Int("succeeded", rep.Succeeded))
		resp.Error = "upload stopped before all rows were created"
		jsonutil.JSON(w, http.StatusInternalServerError, resp)
		return
	}

	h.Log.Info("tools imported",
		zap.String("batch", rep.Batch),
		zap.Int("succeeded", rep.Succeeded),
		zap.Int("skipped", rep.Skipped))
	jsonutil.OK(w, resp)
}
