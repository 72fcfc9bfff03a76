package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/stratatools/internal/domain/apperr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRespond(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantLogged bool
	}{
		{"validation", &apperr.ValidationError{Messages: []string{"Tool name is required"}}, http.StatusBadRequest, false},
		{"parse", &apperr.ParseError{Messages: []string{"CSV file is empty"}}, http.StatusBadRequest, false},
		{"state", &apperr.StateError{ID: 4, From: "approved", Action: "approve"}, http.StatusConflict, false},
		{"not found", apperr.NotFound("tool", 9), http.StatusNotFound, false},
		{"wrapped not found", fmt.Errorf("load: %w", apperr.NotFound("tool", 9)), http.StatusNotFound, false},
		{"unexpected", stderrors.New("connection reset"), http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			el := NewErrorLogger(zap.New(core))

			req := httptest.NewRequest(http.MethodGet, "/api/tools/9", nil)
			rec := httptest.NewRecorder()
			el.Respond(rec, req, "tool lookup failed", tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := logs.Len() > 0; got != tt.wantLogged {
				t.Errorf("logged = %v, want %v", got, tt.wantLogged)
			}
		})
	}
}

func TestRespond_HidesInternalDetail(t *testing.T) {
	el := NewErrorLogger(zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	el.Respond(rec, req, "boom", stderrors.New("mongo: secret host 10.0.0.5"))

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Errorf("error = %v, want generic message", body["error"])
	}
}

func TestRespond_ValidationMessages(t *testing.T) {
	el := NewErrorLogger(nil)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	el.Respond(rec, req, "", &apperr.ValidationError{Messages: []string{"a", "b"}})

	var body struct {
		Messages []string `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Errorf("messages = %v, want 2", body.Messages)
	}
}

func TestHandler_NotFoundAndMethod(t *testing.T) {
	h := NewHandler()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("NotFound status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/api/tools", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("MethodNotAllowed status = %d", rec.Code)
	}
}
