package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", &ValidationError{Messages: []string{"Tool name is required"}}, http.StatusBadRequest},
		{"parse", &ParseError{Messages: []string{"CSV file is empty"}}, http.StatusBadRequest},
		{"state", &StateError{ID: 1, From: "approved", Action: "approve"}, http.StatusConflict},
		{"not found", NotFound("tool", 7), http.StatusNotFound},
		{"wrapped state", fmt.Errorf("approve: %w", &StateError{ID: 2}), http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("tool", "chatgpt")
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
	if err.Error() != "tool chatgpt: not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestStateError_Message(t *testing.T) {
	err := &StateError{ID: 3, From: "rejected", Action: "approve"}
	want := "cannot approve submission 3: status is rejected"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
