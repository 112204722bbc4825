package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

func TestMapStoreError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		// Not found errors -> 404
		{"tag not found", models.ErrTagNotFound, http.StatusNotFound, "Tag not found"},
		{"release profile not found", models.ErrReleaseProfileNotFound, http.StatusNotFound, "Release profile not found"},
		{"auto tag not found", models.ErrAutoTagNotFound, http.StatusNotFound, "Auto tag not found"},
		{"run not found", models.ErrRunNotFound, http.StatusNotFound, "Housekeeping run not found"},

		// Duplicate errors -> 409
		{"duplicate tag", models.ErrDuplicateTag, http.StatusConflict, "Tag already exists"},
		{"duplicate auto tag", models.ErrDuplicateAutoTag, http.StatusConflict, "Auto tag already exists"},

		// Unknown errors -> 500
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := MapStoreError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("MapStoreError(%v) status = %d, want %d", tt.err, status, tt.wantStatus)
			}
			if msg != tt.wantMsg {
				t.Errorf("MapStoreError(%v) msg = %q, want %q", tt.err, msg, tt.wantMsg)
			}
		})
	}
}

func TestMapStoreError_Validation(t *testing.T) {
	status, msg := MapStoreError(fmt.Errorf("%w: tag label is required", models.ErrValidation))
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
	}
	if !strings.Contains(msg, "tag label is required") {
		t.Errorf("msg = %q, want validation detail", msg)
	}

	status, _ = MapStoreError(fmt.Errorf("%w: unknown implementation %q", models.ErrInvalidSpecification, "Foo"))
	if status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", status, http.StatusUnprocessableEntity)
	}
}

func TestMapStoreError_WrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), models.ErrTagNotFound)
	status, msg := MapStoreError(wrapped)
	if status != http.StatusNotFound {
		t.Errorf("MapStoreError(wrapped) status = %d, want %d", status, http.StatusNotFound)
	}
	if msg != "Tag not found" {
		t.Errorf("MapStoreError(wrapped) msg = %q, want %q", msg, "Tag not found")
	}
}

func TestWriteStoreError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantTitle  string
		wantDetail string
		wantType   string
	}{
		{
			name:       "not found",
			err:        models.ErrTagNotFound,
			wantStatus: http.StatusNotFound,
			wantTitle:  "Not Found",
			wantDetail: "Tag not found",
			wantType:   "about:blank",
		},
		{
			name:       "conflict",
			err:        models.ErrDuplicateTag,
			wantStatus: http.StatusConflict,
			wantTitle:  "Conflict",
			wantDetail: "Tag already exists",
			wantType:   "about:blank",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantTitle:  "Internal Server Error",
			wantDetail: "Internal server error",
			wantType:   "about:blank",
		},
		{
			name:       "invalid specification",
			err:        fmt.Errorf("%w: unknown implementation %q", models.ErrInvalidSpecification, "YearSpecification"),
			wantStatus: http.StatusUnprocessableEntity,
			wantTitle:  "Unprocessable Entity",
			wantDetail: `invalid specification: unknown implementation "YearSpecification"`,
			wantType:   ProblemTypeInvalidSpecification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeStoreError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("writeStoreError status = %d, want %d", w.Code, tt.wantStatus)
			}

			ct := w.Header().Get("Content-Type")
			if ct != ContentTypeProblemJSON {
				t.Errorf("Content-Type = %q, want %q", ct, ContentTypeProblemJSON)
			}

			var p Problem
			if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
				t.Fatalf("failed to decode problem response: %v", err)
			}
			if p.Title != tt.wantTitle {
				t.Errorf("problem.Title = %q, want %q", p.Title, tt.wantTitle)
			}
			if p.Detail != tt.wantDetail {
				t.Errorf("problem.Detail = %q, want %q", p.Detail, tt.wantDetail)
			}
			if p.Status != tt.wantStatus {
				t.Errorf("problem.Status = %d, want %d", p.Status, tt.wantStatus)
			}
			if p.Type != tt.wantType {
				t.Errorf("problem.Type = %q, want %q", p.Type, tt.wantType)
			}
		})
	}
}

func TestIDParam(t *testing.T) {
	tests := []struct {
		raw    string
		wantID uint
		wantOK bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tags/"+tt.raw, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.raw)
			req = req.WithContext(withRouteContext(req, rctx))
			w := httptest.NewRecorder()

			id, ok := idParam(w, req)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("idParam(%q) = (%d, %v), want (%d, %v)", tt.raw, id, ok, tt.wantID, tt.wantOK)
			}
			if !ok && w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestDecodeJSONBody_Invalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/tags", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	var body TagRequest
	if decodeJSONBody(w, req, &body) {
		t.Fatal("decodeJSONBody should fail on malformed JSON")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func withRouteContext(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}
