//go:build integration

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
	"github.com/marmos91/tagkeep/pkg/controlplane/store"
)

func setupCatalogTest(t *testing.T) store.Store {
	t.Helper()

	// Create in-memory SQLite store
	dbConfig := store.Config{
		Type: "sqlite",
		SQLite: store.SQLiteConfig{
			Path: ":memory:",
		},
	}
	cpStore, err := store.New(&dbConfig)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = cpStore.Close() })
	return cpStore
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withID(req *http.Request, id uint) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", strconv.FormatUint(uint64(id), 10))
	return req.WithContext(withRouteContext(req, rctx))
}

func TestTagHandler_Create(t *testing.T) {
	cpStore := setupCatalogTest(t)
	handler := NewTagHandler(cpStore)

	tests := []struct {
		name       string
		body       TagRequest
		wantStatus int
	}{
		{"valid tag", TagRequest{Label: "  Lossless "}, http.StatusCreated},
		{"duplicate label", TagRequest{Label: "LOSSLESS"}, http.StatusConflict},
		{"empty label", TagRequest{Label: "   "}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Create(w, jsonRequest(t, http.MethodPost, "/api/v1/tags", tt.body))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}

	tag, err := cpStore.GetTagByLabel(context.Background(), "lossless")
	if err != nil {
		t.Fatalf("GetTagByLabel failed: %v", err)
	}
	if tag.Label != "lossless" {
		t.Errorf("Expected normalized label 'lossless', got %q", tag.Label)
	}
}

func TestTagHandler_UpdateAndGet(t *testing.T) {
	cpStore := setupCatalogTest(t)
	handler := NewTagHandler(cpStore)
	ctx := context.Background()

	id, err := cpStore.CreateTag(ctx, &models.Tag{Label: "old"})
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	w := httptest.NewRecorder()
	handler.Update(w, withID(jsonRequest(t, http.MethodPut, "/api/v1/tags/1", TagRequest{Label: "New"}), id))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	handler.Get(w, withID(httptest.NewRequest(http.MethodGet, "/api/v1/tags/1", nil), id))
	var resp TagResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Label != "new" {
		t.Errorf("Expected label 'new', got %q", resp.Label)
	}

	w = httptest.NewRecorder()
	handler.Get(w, withID(httptest.NewRequest(http.MethodGet, "/api/v1/tags/999", nil), 999))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestTagHandler_DeleteInUse(t *testing.T) {
	cpStore := setupCatalogTest(t)
	handler := NewTagHandler(cpStore)
	ctx := context.Background()

	used, _ := cpStore.CreateTag(ctx, &models.Tag{Label: "used"})
	free, _ := cpStore.CreateTag(ctx, &models.Tag{Label: "free"})
	if _, err := cpStore.CreateReleaseProfile(ctx, &models.ReleaseProfile{
		Name: "flac", Enabled: true, Required: []string{"FLAC"}, Tags: []uint{used},
	}); err != nil {
		t.Fatalf("CreateReleaseProfile failed: %v", err)
	}

	w := httptest.NewRecorder()
	handler.Delete(w, withID(httptest.NewRequest(http.MethodDelete, "/api/v1/tags/x", nil), used))
	if w.Code != http.StatusConflict {
		t.Errorf("Expected status %d for tag in use, got %d", http.StatusConflict, w.Code)
	}
	var p Problem
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("Failed to decode problem: %v", err)
	}
	if p.Type != ProblemTypeTagInUse {
		t.Errorf("Expected problem type %q, got %q", ProblemTypeTagInUse, p.Type)
	}

	w = httptest.NewRecorder()
	handler.Delete(w, withID(httptest.NewRequest(http.MethodDelete, "/api/v1/tags/x", nil), free))
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status %d, got %d", http.StatusNoContent, w.Code)
	}
}

func TestTagHandler_ListDetails(t *testing.T) {
	cpStore := setupCatalogTest(t)
	handler := NewTagHandler(cpStore)
	ctx := context.Background()

	t1, _ := cpStore.CreateTag(ctx, &models.Tag{Label: "one"})
	t2, _ := cpStore.CreateTag(ctx, &models.Tag{Label: "two"})
	autoID, err := cpStore.CreateAutoTag(ctx, &models.AutoTag{
		Name: "rule",
		Specifications: models.SpecificationList{
			&models.TagSpecification{SpecificationCommon: models.SpecificationCommon{Name: "has two"}, Value: t2},
		},
	})
	if err != nil {
		t.Fatalf("CreateAutoTag failed: %v", err)
	}

	w := httptest.NewRecorder()
	handler.ListDetails(w, httptest.NewRequest(http.MethodGet, "/api/v1/tags/detail", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var details []TagDetailResponse
	if err := json.NewDecoder(w.Body).Decode(&details); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("Expected 2 tag details, got %d", len(details))
	}
	if details[0].ID != t1 || len(details[0].AutoTagIDs) != 0 {
		t.Errorf("Expected tag %d to be unused, got %+v", t1, details[0])
	}
	if details[1].ID != t2 || len(details[1].AutoTagIDs) != 1 || details[1].AutoTagIDs[0] != autoID {
		t.Errorf("Expected tag %d used by auto tag %d, got %+v", t2, autoID, details[1])
	}
}

func TestReleaseProfileHandler_CRUD(t *testing.T) {
	cpStore := setupCatalogTest(t)
	handler := NewReleaseProfileHandler(cpStore)

	w := httptest.NewRecorder()
	handler.Create(w, jsonRequest(t, http.MethodPost, "/api/v1/release-profiles", ReleaseProfileRequest{
		Name: "web", Required: []string{"WEB"}, Tags: []uint{3, 3, 1},
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var created ReleaseProfileResponse
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !created.Enabled {
		t.Error("Expected profile to default to enabled")
	}
	if len(created.Tags) != 2 || created.Tags[0] != 1 || created.Tags[1] != 3 {
		t.Errorf("Expected deduplicated tags [1 3], got %v", created.Tags)
	}

	disabled := false
	w = httptest.NewRecorder()
	handler.Update(w, withID(jsonRequest(t, http.MethodPut, "/api/v1/release-profiles/x", ReleaseProfileRequest{
		Name: "web", Enabled: &disabled, Ignored: []string{"CAM"},
	}), created.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	var updated ReleaseProfileResponse
	if err := json.NewDecoder(w.Body).Decode(&updated); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if updated.Enabled || len(updated.Tags) != 0 || len(updated.Required) != 0 {
		t.Errorf("Unexpected profile after update: %+v", updated)
	}

	w = httptest.NewRecorder()
	handler.Create(w, jsonRequest(t, http.MethodPost, "/api/v1/release-profiles", ReleaseProfileRequest{Name: "empty"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d for profile without terms, got %d", http.StatusBadRequest, w.Code)
	}

	w = httptest.NewRecorder()
	handler.Delete(w, withID(httptest.NewRequest(http.MethodDelete, "/", nil), created.ID))
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status %d, got %d", http.StatusNoContent, w.Code)
	}
}

func TestAutoTagHandler_Create(t *testing.T) {
	cpStore := setupCatalogTest(t)
	handler := NewAutoTagHandler(cpStore)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "tag specification",
			body:       `{"name":"a","tags":[1],"specifications":[{"implementation":"TagSpecification","name":"t","value":"2"}]}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "genre specification",
			body:       `{"name":"b","specifications":[{"implementation":"GenreSpecification","name":"g","value":["jazz"]}]}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown implementation",
			body:       `{"name":"c","specifications":[{"implementation":"YearSpecification","name":"y","value":1999}]}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "tag specification without tag",
			body:       `{"name":"d","specifications":[{"implementation":"TagSpecification","name":"t"}]}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing name",
			body:       `{"specifications":[{"implementation":"MonitoredSpecification","name":"m"}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate name",
			body:       `{"name":"a","specifications":[{"implementation":"MonitoredSpecification","name":"m"}]}`,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auto-tags", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			handler.Create(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/auto-tags", nil))
	var rules []AutoTagResponse
	if err := json.NewDecoder(w.Body).Decode(&rules); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 auto tags, got %d", len(rules))
	}
	ids := rules[0].Specifications.TagIDs()
	if len(ids) != 1 || ids[0] != 2 {
		t.Errorf("Expected specification tag [2], got %v", ids)
	}
}
