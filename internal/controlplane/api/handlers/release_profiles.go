package handlers

import (
	"net/http"
	"time"

	"github.com/marmos91/tagkeep/internal/logger"
	"github.com/marmos91/tagkeep/pkg/controlplane/models"
	"github.com/marmos91/tagkeep/pkg/controlplane/store"
)

// ReleaseProfileHandler handles release profile API endpoints.
type ReleaseProfileHandler struct {
	store store.ReleaseProfileStore
}

// NewReleaseProfileHandler creates a new ReleaseProfileHandler.
func NewReleaseProfileHandler(s store.ReleaseProfileStore) *ReleaseProfileHandler {
	return &ReleaseProfileHandler{store: s}
}

// ReleaseProfileRequest is the request body for creating or replacing a release profile.
type ReleaseProfileRequest struct {
	Name     string   `json:"name"`
	Enabled  *bool    `json:"enabled,omitempty"`
	Required []string `json:"required"`
	Ignored  []string `json:"ignored"`
	Tags     []uint   `json:"tags"`
}

// ReleaseProfileResponse is the response body for release profile endpoints.
type ReleaseProfileResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	Required  []string  `json:"required"`
	Ignored   []string  `json:"ignored"`
	Tags      []uint    `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Create handles POST /api/v1/release-profiles.
func (h *ReleaseProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ReleaseProfileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	profile := req.toModel(0)
	if _, err := h.store.CreateReleaseProfile(r.Context(), profile); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSONCreated(w, releaseProfileToResponse(profile))
}

// List handles GET /api/v1/release-profiles.
func (h *ReleaseProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.ListReleaseProfiles(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list release profiles")
		return
	}

	response := make([]ReleaseProfileResponse, len(profiles))
	for i, p := range profiles {
		response[i] = releaseProfileToResponse(p)
	}
	WriteJSONOK(w, response)
}

// Get handles GET /api/v1/release-profiles/{id}.
func (h *ReleaseProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	profile, err := h.store.GetReleaseProfile(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSONOK(w, releaseProfileToResponse(profile))
}

// Update handles PUT /api/v1/release-profiles/{id}.
func (h *ReleaseProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req ReleaseProfileRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := h.store.UpdateReleaseProfile(r.Context(), req.toModel(id)); err != nil {
		writeStoreError(w, err)
		return
	}

	updated, err := h.store.GetReleaseProfile(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSONOK(w, releaseProfileToResponse(updated))
}

// Delete handles DELETE /api/v1/release-profiles/{id}.
// Tags the profile used are left in place until the next housekeeping pass.
func (h *ReleaseProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteReleaseProfile(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	logger.InfoCtx(r.Context(), "Release profile deleted", logger.ReleaseProfileID(id))
	WriteNoContent(w)
}

func (req *ReleaseProfileRequest) toModel(id uint) *models.ReleaseProfile {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return &models.ReleaseProfile{
		ID:       id,
		Name:     req.Name,
		Enabled:  enabled,
		Required: req.Required,
		Ignored:  req.Ignored,
		Tags:     req.Tags,
	}
}

func releaseProfileToResponse(p *models.ReleaseProfile) ReleaseProfileResponse {
	return ReleaseProfileResponse{
		ID:        p.ID,
		Name:      p.Name,
		Enabled:   p.Enabled,
		Required:  nonNil(p.Required),
		Ignored:   nonNil(p.Ignored),
		Tags:      nonNil(p.Tags),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// nonNil keeps empty lists as [] rather than null in responses.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
