package handlers

import (
	"net/http"
	"time"

	"github.com/marmos91/tagkeep/internal/logger"
	"github.com/marmos91/tagkeep/pkg/controlplane/models"
	"github.com/marmos91/tagkeep/pkg/controlplane/store"
)

// TagHandler handles tag catalog API endpoints.
type TagHandler struct {
	store store.TagStore
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(s store.TagStore) *TagHandler {
	return &TagHandler{store: s}
}

// TagRequest is the request body for POST /api/v1/tags and PUT /api/v1/tags/{id}.
type TagRequest struct {
	Label string `json:"label"`
}

// TagResponse is the response body for tag endpoints.
type TagResponse struct {
	ID        uint      `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TagDetailResponse is a tag together with the records that use it.
type TagDetailResponse struct {
	TagResponse
	ReleaseProfileIDs []uint `json:"release_profile_ids"`
	AutoTagIDs        []uint `json:"auto_tag_ids"`
}

// Create handles POST /api/v1/tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	tag := &models.Tag{Label: req.Label}
	if _, err := h.store.CreateTag(r.Context(), tag); err != nil {
		writeStoreError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "Tag created", logger.TagID(tag.ID), logger.TagLabel(tag.Label))
	WriteJSONCreated(w, tagToResponse(tag))
}

// List handles GET /api/v1/tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list tags")
		return
	}

	response := make([]TagResponse, len(tags))
	for i, t := range tags {
		response[i] = tagToResponse(t)
	}
	WriteJSONOK(w, response)
}

// Get handles GET /api/v1/tags/{id}.
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	tag, err := h.store.GetTag(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSONOK(w, tagToResponse(tag))
}

// Update handles PUT /api/v1/tags/{id}.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req TagRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	tag := &models.Tag{ID: id, Label: req.Label}
	if err := h.store.UpdateTag(r.Context(), tag); err != nil {
		writeStoreError(w, err)
		return
	}

	updated, err := h.store.GetTag(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSONOK(w, tagToResponse(updated))
}

// Delete handles DELETE /api/v1/tags/{id}.
// Tags still referenced by a release profile or auto tag cannot be deleted.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	usage, err := h.store.GetTagUsage(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if usage.InUse() {
		WriteProblemWithType(w, ProblemTypeTagInUse, http.StatusConflict, "Tag is in use")
		return
	}

	if err := h.store.DeleteTag(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	logger.InfoCtx(r.Context(), "Tag deleted", logger.TagID(id))
	WriteNoContent(w)
}

// ListDetails handles GET /api/v1/tags/detail.
func (h *TagHandler) ListDetails(w http.ResponseWriter, r *http.Request) {
	usages, err := h.store.ListTagUsage(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list tag details")
		return
	}

	response := make([]TagDetailResponse, len(usages))
	for i, u := range usages {
		response[i] = tagUsageToResponse(u)
	}
	WriteJSONOK(w, response)
}

// GetDetail handles GET /api/v1/tags/detail/{id}.
func (h *TagHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	usage, err := h.store.GetTagUsage(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSONOK(w, tagUsageToResponse(usage))
}

func tagToResponse(t *models.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Label:     t.Label,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func tagUsageToResponse(u *models.TagUsage) TagDetailResponse {
	return TagDetailResponse{
		TagResponse:       tagToResponse(u.Tag),
		ReleaseProfileIDs: u.ReleaseProfileIDs,
		AutoTagIDs:        u.AutoTagIDs,
	}
}
