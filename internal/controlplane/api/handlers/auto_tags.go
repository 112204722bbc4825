package handlers

import (
	"net/http"
	"time"

	"github.com/marmos91/tagkeep/internal/logger"
	"github.com/marmos91/tagkeep/pkg/controlplane/models"
	"github.com/marmos91/tagkeep/pkg/controlplane/store"
)

// AutoTagHandler handles auto-tagging rule API endpoints.
//
// Specifications are exchanged in their wire form:
//
//	{"implementation": "TagSpecification", "name": "...", "negate": false, "required": true, "value": 3}
//
// Rules containing an implementation this build does not recognize are
// rejected on write with 422 but are returned verbatim on read.
type AutoTagHandler struct {
	store store.AutoTagStore
}

// NewAutoTagHandler creates a new AutoTagHandler.
func NewAutoTagHandler(s store.AutoTagStore) *AutoTagHandler {
	return &AutoTagHandler{store: s}
}

// AutoTagRequest is the request body for creating or replacing an auto tag.
type AutoTagRequest struct {
	Name                    string                   `json:"name"`
	RemoveTagsAutomatically bool                     `json:"remove_tags_automatically"`
	Tags                    []uint                   `json:"tags"`
	Specifications          models.SpecificationList `json:"specifications"`
}

// AutoTagResponse is the response body for auto tag endpoints.
type AutoTagResponse struct {
	ID                      uint                     `json:"id"`
	Name                    string                   `json:"name"`
	RemoveTagsAutomatically bool                     `json:"remove_tags_automatically"`
	Tags                    []uint                   `json:"tags"`
	Specifications          models.SpecificationList `json:"specifications"`
	CreatedAt               time.Time                `json:"created_at"`
	UpdatedAt               time.Time                `json:"updated_at"`
}

// Create handles POST /api/v1/auto-tags.
func (h *AutoTagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AutoTagRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	autoTag := req.toModel(0)
	if _, err := h.store.CreateAutoTag(r.Context(), autoTag); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSONCreated(w, autoTagToResponse(autoTag))
}

// List handles GET /api/v1/auto-tags.
func (h *AutoTagHandler) List(w http.ResponseWriter, r *http.Request) {
	autoTags, err := h.store.ListAutoTags(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list auto tags")
		return
	}

	response := make([]AutoTagResponse, len(autoTags))
	for i, a := range autoTags {
		response[i] = autoTagToResponse(a)
	}
	WriteJSONOK(w, response)
}

// Get handles GET /api/v1/auto-tags/{id}.
func (h *AutoTagHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	autoTag, err := h.store.GetAutoTag(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSONOK(w, autoTagToResponse(autoTag))
}

// Update handles PUT /api/v1/auto-tags/{id}.
func (h *AutoTagHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req AutoTagRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := h.store.UpdateAutoTag(r.Context(), req.toModel(id)); err != nil {
		writeStoreError(w, err)
		return
	}

	updated, err := h.store.GetAutoTag(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSONOK(w, autoTagToResponse(updated))
}

// Delete handles DELETE /api/v1/auto-tags/{id}.
func (h *AutoTagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteAutoTag(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	logger.InfoCtx(r.Context(), "Auto tag deleted", logger.AutoTagID(id))
	WriteNoContent(w)
}

func (req *AutoTagRequest) toModel(id uint) *models.AutoTag {
	return &models.AutoTag{
		ID:                      id,
		Name:                    req.Name,
		RemoveTagsAutomatically: req.RemoveTagsAutomatically,
		Tags:                    req.Tags,
		Specifications:          req.Specifications,
	}
}

func autoTagToResponse(a *models.AutoTag) AutoTagResponse {
	specs := a.Specifications
	if specs == nil {
		specs = models.SpecificationList{}
	}
	return AutoTagResponse{
		ID:                      a.ID,
		Name:                    a.Name,
		RemoveTagsAutomatically: a.RemoveTagsAutomatically,
		Tags:                    nonNil(a.Tags),
		Specifications:          specs,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               a.UpdatedAt,
	}
}
