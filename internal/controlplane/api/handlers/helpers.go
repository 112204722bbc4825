package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/tagkeep/pkg/controlplane/models"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// decodeJSONBody decodes a JSON request body into the provided pointer.
// Returns true if successful, false if decoding fails (error response is written automatically).
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// unmarshalStrict decodes data into v, rejecting unknown fields.
func unmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// idParam parses the {id} URL parameter.
// Returns false if it is missing or not a positive integer (error response is written automatically).
func idParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		BadRequest(w, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// MapStoreError maps a store or model error to an HTTP status and a
// client-safe message.
func MapStoreError(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrTagNotFound):
		return http.StatusNotFound, "Tag not found"
	case errors.Is(err, models.ErrReleaseProfileNotFound):
		return http.StatusNotFound, "Release profile not found"
	case errors.Is(err, models.ErrAutoTagNotFound):
		return http.StatusNotFound, "Auto tag not found"
	case errors.Is(err, models.ErrRunNotFound):
		return http.StatusNotFound, "Housekeeping run not found"
	case errors.Is(err, models.ErrDuplicateTag):
		return http.StatusConflict, "Tag already exists"
	case errors.Is(err, models.ErrDuplicateAutoTag):
		return http.StatusConflict, "Auto tag already exists"
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, models.ErrInvalidSpecification):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeStoreError writes the problem response for a store error.
func writeStoreError(w http.ResponseWriter, err error) {
	status, msg := MapStoreError(err)
	if status == http.StatusUnprocessableEntity {
		UnprocessableEntity(w, msg)
		return
	}
	WriteProblem(w, status, msg)
}
