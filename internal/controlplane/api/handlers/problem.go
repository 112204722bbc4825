// Package handlers provides HTTP handlers for the tagkeep API.
package handlers

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error body.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// ContentTypeProblemJSON is the media type of every error response.
const ContentTypeProblemJSON = "application/problem+json"

// Problem types for failures clients are expected to branch on. Everything
// else is "about:blank" with the status text as title.
const (
	ProblemTypeInvalidSpecification = "urn:tagkeep:problem:invalid-specification"
	ProblemTypeTagInUse             = "urn:tagkeep:problem:tag-in-use"
	ProblemTypeRunInProgress        = "urn:tagkeep:problem:run-in-progress"
	ProblemTypeSourceUnavailable    = "urn:tagkeep:problem:source-unavailable"
)

// WriteProblem writes an untyped problem titled with the status text.
func WriteProblem(w http.ResponseWriter, status int, detail string) {
	WriteProblemWithType(w, "about:blank", status, detail)
}

// WriteProblemWithType writes a problem carrying one of the ProblemType URIs.
func WriteProblemWithType(w http.ResponseWriter, problemType string, status int, detail string) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&Problem{
		Type:   problemType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

func BadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusBadRequest, detail)
}

func Unauthorized(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusUnauthorized, detail)
}

func Forbidden(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusForbidden, detail)
}

func NotFound(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusNotFound, detail)
}

// UnprocessableEntity rejects an auto tag whose specifications cannot be
// stored.
func UnprocessableEntity(w http.ResponseWriter, detail string) {
	WriteProblemWithType(w, ProblemTypeInvalidSpecification, http.StatusUnprocessableEntity, detail)
}

func InternalServerError(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusInternalServerError, detail)
}

// WriteJSON writes data as a JSON body with status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteJSONOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

func WriteJSONCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
