package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/tagkeep/internal/logger"
	"github.com/marmos91/tagkeep/pkg/controlplane/models"
	"github.com/marmos91/tagkeep/pkg/housekeeping"
)

const (
	defaultRunListLimit = 50
	maxRunListLimit     = 500
)

// Runner executes housekeeping tasks on demand.
type Runner interface {
	Run(ctx context.Context, opts housekeeping.RunOptions) ([]*models.HousekeepingRun, error)
	Names() []string
}

// UnusedTagsPreviewer computes the unused tag set without deleting anything.
type UnusedTagsPreviewer interface {
	Reconcile(ctx context.Context, opts *housekeeping.Options) (*housekeeping.Stats, error)
}

// RunHistory reads recorded housekeeping runs.
type RunHistory interface {
	GetHousekeepingRun(ctx context.Context, id string) (*models.HousekeepingRun, error)
	ListHousekeepingRuns(ctx context.Context, limit int) ([]*models.HousekeepingRun, error)
}

// HousekeepingHandler handles housekeeping API endpoints.
type HousekeepingHandler struct {
	runner  Runner
	preview UnusedTagsPreviewer
	history RunHistory
}

// NewHousekeepingHandler creates a new HousekeepingHandler.
// preview may be nil, in which case GET /housekeeping/unused-tags returns 404.
func NewHousekeepingHandler(runner Runner, preview UnusedTagsPreviewer, history RunHistory) *HousekeepingHandler {
	return &HousekeepingHandler{runner: runner, preview: preview, history: history}
}

// RunRequest is the optional request body for POST /api/v1/housekeeping/run.
type RunRequest struct {
	DryRun bool     `json:"dry_run"`
	Only   []string `json:"only,omitempty"`
}

// RunResponse is the response body for a manual housekeeping run.
type RunResponse struct {
	Runs  []RunSummary `json:"runs"`
	Error string       `json:"error,omitempty"`
}

// RunSummary describes one recorded housekeeping run.
type RunSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	DryRun     bool       `json:"dry_run"`
	Deleted    int        `json:"deleted"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DurationMs int64      `json:"duration_ms"`
}

// ListHousekeepers handles GET /api/v1/housekeeping.
func (h *HousekeepingHandler) ListHousekeepers(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, map[string][]string{"housekeepers": h.runner.Names()})
}

// Run handles POST /api/v1/housekeeping/run.
//
// The body is optional. Individual housekeeper failures are reported in the
// run records and do not change the status code; a run already in progress
// yields 409.
func (h *HousekeepingHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if r.Body != nil && r.ContentLength != 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := decodeOptional(r.Body, &req); err != nil {
			BadRequest(w, "Invalid request body")
			return
		}
	}

	runs, err := h.runner.Run(r.Context(), housekeeping.RunOptions{DryRun: req.DryRun, Only: req.Only})
	switch {
	case errors.Is(err, housekeeping.ErrRunInProgress):
		WriteProblemWithType(w, ProblemTypeRunInProgress, http.StatusConflict,
			"A housekeeping run is already in progress")
		return
	case errors.Is(err, housekeeping.ErrUnknownHousekeeper):
		BadRequest(w, err.Error())
		return
	}

	resp := RunResponse{Runs: make([]RunSummary, len(runs))}
	for i, run := range runs {
		resp.Runs[i] = runToSummary(run)
	}
	if err != nil {
		logger.WarnCtx(r.Context(), "Manual housekeeping run finished with errors", logger.Err(err))
		resp.Error = err.Error()
	}
	WriteJSONOK(w, resp)
}

// PreviewUnusedTags handles GET /api/v1/housekeeping/unused-tags.
// It reports which tags the next unused-tag pass would delete.
func (h *HousekeepingHandler) PreviewUnusedTags(w http.ResponseWriter, r *http.Request) {
	if h.preview == nil {
		NotFound(w, "Unused tag preview is not available")
		return
	}

	stats, err := h.preview.Reconcile(r.Context(), &housekeeping.Options{DryRun: true})
	if err != nil {
		var srcErr *housekeeping.SourceError
		if errors.As(err, &srcErr) {
			WriteProblemWithType(w, ProblemTypeSourceUnavailable, http.StatusServiceUnavailable,
				"Reference source "+srcErr.Source+" is unavailable")
			return
		}
		InternalServerError(w, "Failed to compute unused tags")
		return
	}
	if stats.Unused == nil {
		stats.Unused = []uint{}
	}
	WriteJSONOK(w, stats)
}

// ListRuns handles GET /api/v1/housekeeping/runs?limit=N.
func (h *HousekeepingHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunListLimit)
	}

	runs, err := h.history.ListHousekeepingRuns(r.Context(), limit)
	if err != nil {
		InternalServerError(w, "Failed to list housekeeping runs")
		return
	}

	response := make([]RunSummary, len(runs))
	for i, run := range runs {
		response[i] = runToSummary(run)
	}
	WriteJSONOK(w, response)
}

// GetRun handles GET /api/v1/housekeeping/runs/{runID}.
func (h *HousekeepingHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runID")
	if id == "" {
		BadRequest(w, "Run ID is required")
		return
	}

	run, err := h.history.GetHousekeepingRun(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSONOK(w, runToSummary(run))
}

// decodeOptional decodes a JSON body, treating an empty body as zero value.
func decodeOptional(body io.Reader, v any) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return unmarshalStrict(data, v)
}

func runToSummary(run *models.HousekeepingRun) RunSummary {
	return RunSummary{
		ID:         run.ID,
		Name:       run.Name,
		Status:     string(run.Status),
		DryRun:     run.DryRun,
		Deleted:    run.Deleted,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		DurationMs: run.Duration().Milliseconds(),
	}
}
