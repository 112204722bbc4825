package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/tagkeep/internal/controlplane/api/auth"
	"github.com/marmos91/tagkeep/internal/controlplane/api/handlers"
	apiMiddleware "github.com/marmos91/tagkeep/internal/controlplane/api/middleware"
	"github.com/marmos91/tagkeep/internal/logger"
	"github.com/marmos91/tagkeep/pkg/controlplane/store"
	"github.com/marmos91/tagkeep/pkg/metrics"
)

// Dependencies are the collaborators the API routes are served from.
type Dependencies struct {
	// Store is the catalog store. Required.
	Store store.Store

	// StoreType names the database backend for the readiness probe.
	StoreType string

	// Runner executes manual housekeeping runs. Required.
	Runner handlers.Runner

	// Preview computes the unused tag set without deleting. Optional.
	Preview handlers.UnusedTagsPreviewer

	// Metrics records API traffic. Optional.
	Metrics metrics.APIMetrics
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Prometheus request metrics keyed by route pattern
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - /api/v1/tags/* - Tag catalog (read: reader, write: admin)
//   - /api/v1/release-profiles/* - Release profiles (read: reader, write: admin)
//   - /api/v1/auto-tags/* - Auto-tagging rules (read: reader, write: admin)
//   - /api/v1/housekeeping/* - Housekeeping runs and history (admin only)
func NewRouter(deps Dependencies, jwtService *auth.JWTService) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(apiMiddleware.Metrics(deps.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	healthHandler := handlers.NewHealthHandler(deps.Store, deps.StoreType)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	tagHandler := handlers.NewTagHandler(deps.Store)
	profileHandler := handlers.NewReleaseProfileHandler(deps.Store)
	autoTagHandler := handlers.NewAutoTagHandler(deps.Store)
	housekeepingHandler := handlers.NewHousekeepingHandler(deps.Runner, deps.Preview, deps.Store)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiMiddleware.JWTAuth(jwtService))

		r.Route("/tags", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireRead())
				r.Get("/", tagHandler.List)
				r.Get("/detail", tagHandler.ListDetails)
				r.Get("/detail/{id}", tagHandler.GetDetail)
				r.Get("/{id}", tagHandler.Get)
			})
			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin())
				r.Post("/", tagHandler.Create)
				r.Put("/{id}", tagHandler.Update)
				r.Delete("/{id}", tagHandler.Delete)
			})
		})

		r.Route("/release-profiles", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireRead())
				r.Get("/", profileHandler.List)
				r.Get("/{id}", profileHandler.Get)
			})
			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin())
				r.Post("/", profileHandler.Create)
				r.Put("/{id}", profileHandler.Update)
				r.Delete("/{id}", profileHandler.Delete)
			})
		})

		r.Route("/auto-tags", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireRead())
				r.Get("/", autoTagHandler.List)
				r.Get("/{id}", autoTagHandler.Get)
			})
			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireAdmin())
				r.Post("/", autoTagHandler.Create)
				r.Put("/{id}", autoTagHandler.Update)
				r.Delete("/{id}", autoTagHandler.Delete)
			})
		})

		// Housekeeping (admin only)
		r.Route("/housekeeping", func(r chi.Router) {
			r.Use(apiMiddleware.RequireAdmin())
			r.Get("/", housekeepingHandler.ListHousekeepers)
			r.Post("/run", housekeepingHandler.Run)
			r.Get("/unused-tags", housekeepingHandler.PreviewUnusedTags)
			r.Get("/runs", housekeepingHandler.ListRuns)
			r.Get("/runs/{runID}", housekeepingHandler.GetRun)
		})
	})

	return r
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// clientIP strips the port from a remote address.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It attaches a LogContext carrying the request ID and client address so
// handler logs made with the *Ctx helpers are correlated with the request.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Healthcheck requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		lc := logger.NewLogContext().WithRequest(requestID, clientIP(r.RemoteAddr))
		ctx := logger.WithContext(r.Context(), lc)

		logger.DebugCtx(ctx, "API request started", logger.Method(r.Method), logger.Path(r.URL.Path))

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		logArgs := []any{
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Status(ww.Status()),
			"bytes", ww.BytesWritten(),
			logger.DurationMs(lc.DurationMs()),
		}

		// Log healthcheck requests at DEBUG to avoid polluting logs in k8s
		if isHealthPath(r.URL.Path) {
			logger.DebugCtx(ctx, "API request completed", logArgs...)
		} else {
			logger.InfoCtx(ctx, "API request completed", logArgs...)
		}
	})
}
