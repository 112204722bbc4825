package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/tagkeep/internal/controlplane/api/auth"
	"github.com/marmos91/tagkeep/internal/logger"
)

// Server serves the REST API:
//   - GET /health: Liveness probe
//   - GET /health/ready: Readiness probe
//   - /api/v1/tags/*: Tag catalog
//   - /api/v1/release-profiles/*: Release profiles
//   - /api/v1/auto-tags/*: Auto-tagging rules
//   - /api/v1/housekeeping/*: Manual runs, unused tag preview and run history
type Server struct {
	server       *http.Server
	jwtService   *auth.JWTService
	config       APIConfig
	shutdownOnce sync.Once
}

// NewJWTService builds the token service described by config.
// The secret must be at least 32 characters; it is read from
// TAGKEEP_CONTROLPLANE_SECRET when set.
func NewJWTService(config APIConfig) (*auth.JWTService, error) {
	config.ApplyDefaults()

	secret := config.GetJWTSecret()
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("JWT secret must be at least %d characters; set via %s env var or config",
			MinSecretLength, EnvControlPlaneSecret)
	}

	svc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:        secret,
		Issuer:        "tagkeep",
		TokenDuration: config.JWT.TokenDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	return svc, nil
}

// NewServer builds a stopped server. It fails when the JWT secret is
// unusable or a required dependency is missing.
func NewServer(config APIConfig, deps Dependencies) (*Server, error) {
	config.ApplyDefaults()

	if deps.Store == nil {
		return nil, errors.New("api server requires a store")
	}
	if deps.Runner == nil {
		return nil, errors.New("api server requires a housekeeping runner")
	}

	jwtService, err := NewJWTService(config)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      NewRouter(deps, jwtService),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server:     server,
		jwtService: jwtService,
		config:     config,
	}, nil
}

// shutdownGrace bounds in-flight requests once Start's context ends.
const shutdownGrace = 5 * time.Second

// Start binds the port and serves until ctx is cancelled, then drains
// in-flight requests. A bind failure is returned immediately.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("API server failed to listen on %s: %w", s.server.Addr, err)
	}
	logger.Info("API server listening", "port", s.config.Port)
	logger.Debug("API base URL", "url", fmt.Sprintf("http://localhost:%d/api/v1", s.config.Port))

	served := make(chan error, 1)
	go func() {
		served <- s.server.Serve(ln)
	}()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	// ctx is already done; drain on a fresh deadline.
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return s.Stop(drainCtx)
}

// Stop shuts the server down gracefully. Only the first call has effect.
func (s *Server) Stop(ctx context.Context) error {
	var stopErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			stopErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.Err(err))
			return
		}
		logger.Info("API server stopped")
	})
	return stopErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}

// JWTService returns the token service used to authenticate requests.
func (s *Server) JWTService() *auth.JWTService {
	return s.jwtService
}

// Handler returns the server's root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
