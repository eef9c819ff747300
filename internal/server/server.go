// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jeranaias/supportdesk-tui/internal/logging"
	"github.com/jeranaias/supportdesk-tui/internal/model"
	"github.com/jeranaias/supportdesk-tui/internal/router"
	"github.com/jeranaias/supportdesk-tui/internal/support"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8000"

	// MaxRequestBodySize bounds request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxMessageLength bounds the message of one agent call, in bytes.
	MaxMessageLength = 100000

	// AnonymousSession is recorded when a call carries no session id.
	AnonymousSession = "anonymous"

	// Version is the service version reported by the health endpoint.
	Version = "0.3.0"
)

// ============================================================================
// SERVER
// ============================================================================

// Options configures a Server.
type Options struct {
	// Store is required.
	Store *Store

	// Logger receives request and lifecycle records. Nil discards them.
	Logger *slog.Logger

	// Routes maps agents to their POST paths. Missing agents use the defaults.
	Routes router.Routes

	// Paths of the snapshot endpoints. Empty fields use the defaults.
	Paths support.Paths

	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64
	Burst     int

	// CORS is optional.
	CORS *CORSConfig
}

// Server is the demo collaborator service of the console.
type Server struct {
	store     *Store
	responder *Responder
	logger    *slog.Logger
	routes    router.Routes
	paths     support.Paths
	handler   http.Handler

	httpServer *http.Server
}

// New builds the router and middleware stack.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	s := &Server{
		store:     opts.Store,
		responder: NewResponder(opts.Store),
		logger:    opts.Logger,
		routes:    router.New(opts.Routes).Routes(),
		paths:     fillPaths(opts.Paths),
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(SecurityHeadersMiddleware())
	if opts.CORS != nil {
		r.Use(CORSMiddleware(opts.CORS))
	}
	if opts.RateLimit > 0 {
		r.Use(RateLimitMiddleware(NewRateLimiter(opts.RateLimit, opts.Burst), s.logger))
	}

	r.Get(s.paths.Health, s.handleHealth)
	r.Get(s.paths.Dashboard, s.handleDashboard)
	r.Get(s.paths.Tickets, s.handleTickets)
	r.Get(s.paths.Agents, s.handleAgents)
	r.Get(s.paths.Settings, s.handleSettings)
	r.Put(s.paths.Settings, s.handleSaveSettings)
	for _, target := range router.AllTargets {
		r.Post(s.routes[target], s.handleAsk(target))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.handler = r
	return s, nil
}

func fillPaths(p support.Paths) support.Paths {
	defaults := support.DefaultPaths()
	if p.Dashboard == "" {
		p.Dashboard = defaults.Dashboard
	}
	if p.Tickets == "" {
		p.Tickets = defaults.Tickets
	}
	if p.Agents == "" {
		p.Agents = defaults.Agents
	}
	if p.Settings == "" {
		p.Settings = defaults.Settings
	}
	if p.Health == "" {
		p.Health = defaults.Health
	}
	return p
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Routes returns the agent paths the server answers.
func (s *Server) Routes() router.Routes {
	return s.routes
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// ListenAndServe serves addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr, "version", Version)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, support.HealthResponse{Status: "unavailable", Version: Version})
		return
	}
	writeJSON(w, http.StatusOK, support.HealthResponse{Status: "ok", Version: Version})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.store.Dashboard(r.Context())
	if err != nil {
		s.storeFailure(w, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := s.store.Tickets(r.Context())
	if err != nil {
		s.storeFailure(w, "tickets", err)
		return
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.store.Agents(r.Context())
	if err != nil {
		s.storeFailure(w, "agents", err)
		return
	}
	writeJSON(w, http.StatusOK, agents)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.storeFailure(w, "settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if !decodeBody(w, r, &settings) {
		return
	}
	if err := settings.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.store.SaveSettings(r.Context(), settings)
	if err != nil {
		s.storeFailure(w, "settings", err)
		return
	}
	s.logger.Info("settings updated", "company", saved.General.CompanyName)
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleAsk(target router.AgentTarget) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req support.AskRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			writeDetail(w, http.StatusUnprocessableEntity, "message must not be empty")
			return
		}
		if len(req.Message) > MaxMessageLength {
			writeDetail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("message exceeds %d bytes", MaxMessageLength))
			return
		}
		sessionID := strings.TrimSpace(req.SessionID)
		if sessionID == "" {
			sessionID = AnonymousSession
		}

		count, err := s.store.RecordTurn(r.Context(), sessionID, target)
		if err != nil {
			s.storeFailure(w, target.String(), err)
			return
		}

		reply, err := s.responder.Reply(r.Context(), Turn{
			Agent:     target,
			SessionID: sessionID,
			Message:   req.Message,
			Count:     count,
		})
		if err != nil {
			s.logger.Error("agent failed", "target", target.String(), "session_id", sessionID, "error", err)
			writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("%s agent could not answer", target.Label()))
			return
		}

		s.logger.Info("agent replied", "target", target.String(), "session_id", sessionID, "turn", count)
		writeJSON(w, http.StatusOK, support.AskResponse{Response: reply})
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Server) storeFailure(w http.ResponseWriter, what string, err error) {
	s.logger.Error("store failure", "resource", what, "error", err)
	writeDetail(w, http.StatusInternalServerError, "Could not load "+what)
}

// decodeBody decodes a bounded JSON body into v. It writes a 400 and returns
// false when the body is not valid JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDetail writes the error body the console's client understands.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, support.ErrorResponse{Detail: detail})
}
