// Package api exposes the browser tool catalogue over a JSON/HTTP API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veilhq/veil/pkg/browser"
	"github.com/veilhq/veil/pkg/logging"
	"github.com/veilhq/veil/pkg/tool"
)

// Config controls the API server behavior.
type Config struct {
	BindAddress   string
	Version       string
	PublicMetrics bool
}

// Server hosts the tool catalogue and instance views over HTTP.
type Server struct {
	cfg        Config
	store      *browser.Store
	registry   *tool.Registry
	logger     *logging.Logger
	httpServer *http.Server
}

// NewServer wires a store and registry into an HTTP server. It does not
// start listening.
func NewServer(cfg Config, store *browser.Store, registry *tool.Registry, logger *logging.Logger) *Server {
	if cfg.BindAddress == "" {
		cfg.BindAddress = "127.0.0.1:8420"
	}
	s := &Server{
		cfg:      cfg,
		store:    store,
		registry: registry,
		logger:   logger,
	}

	router := chi.NewRouter()
	router.Use(s.requestID)

	router.Get("/healthz", s.handleHealthz)
	if cfg.PublicMetrics {
		router.Handle("/metrics", promhttp.Handler())
	}
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/tools", s.handleListTools)
		r.Post("/tools/{name}/run", s.handleRunTool)
		r.Get("/instances", s.handleListInstances)
	})

	s.httpServer = &http.Server{
		Addr:              cfg.BindAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens and serves until Shutdown. It blocks.
func (s *Server) Start() error {
	s.logEvent(logging.LevelInfo, "server_started", "api server listening", map[string]any{
		"address": s.cfg.BindAddress,
	})
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server and tears down every active browser
// session.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.store.Shutdown(ctx)
	s.logEvent(logging.LevelInfo, "server_stopped", "api server stopped", nil)
	return err
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.cfg.Version,
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools := s.registry.List()
	out := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		out = append(out, map[string]any{
			"name":        t.Name(),
			"description": t.Description(),
			"parameters":  t.Parameters(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(out),
		"tools": out,
	})
}

func (s *Server) handleRunTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	t, ok := s.registry.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown tool: %s", name))
		return
	}

	params := map[string]any{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
	}

	started := time.Now()
	result, err := executeTool(r.Context(), t, params)
	if err != nil {
		s.logEvent(logging.LevelError, "tool_failed", "tool execution error", map[string]any{
			"tool":  name,
			"error": err.Error(),
		})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logEvent(logging.LevelInfo, "tool_executed", "tool executed", map[string]any{
		"tool":        name,
		"success":     result.Success,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	payload, err := tool.ToJSON(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode result: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(payload))
}

func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	instances := s.store.List()
	out := make([]map[string]any, 0, len(instances))
	for _, inst := range instances {
		entry := map[string]any{
			"instance_id":   inst.ID,
			"state":         string(inst.State),
			"current_url":   inst.CurrentURL,
			"title":         inst.Title,
			"created_at":    inst.CreatedAt.Format(time.RFC3339),
			"last_activity": inst.LastActivity.Format(time.RFC3339),
		}
		if session, ok := s.store.SessionData(inst.ID); ok && session.ExpiresAt != "" {
			entry["expires_at"] = session.ExpiresAt
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(out),
		"instances": out,
	})
}

func (s *Server) logEvent(level logging.Level, eventType, message string, details map[string]any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(logging.Event{
		Level:     level,
		Category:  logging.CategoryAPI,
		EventType: eventType,
		Message:   message,
		Details:   details,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
