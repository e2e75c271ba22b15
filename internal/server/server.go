// Package server exposes the assistant over HTTP for headless use.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/codeme-ai/codeme/internal/intent"
	"github.com/codeme-ai/codeme/internal/logging"
	"github.com/codeme-ai/codeme/internal/project"
	"github.com/codeme-ai/codeme/internal/router"
	"github.com/codeme-ai/codeme/internal/session"
	"github.com/codeme-ai/codeme/internal/workspace"
	"github.com/codeme-ai/codeme/pkg/types"
)

// Config holds server configuration.
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         4096,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server. Commands posted to it run through the same
// parser and router as the interactive loop, against a server-held session.
type Server struct {
	config    *Config
	mux       *chi.Mux
	httpSrv   *http.Server
	parser    *intent.Parser
	cmdRouter *router.Router
	projects  *project.Manager
	sess      *session.Context
}

// New creates a new Server instance.
func New(cfg *Config, parser *intent.Parser, cmdRouter *router.Router, projects *project.Manager, sess *session.Context) *Server {
	s := &Server{
		config:    cfg,
		mux:       chi.NewRouter(),
		parser:    parser,
		cmdRouter: cmdRouter,
		projects:  projects,
		sess:      sess,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Use(middleware.Recoverer)
	if s.config.EnableCORS {
		s.mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	s.mux.Get("/health", s.handleHealth)
	s.mux.Get("/projects", s.handleListProjects)
	s.mux.Post("/projects", s.handleCreateProject)
	s.mux.Delete("/projects/{name}", s.handleDeleteProject)
	s.mux.Get("/projects/{name}/files", s.handleProjectFiles)
	s.mux.Post("/command", s.handleCommand)
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	logging.Info().Str("addr", addr).Msg("server listening")
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	names, err := s.projects.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Template    string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	p, err := s.projects.Create(r.Context(), req.Name, req.Description, req.Template)
	if err != nil {
		if errors.Is(err, workspace.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	rec, err := s.projects.Delete(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if current, ok := s.sess.Current(); ok && current == rec.SourceProject {
		s.sess.ClearCurrent()
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleProjectFiles(w http.ResponseWriter, r *http.Request) {
	paths, err := s.projects.ShowFiles(r.Context(), chi.URLParam(r, "name"), r.URL.Query().Get("glob"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, paths)
}

// handleCommand accepts a raw utterance and runs it through the parser and
// router, exactly as the interactive loop does.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Utterance string `json:"utterance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Utterance == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "utterance is required"})
		return
	}

	cmd, perr := s.parser.Parse(req.Utterance, intent.ModeText)
	if perr != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":      perr.Error(),
			"reason":     string(perr.Reason),
			"suggestion": perr.Suggestion,
		})
		return
	}

	result := s.cmdRouter.Dispatch(r.Context(), cmd, s.sess)
	s.sess.Append(*cmd, result)
	writeResult(w, result, http.StatusOK)
}

// writeResult maps a command result onto an HTTP status.
func writeResult(w http.ResponseWriter, result types.Result, okStatus int) {
	status := okStatus
	switch result.Status {
	case types.StatusRejected:
		status = http.StatusConflict
		if result.Reason == types.ReasonInvalidArgument {
			status = http.StatusBadRequest
		}
	case types.StatusFailed:
		status = http.StatusBadGateway
		switch result.Reason {
		case types.ReasonNotFound:
			status = http.StatusNotFound
		case types.ReasonAlreadyExists:
			status = http.StatusConflict
		case types.ReasonRateLimited:
			status = http.StatusTooManyRequests
		}
	}
	writeJSON(w, status, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
