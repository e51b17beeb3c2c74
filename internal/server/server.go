// Package server exposes the local HTTP API: binding and template management,
// the event journal, gesture catalog introspection, a live event websocket,
// and a camera preview stream.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/bus"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Catalog lists the currently registered gesture names. The detector
// implements it.
type Catalog interface {
	Names() []string
}

// Config wires the server's collaborators. Nil fields disable the routes that
// depend on them.
type Config struct {
	Store   *store.Store
	Bus     *bus.Bus
	Catalog Catalog
	Camera  capture.Camera
}

// Server is the HTTP API server.
type Server struct {
	config Config
	mux    *http.ServeMux
	http   *http.Server
	start  time.Time
	log    zerolog.Logger
}

// New creates a Server and registers its routes.
func New(config Config, log zerolog.Logger) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    log.With().Str("component", "server").Logger(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		bindings := api.NewBindingHandler(s.config.Store)
		s.mux.Handle("/api/bindings", bindings)
		s.mux.Handle("/api/bindings/", bindings)

		templates := api.NewTemplateHandler(s.config.Store)
		s.mux.Handle("/api/templates", templates)
		s.mux.Handle("/api/templates/", templates)

		s.mux.HandleFunc("/api/events", s.handleEvents)
	}

	if s.config.Catalog != nil {
		s.mux.HandleFunc("/api/gestures", s.handleGestures)
	}

	if s.config.Bus != nil {
		s.mux.Handle("/api/events/ws", NewEventsHandler(s.config.Bus, s.log))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleGestures lists every registered gesture name, built-ins and loaded
// templates alike.
func (s *Server) handleGestures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{"gestures": s.config.Catalog.Names()})
}

// handleEvents returns recent journal entries, newest first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			http.Error(w, "limit must be an integer in [1, 1000]", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.config.Store.Journal().Recent(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("reading event journal")
		http.Error(w, "Failed to read events", http.StatusInternalServerError)
		return
	}

	type entry struct {
		ID         string          `json:"id"`
		Type       string          `json:"type"`
		Gesture    string          `json:"gesture,omitempty"`
		Confidence float64         `json:"confidence,omitempty"`
		Data       json.RawMessage `json:"data"`
		CreatedAt  time.Time       `json:"created_at"`
	}
	out := make([]entry, len(entries))
	for i, e := range entries {
		out[i] = entry{
			ID: e.ID, Type: e.Type, Gesture: e.Gesture,
			Confidence: e.Confidence, Data: e.Data, CreatedAt: e.CreatedAt,
		}
	}
	writeJSON(w, map[string]any{"events": out})
}

// ListenAndServe runs the server until the context is canceled, then shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	s.log.Info().Str("addr", addr).Msg("api server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
