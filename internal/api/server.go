package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// StatusSource reports the chat connection state.
type StatusSource interface {
	Connected() bool
}

type Server struct {
	router *chi.Mux
	port   int
	status StatusSource
}

func NewServer(port int, status StatusSource) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		status: status,
	}

	router.Get("/", s.health)
	router.Get("/health", s.health)
	router.Get("/api/v1/scrumbot/status", s.agentStatus)

	return s
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown error", "error", err)
		}
	}()

	slog.Info("API server starting", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) agentStatus(w http.ResponseWriter, r *http.Request) {
	slackState := "disconnected"
	if s.status != nil && s.status.Connected() {
		slackState = "connected"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"agent": "scrumbot",
		"slack": slackState,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
