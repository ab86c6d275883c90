// Package api provides the local HTTP and WebSocket control server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"keysim/internal/protocol"
	"keysim/internal/simulator"
)

// Controller is the run being controlled
type Controller interface {
	Pause()
	Resume()
	Stop()
	State() simulator.State
	Progress() (done, total int)
}

// Server provides HTTP API for remote control
type Server struct {
	ctrl  Controller
	token string
	log   *slog.Logger
	wsMgr *WSManager
	mux   *http.ServeMux
}

// NewServer creates a new API server. An empty token disables auth.
func NewServer(ctrl Controller, token string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		ctrl:  ctrl,
		token: token,
		log:   logger.With("component", "api"),
	}
	s.wsMgr = newWSManager(s)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/pause", s.handleControl(protocol.ActionPause))
	mux.HandleFunc("/api/resume", s.handleControl(protocol.ActionResume))
	mux.HandleFunc("/api/stop", s.handleControl(protocol.ActionStop))
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	s.mux = mux

	go s.wsMgr.start()
	return s
}

// Handler returns the server's middleware-wrapped router
func (s *Server) Handler() http.Handler {
	return s.authMiddleware(s.recoverMiddleware(s.mux))
}

// Start listens on addr and serves until ctx is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("API: shutdown incomplete", "error", err)
		}
	}()

	s.log.Info("API: control server listening", "addr", ln.Addr().String(), "auth", s.token != "")
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server stopped: %w", err)
	}
	return nil
}

// Close disconnects all WebSocket clients
func (s *Server) Close() {
	s.wsMgr.stop()
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("API: recovered from panic", "panic", err, "path", r.URL.Path)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks API token if configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("API: request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)

		// Skip auth for health check
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleControl handles POST /api/pause, /api/resume and /api/stop
func (s *Server) handleControl(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.log.Info("API: control request", "action", action, "remote", r.RemoteAddr)
		s.apply(action)

		writeJSON(w, map[string]string{
			"status": "ok",
			"state":  s.ctrl.State().String(),
		})
	}
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) apply(action string) {
	switch action {
	case protocol.ActionPause:
		s.ctrl.Pause()
	case protocol.ActionResume:
		s.ctrl.Resume()
	case protocol.ActionStop:
		s.ctrl.Stop()
	}
}

func (s *Server) status() protocol.StatusPayload {
	done, total := s.ctrl.Progress()
	return protocol.StatusPayload{
		State: s.ctrl.State().String(),
		Done:  done,
		Total: total,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// BroadcastStatus sends a state change to every WebSocket client
func (s *Server) BroadcastStatus(state simulator.State) {
	done, total := s.ctrl.Progress()
	s.wsMgr.send(protocol.Message{
		Type:    protocol.TypeStatus,
		Payload: protocol.StatusPayload{State: state.String(), Done: done, Total: total},
	})
}

// BroadcastCountdown sends a countdown tick to every WebSocket client
func (s *Server) BroadcastCountdown(remaining int) {
	s.wsMgr.send(protocol.Message{
		Type:    protocol.TypeCountdown,
		Payload: protocol.CountdownPayload{Remaining: remaining},
	})
}

// BroadcastProgress sends dispatch progress to every WebSocket client
func (s *Server) BroadcastProgress(done, total int) {
	s.wsMgr.send(protocol.Message{
		Type:    protocol.TypeProgress,
		Payload: protocol.ProgressPayload{Done: done, Total: total},
	})
}
