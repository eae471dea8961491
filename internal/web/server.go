// Package web provides the HTTP control surface for the lamp daemon:
// the lamp command endpoints, the liveness probe, and a status page.
// Authentication and TLS are deliberately absent: the daemon sits behind
// a reverse proxy that filters callers before requests reach it.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jverbist/S1-hyperautomation/internal/logging"
	"github.com/Jverbist/S1-hyperautomation/internal/relay"
	"github.com/Jverbist/S1-hyperautomation/internal/status"
)

// Server serves the lamp API and status page over HTTP.
type Server struct {
	httpServer *http.Server
	ctrl       *relay.Controller
	tracker    *status.Tracker
	log        *logging.Logger
}

// New creates a Server driving the given controller and reading state from
// the given tracker.
func New(addr string, ctrl *relay.Controller, tracker *status.Tracker, log *logging.Logger) *Server {
	s := &Server{ctrl: ctrl, tracker: tracker, log: log}

	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/lamp/flash", s.handleFlash)
	r.Get("/lamp/on", s.handleOn)
	r.Get("/lamp/off", s.handleOff)
	r.Get("/", s.handleIndex)
	r.Get("/index.html", s.handleIndex)
	r.Get("/index.json", s.handleJSON)

	// No write timeout: /lamp/flash legitimately blocks for the whole
	// pattern duration.
	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleHealth is the liveness probe. It reports reachability only, never
// lamp state: callers probing for liveness must not couple to the device.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true})
}

// handleFlash runs a flash pattern and reports the outcome. The request
// blocks for the pattern's duration; disconnecting cancels the pattern and
// the output settles Off.
func (s *Server) handleFlash(w http.ResponseWriter, r *http.Request) {
	pattern := relay.DefaultPattern()

	if v := r.URL.Query().Get("duration"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Error: "duration must be a number"})
			return
		}
		pattern.Duration = time.Duration(secs * float64(time.Second))
	}
	if v := r.URL.Query().Get("flashes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Status: "error", Error: "flashes must be an integer"})
			return
		}
		pattern.Flashes = n
	}

	res, err := s.ctrl.Flash(r.Context(), pattern)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, flashResponse{
			Status:   "ok",
			Duration: res.Duration.Seconds(),
			Flashes:  res.Flashes,
		})
	case errors.Is(err, relay.ErrSuperseded):
		writeJSON(w, http.StatusConflict, statusResponse{Status: "superseded"})
	case errors.Is(err, relay.ErrClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Status: "error", Error: "shutting down"})
	default:
		s.log.Error("flash failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Error: err.Error()})
	}
}

func (s *Server) handleOn(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.On(r.Context()); err != nil {
		s.writeControlError(w, err, "turn on")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "on"})
}

func (s *Server) handleOff(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Off(r.Context()); err != nil {
		s.writeControlError(w, err, "turn off")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "off"})
}

func (s *Server) writeControlError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, relay.ErrClosed) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Status: "error", Error: "shutting down"})
		return
	}
	s.log.Error(op+" failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Error: err.Error()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, _ *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatStatusEvent(snap, "", ""))
}
