// Package server exposes the memory engine over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/becomeliminal/mindcare/engine"
	"github.com/becomeliminal/mindcare/memory"
)

const (
	healthMessage = "MindCare backend is running successfully"
	addedMessage  = "Memory added successfully"

	// maxBodyBytes bounds request bodies; memories are short sentences.
	maxBodyBytes = 64 << 10
)

// Service is what the transport needs from the engine.
type Service interface {
	AddMemory(ctx context.Context, text string) (memory.Record, error)
	Ask(ctx context.Context, query string) (string, error)
}

var _ Service = (*engine.Engine)(nil)

// Server routes requests to a Service.
type Server struct {
	service Service
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New creates a server. A nil logger uses slog.Default.
func New(service Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service: service,
		logger:  logger,
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleHealth)
	s.mux.HandleFunc("POST /add_memory", s.handleAddMemory)
	s.mux.HandleFunc("POST /ask", s.handleAsk)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s
}

// Handler returns the routes wrapped in CORS and request logging.
func (s *Server) Handler() http.Handler {
	return LoggingMiddleware(s.logger)(CORSMiddleware(s.mux))
}

// HTTPServer returns an http.Server for addr with the timeouts used in production.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // Long for generated answers
		IdleTimeout:  120 * time.Second,
	}
}

type addMemoryRequest struct {
	Content string `json:"content"`
}

type addMemoryResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Response string `json:"response"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: healthMessage})
}

func (s *Server) handleAddMemory(w http.ResponseWriter, r *http.Request) {
	var req addMemoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	rec, err := s.service.AddMemory(r.Context(), req.Content)
	if err != nil {
		s.writeError(w, "add memory", err)
		return
	}

	writeJSON(w, http.StatusOK, addMemoryResponse{Message: addedMessage, ID: rec.ID})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	answer, err := s.service.Ask(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, "ask", err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Response: answer})
}

// writeError maps service errors to a status. Internal details are logged,
// never returned.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) (int, string) {
	if errors.Is(err, engine.ErrEmptyMemory) {
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}
