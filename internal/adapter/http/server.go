// Package http is the HTTP adapter: the signed webhook receiver the
// push queue delivers to, plus the enqueue and job status endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobrelay/internal/codec"
	"jobrelay/internal/config"
	"jobrelay/internal/domain"
	"jobrelay/internal/enqueue"
	"jobrelay/internal/queue"
	"jobrelay/internal/worker"
)

// Server is the HTTP adapter for the webhook service.
type Server struct {
	enqueuer  *enqueue.Enqueuer
	processor *worker.Processor
	store     domain.JobStore
	verifier  *queue.Verifier
	// callbackURL is the exact URL the queue signs its deliveries
	// against; verification binds the signature to it.
	callbackURL string
	encoder     codec.Encoder
	router      chi.Router
	server      *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(enq *enqueue.Enqueuer, proc *worker.Processor, store domain.JobStore, verifier *queue.Verifier, callbackURL, addr string) *Server {
	s := &Server{
		enqueuer:    enq,
		processor:   proc,
		store:       store,
		verifier:    verifier,
		callbackURL: callbackURL,
		encoder:     &codec.JSONEncoder{},
		router:      chi.NewRouter(),
	}
	s.routes()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	s.router.Post(config.WorkerPath, s.handleWorker)
	s.router.Post("/api/jobs", s.handleEnqueue)
	s.router.Get("/api/jobs/{id}", s.handleGetJob)
	s.router.Get("/health", s.handleHealth)
}

// workerMessage is the delivery body from the push queue. Only jobId is
// required; the remaining fields travel for diagnostics.
type workerMessage struct {
	JobID string `json:"jobId"`
	Kind  string `json:"kind,omitempty"`
}

// workerResponse is the JSON response for a handled delivery.
type workerResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
}

// enqueueRequest is the request body for POST /api/jobs.
type enqueueRequest struct {
	Kind    string `json:"kind"`
	UserID  string `json:"userId"`
	Message string `json:"message,omitempty"`
	Agent   string `json:"agent,omitempty"`
}

// errorResponse is the JSON error response.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleWorker(w http.ResponseWriter, r *http.Request) {
	// The signature covers the exact raw bytes; read before anything else.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	sig := r.Header.Get(queue.SignatureHeader)
	if err := s.verifier.Verify(sig, s.callbackURL, body); err != nil {
		log.Printf("webhook verification failed: %v", err)
		s.writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	// Only now is the body trusted enough to parse.
	var msg workerMessage
	if err := s.encoder.Decode(body, &msg); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg.JobID == "" {
		s.writeError(w, http.StatusBadRequest, "jobId is required")
		return
	}

	job, err := s.processor.Process(r.Context(), msg.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("process job %s: %v", msg.JobID, err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, workerResponse{
		Success: true,
		JobID:   job.ID,
		Status:  string(job.Status),
	})
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unknown job kind")
		return
	}
	if req.UserID == "" {
		s.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	var jobID string
	switch kind {
	case domain.KindOnboarding:
		jobID, err = s.enqueuer.EnqueueOnboarding(r.Context(), req.UserID)
	case domain.KindAgentRequest:
		jobID, err = s.enqueuer.EnqueueAgentRequest(r.Context(), domain.AgentRequestPayload{
			UserID:  req.UserID,
			Message: req.Message,
			Agent:   req.Agent,
		})
	}
	if err != nil {
		if domain.IsConfigError(err) {
			log.Printf("enqueue rejected: %v", err)
			s.writeError(w, http.StatusInternalServerError, "server is not configured for enqueueing")
			return
		}
		log.Printf("enqueue error: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		log.Printf("get job error: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
