// Package httpapi implements the service's boundary: multipart and URL job
// intake, result retrieval, API-key gating, and request logging.
package httpapi

import (
	"net/http"

	"github.com/Neur0toxine/atranscoder-rpc/internal/config"
	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
	"github.com/Neur0toxine/atranscoder-rpc/internal/logging"
	"github.com/go-chi/chi/v5"
)

// enqueuer is the subset of workerpool.Pool the boundary layer depends on.
// Keeping it as an interface lets handler tests substitute a fake pool.
type enqueuer interface {
	Enqueue(j job.Job)
}

// Server wires the HTTP boundary: routing, auth, and the handlers that
// translate requests into Jobs.
type Server struct {
	cfg    config.Config
	pool   enqueuer
	router chi.Router
}

// New builds a Server ready to be used as an http.Handler.
func New(cfg config.Config, pool enqueuer) *Server {
	s := &Server{cfg: cfg, pool: pool}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(jsonErrors)
	r.Use(logging.Middleware())
	r.Use(requireAPIKey(s.cfg.APIKeys))
	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	r.Post("/enqueue", s.handleEnqueueMultipart)
	r.Post("/enqueue_url", s.handleEnqueueURL)
	r.Get("/get/{id}", s.handleGet)

	return r
}
