// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"
)

// Server is the HTTP surface of the daemon. When a JWT authenticator is
// supplied the API routes require a bearer token; the health probe never
// does.
type Server struct {
	handler http.Handler
}

// NewServer wires the handlers into a mux, with optional authentication
// and permissive CORS for browser clients.
func NewServer(service *Service, jwtAuth *JWTAuth, logger *slog.Logger) *Server {
	h := NewHTTPHandlers(service, logger)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/pull", h.HandlePull)
	api.HandleFunc("GET /api/jobs", h.HandleJobs)
	api.HandleFunc("GET /api/jobs/{id}", h.HandleJob)
	api.HandleFunc("GET /api/layers", h.HandleLayers)

	var apiHandler http.Handler = api
	if jwtAuth != nil {
		apiHandler = jwtAuth.Middleware(api)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.HandleFunc("GET /health", h.HandleHealth)

	return &Server{
		handler: cors.Default().Handler(mux),
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
